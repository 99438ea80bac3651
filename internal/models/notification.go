package models

import "time"

// Notification kinds. Only a subset is eligible for push fallback; see the
// notification service whitelist.
const (
	NotificationKindFollow         = "follow"
	NotificationKindLike           = "like"
	NotificationKindRepost         = "repost"
	NotificationKindReply          = "reply"
	NotificationKindMention        = "mention"
	NotificationKindMessage        = "message"
	NotificationKindReportResolved = "report_resolved"
	NotificationKindStreamLive     = "stream_live"
)

// Notification is a per-user event record. The (recipient, actor, kind,
// subject) tuple is unique: repeated triggers refresh the existing row
// instead of inserting, which keeps "X liked your post" from piling up under
// repeated toggles.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;uniqueIndex:idx_notification_dedup;index:idx_notification_unread" json:"recipient_id"`
	ActorID     uint      `gorm:"not null;uniqueIndex:idx_notification_dedup" json:"actor_id"`
	Kind        string    `gorm:"size:32;not null;uniqueIndex:idx_notification_dedup" json:"kind"`
	SubjectType string    `gorm:"size:32;not null;uniqueIndex:idx_notification_dedup" json:"subject_type"`
	SubjectID   uint      `gorm:"not null;uniqueIndex:idx_notification_dedup" json:"subject_id"`
	Read        bool      `gorm:"not null;default:false;index:idx_notification_unread" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
