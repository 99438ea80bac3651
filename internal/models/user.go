package models

import "time"

// Account roles. Moderators and admins may act on the moderation surface.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents an account on the platform. Profile management and
// authentication live in a separate service; this table carries only what
// the social core needs, including the moderation ban flag.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	DisplayName string     `gorm:"size:128" json:"display_name"`
	Role        string     `gorm:"size:32;default:member" json:"role"`
	Banned      bool       `gorm:"not null;default:false;index" json:"banned"`
	BanReason   string     `gorm:"size:255" json:"ban_reason,omitempty"`
	BannedAt    *time.Time `json:"banned_at,omitempty"`
	BannedByID  *uint      `json:"banned_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Follow is a directed edge in the follow graph. The pair is unique.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follower_followee;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
