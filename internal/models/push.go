package models

import "time"

// PushSubscription is a registered browser/device push endpoint. A user may
// hold several (one per device); the (user, endpoint) pair is unique and
// re-subscribing the same endpoint updates the stored keys in place.
// Subscriptions are removed on explicit unsubscribe or when the push service
// reports the endpoint gone.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_push_user_endpoint;index" json:"user_id"`
	Endpoint  string    `gorm:"size:500;not null;uniqueIndex:idx_push_user_endpoint" json:"endpoint"`
	P256dh    string    `gorm:"size:255" json:"p256dh"`
	Auth      string    `gorm:"size:255" json:"auth"`
	UserAgent string    `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
