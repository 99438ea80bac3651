package models

import "time"

// Post is a short-form publication. LikeCount and RepostCount are
// denormalized from the Like/Repost tables and mutated only inside the
// toggle transaction, never directly.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ReplyToID   *uint     `gorm:"index" json:"reply_to_id,omitempty"`
	HadithRef   string    `gorm:"size:255" json:"hadith_ref,omitempty"`
	LikeCount   int       `gorm:"not null;default:0" json:"like_count"`
	RepostCount int       `gorm:"not null;default:0" json:"repost_count"`
	ReplyCount  int       `gorm:"not null;default:0" json:"reply_count"`
	Hidden      bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Like marks a user as a liker of a post. The (user, post) pair is unique;
// the toggle relies on that index for its idempotent flip.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost mirrors Like for the repost relation.
type Repost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_repost_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_repost_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostHashtag stores one lowercased tag occurrence per post, deduplicated at
// extraction time.
type PostHashtag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_hashtag_post_tag" json:"post_id"`
	Tag       string    `gorm:"size:128;not null;uniqueIndex:idx_hashtag_post_tag;index" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
