package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// PostCreateRequest is the payload to publish a post.
type PostCreateRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=2000"`
	ReplyToID *uint  `json:"reply_to_id" validate:"omitempty,min=1"`
	HadithRef string `json:"hadith_ref" validate:"omitempty,max=255"`
}

// PostResponse is the serialized representation of a post.
type PostResponse struct {
	ID          uint        `json:"id"`
	Author      UserSummary `json:"author"`
	Content     string      `json:"content"`
	ReplyToID   *uint       `json:"reply_to_id,omitempty"`
	HadithRef   string      `json:"hadith_ref,omitempty"`
	LikeCount   int         `json:"like_count"`
	RepostCount int         `json:"repost_count"`
	ReplyCount  int         `json:"reply_count"`
	Liked       bool        `json:"liked"`
	Reposted    bool        `json:"reposted"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewPostResponse converts a post model into a DTO.
func NewPostResponse(post models.Post) PostResponse {
	return PostResponse{
		ID:          post.ID,
		Author:      NewUserSummary(post.Author),
		Content:     post.Content,
		ReplyToID:   post.ReplyToID,
		HadithRef:   post.HadithRef,
		LikeCount:   post.LikeCount,
		RepostCount: post.RepostCount,
		ReplyCount:  post.ReplyCount,
		CreatedAt:   post.CreatedAt,
	}
}

// NewPostResponseSlice converts a slice of models into DTOs.
func NewPostResponseSlice(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post))
	}
	return out
}

// ToggleResponse reports the outcome of a like/repost flip.
type ToggleResponse struct {
	Active      bool `json:"active"`
	LikeCount   int  `json:"like_count"`
	RepostCount int  `json:"repost_count"`
	ReplyCount  int  `json:"reply_count"`
}

// FeedResponse is one page of a user's timeline.
type FeedResponse struct {
	Items      []PostResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
	Tab        string         `json:"tab"`
}

// TrendingHashtagResponse is one entry of the trending-hashtag aggregation.
type TrendingHashtagResponse struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
