package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// NewPaginationMeta fills the page window including the derived page count.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 && total > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// UserSummary is the reduced author/actor representation embedded in list
// responses.
type UserSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// NewUserSummary converts a user model into its embedded form.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}
}

// formatTime keeps optional timestamps stable across responses.
func formatTimePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
