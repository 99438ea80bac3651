package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// StreamRepository handles persistence for live broadcast sessions.
type StreamRepository interface {
	Create(ctx context.Context, stream *models.Stream) error
	FindByID(ctx context.Context, id uint) (models.Stream, error)
	ListLive(ctx context.Context, category string, limit, offset int) ([]models.Stream, error)
	ListScheduled(ctx context.Context, limit, offset int) ([]models.Stream, error)
	ListRecordings(ctx context.Context, limit, offset int) ([]models.Stream, error)
	// TransitionToLive moves scheduled -> live. Returns
	// gorm.ErrRecordNotFound when the stream is not in the scheduled
	// state, so the conflicting transition surfaces to the caller.
	TransitionToLive(ctx context.Context, id uint) (models.Stream, error)
	// TransitionToEnded moves live -> ended.
	TransitionToEnded(ctx context.Context, id uint) (models.Stream, error)
	SetRecordingURL(ctx context.Context, id uint, url string) error
}

type streamRepository struct {
	db *gorm.DB
}

// NewStreamRepository constructs a repository backed by GORM.
func NewStreamRepository(db *gorm.DB) StreamRepository {
	return &streamRepository{db: db}
}

func (r *streamRepository) Create(ctx context.Context, stream *models.Stream) error {
	stream.Status = models.StreamStatusScheduled
	return r.db.WithContext(ctx).Create(stream).Error
}

func (r *streamRepository) FindByID(ctx context.Context, id uint) (models.Stream, error) {
	var stream models.Stream
	err := r.db.WithContext(ctx).Preload("Host").First(&stream, id).Error
	return stream, err
}

func (r *streamRepository) ListLive(ctx context.Context, category string, limit, offset int) ([]models.Stream, error) {
	query := r.db.WithContext(ctx).Preload("Host").Where("status = ?", models.StreamStatusLive)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return r.list(query, "started_at DESC", limit, offset)
}

func (r *streamRepository) ListScheduled(ctx context.Context, limit, offset int) ([]models.Stream, error) {
	query := r.db.WithContext(ctx).Preload("Host").Where("status = ?", models.StreamStatusScheduled)
	return r.list(query, "COALESCE(scheduled_at, created_at) ASC", limit, offset)
}

func (r *streamRepository) ListRecordings(ctx context.Context, limit, offset int) ([]models.Stream, error) {
	query := r.db.WithContext(ctx).Preload("Host").
		Where("status = ? AND recording_url <> ''", models.StreamStatusEnded)
	return r.list(query, "ended_at DESC", limit, offset)
}

func (r *streamRepository) list(query *gorm.DB, order string, limit, offset int) ([]models.Stream, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var streams []models.Stream
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&streams).Error; err != nil {
		return nil, err
	}
	return streams, nil
}

func (r *streamRepository) TransitionToLive(ctx context.Context, id uint) (models.Stream, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, models.StreamStatusScheduled, map[string]interface{}{
		"status":     models.StreamStatusLive,
		"started_at": now,
		"updated_at": now,
	})
}

func (r *streamRepository) TransitionToEnded(ctx context.Context, id uint) (models.Stream, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, models.StreamStatusLive, map[string]interface{}{
		"status":     models.StreamStatusEnded,
		"ended_at":   now,
		"updated_at": now,
	})
}

// transition performs a conditional update guarded on the current status.
// The WHERE clause is the state machine: a stream that already moved on
// matches zero rows and the caller sees the conflict.
func (r *streamRepository) transition(ctx context.Context, id uint, fromStatus string, updates map[string]interface{}) (models.Stream, error) {
	res := r.db.WithContext(ctx).Model(&models.Stream{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return models.Stream{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Stream{}, gorm.ErrRecordNotFound
	}

	var stream models.Stream
	err := r.db.WithContext(ctx).First(&stream, id).Error
	return stream, err
}

func (r *streamRepository) SetRecordingURL(ctx context.Context, id uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Stream{}).
		Where("id = ? AND status = ?", id, models.StreamStatusEnded).
		UpdateColumn("recording_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
