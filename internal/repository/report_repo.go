package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ReportRepository handles persistence for moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uint) (models.Report, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error)
	// Close moves a pending report into a terminal status. Returns
	// gorm.ErrRecordNotFound when the report is absent or already
	// terminal, so invalid transitions surface instead of no-opping.
	Close(ctx context.Context, id uint, status, resolution string, actorID uint) (models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a repository backed by GORM.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create inserts the report. A duplicate (reporter, target) pair trips the
// unique index and comes back as gorm.ErrDuplicatedKey.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).First(&report, id).Error
	return report, err
}

func (r *reportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) Close(ctx context.Context, id uint, status, resolution string, actorID uint) (models.Report, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"resolution":     resolution,
			"resolved_by_id": actorID,
			"resolved_at":    now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return models.Report{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Report{}, gorm.ErrRecordNotFound
	}

	var report models.Report
	err := r.db.WithContext(ctx).First(&report, id).Error
	return report, err
}
