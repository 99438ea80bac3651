package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

func TestReportDuplicatePerReporterRejected(t *testing.T) {
	db := setupTestDB(t, &models.Report{})
	repo := NewReportRepository(db)

	report := models.Report{ReporterID: 1, TargetType: models.ReportTargetPost, TargetID: 9, Reason: "spam", Status: models.ReportStatusPending}
	require.NoError(t, repo.Create(context.Background(), &report))

	duplicate := models.Report{ReporterID: 1, TargetType: models.ReportTargetPost, TargetID: 9, Reason: "spam again", Status: models.ReportStatusPending}
	err := repo.Create(context.Background(), &duplicate)
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	other := models.Report{ReporterID: 2, TargetType: models.ReportTargetPost, TargetID: 9, Reason: "spam", Status: models.ReportStatusPending}
	require.NoError(t, repo.Create(context.Background(), &other), "a different reporter may flag the same target")
}

func TestReportCloseIsTerminal(t *testing.T) {
	db := setupTestDB(t, &models.Report{})
	repo := NewReportRepository(db)

	report := models.Report{ReporterID: 1, TargetType: models.ReportTargetUser, TargetID: 4, Reason: "abuse", Status: models.ReportStatusPending}
	require.NoError(t, repo.Create(context.Background(), &report))

	closed, err := repo.Close(context.Background(), report.ID, models.ReportStatusResolved, "content removed", 10)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusResolved, closed.Status)
	require.Equal(t, "content removed", closed.Resolution)
	require.NotNil(t, closed.ResolvedAt)
	require.NotNil(t, closed.ResolvedByID)
	require.Equal(t, uint(10), *closed.ResolvedByID)

	_, err = repo.Close(context.Background(), report.ID, models.ReportStatusDismissed, "", 11)
	require.Error(t, err, "a closed report cannot be closed again")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestReportListByStatus(t *testing.T) {
	db := setupTestDB(t, &models.Report{})
	repo := NewReportRepository(db)

	pending := models.Report{ReporterID: 1, TargetType: models.ReportTargetPost, TargetID: 1, Reason: "spam", Status: models.ReportStatusPending}
	require.NoError(t, repo.Create(context.Background(), &pending))
	alsoPending := models.Report{ReporterID: 2, TargetType: models.ReportTargetPost, TargetID: 2, Reason: "spam", Status: models.ReportStatusPending}
	require.NoError(t, repo.Create(context.Background(), &alsoPending))
	_, err := repo.Close(context.Background(), alsoPending.ID, models.ReportStatusDismissed, "", 5)
	require.NoError(t, err)

	open, total, err := repo.ListByStatus(context.Background(), models.ReportStatusPending, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, open, 1)
	require.Equal(t, pending.ID, open[0].ID)
}
