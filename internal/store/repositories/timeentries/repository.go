package timeentries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/store/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error)
	GetByID(ctx context.Context, userID, entryID uuid.UUID) (*models.TimeEntry, error)
	List(ctx context.Context, userID uuid.UUID, filter models.TimeEntryFilter) ([]*models.TimeEntry, error)
	Update(ctx context.Context, entry *models.TimeEntry) error
	Stop(ctx context.Context, userID, entryID uuid.UUID, endTime time.Time) (*models.TimeEntry, error)
	Delete(ctx context.Context, userID, entryID uuid.UUID) error

	TimeByProject(ctx context.Context, userID uuid.UUID, window models.ReportingWindow) ([]*models.ProjectTime, error)
	ProductivityTrend(ctx context.Context, userID uuid.UUID, window models.ReportingWindow) ([]*models.TrendPoint, error)
}
