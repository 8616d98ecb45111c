package tasklabels

import (
	"context"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/store/models"
)

type Repository interface {
	Attach(ctx context.Context, userID, taskID, labelID uuid.UUID) error
	Detach(ctx context.Context, userID, taskID, labelID uuid.UUID) error
	ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*models.Label, error)
}
