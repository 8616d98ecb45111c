package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/store/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter models.TaskFilter, page models.Page) (*models.TaskPage, error)
	Update(ctx context.Context, task *models.Task) error
	ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}
