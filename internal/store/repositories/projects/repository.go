package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/store/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}
