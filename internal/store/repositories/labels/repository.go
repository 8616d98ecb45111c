package labels

import (
	"context"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/store/models"
)

type Repository interface {
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
	GetByID(ctx context.Context, userID, labelID uuid.UUID) (*models.Label, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Label, error)
	Update(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, userID, labelID uuid.UUID) error
}
