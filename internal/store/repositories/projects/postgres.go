// Package projects provides the PostgreSQL-backed repository for project
// rows. Every statement is scoped to the owning user.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/optitask/backend/internal/common"
	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/models"
)

// PostgresRepository implements project storage over a dbx.DBTX
// (*sql.DB, *sql.Conn or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a project and fills in the generated id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (user_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, project.UserID, project.Name, project.Color).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return project, nil
}

// GetByID returns the project when it exists and belongs to userID.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at FROM projects
		WHERE id = $1 AND user_id = $2
	`
	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, projectID, userID).
		Scan(&project.ID, &project.UserID, &project.Name, &project.Color, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return project, nil
}

// List returns all projects of userID ordered by name.
func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at FROM projects
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var item models.Project
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Color, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the full mutable state (name, color) of the project. The
// refreshed updated_at is scanned back; updated_at itself is maintained by a
// trigger, so any value on the struct going in is ignored.
func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET name = $1, color = $2
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, project.Name, project.Color, project.ID, project.UserID).
		Scan(&project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the project. Tasks under it are detached, not deleted; the
// schema's ON DELETE SET NULL takes care of that.
func (r *PostgresRepository) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
