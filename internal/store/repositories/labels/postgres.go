// Package labels provides the PostgreSQL-backed repository for label rows.
// Label names are unique per owning user; a conflicting insert or rename
// surfaces as common.ErrorAlreadyExists.
package labels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/optitask/backend/internal/common"
	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/models"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a label and fills in the generated id and timestamps.
// The same name under a different user is fine; under the same user it
// returns ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	query := `
		INSERT INTO labels (user_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, label.UserID, label.Name, label.Color).
		Scan(&label.ID, &label.CreatedAt, &label.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("label %q: %w", label.Name, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return label, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, labelID uuid.UUID) (*models.Label, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at FROM labels
		WHERE id = $1 AND user_id = $2
	`
	label := &models.Label{}
	err := r.db.QueryRowContext(ctx, query, labelID, userID).
		Scan(&label.ID, &label.UserID, &label.Name, &label.Color, &label.CreatedAt, &label.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return label, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Label, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at FROM labels
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select labels: %w", err)
	}
	defer rows.Close()

	var result []*models.Label
	for rows.Next() {
		var item models.Label
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

// Update writes name and color. Renaming onto an existing name of the same
// user returns ErrorAlreadyExists.
func (r *PostgresRepository) Update(ctx context.Context, label *models.Label) error {
	query := `
		UPDATE labels SET name = $1, color = $2
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, label.Name, label.Color, label.ID, label.UserID).
		Scan(&label.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("label %q: %w", label.Name, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the label; its task associations go with it (cascade).
func (r *PostgresRepository) Delete(ctx context.Context, userID, labelID uuid.UUID) error {
	query := `DELETE FROM labels WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, labelID, userID)
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
