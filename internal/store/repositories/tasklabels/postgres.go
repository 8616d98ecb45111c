// Package tasklabels manages the task/label association. A link is legitimate
// only when the caller owns both endpoints, so every operation re-derives
// ownership through the referenced task and label rows; the association
// itself carries no owner column.
package tasklabels

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/optitask/backend/internal/common"
	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ownsTask(ctx context.Context, userID, taskID uuid.UUID) error {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, taskID, userID).Scan(&ok); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, common.ErrorNotFound)
	}
	return nil
}

func (r *PostgresRepository) ownsLabel(ctx context.Context, userID, labelID uuid.UUID) error {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM labels WHERE id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, labelID, userID).Scan(&ok); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return fmt.Errorf("label %s: %w", labelID, common.ErrorNotFound)
	}
	return nil
}

// Attach links the label to the task. Both sides must belong to userID;
// whichever side fails the check is named in the ErrorNotFound. Attaching an
// already-linked pair is a no-op success.
func (r *PostgresRepository) Attach(ctx context.Context, userID, taskID, labelID uuid.UUID) error {
	if err := r.ownsTask(ctx, userID, taskID); err != nil {
		return err
	}
	if err := r.ownsLabel(ctx, userID, labelID); err != nil {
		return err
	}

	query := `
		INSERT INTO task_labels (task_id, label_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, label_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, taskID, labelID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Detach removes the link. The delete joins through tasks so that only the
// task's owner can unlink, even with a known task and label id.
func (r *PostgresRepository) Detach(ctx context.Context, userID, taskID, labelID uuid.UUID) error {
	query := `
		DELETE FROM task_labels
		USING tasks
		WHERE task_labels.task_id = tasks.id
		  AND tasks.user_id = $1
		  AND task_labels.task_id = $2
		  AND task_labels.label_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, userID, taskID, labelID)
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

// ListByTask returns the labels attached to the task, name order.
// The task must belong to userID.
func (r *PostgresRepository) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*models.Label, error) {
	if err := r.ownsTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	query := `
		SELECT l.id, l.user_id, l.name, l.color, l.created_at, l.updated_at
		FROM task_labels tl
		JOIN labels l ON l.id = tl.label_id
		WHERE tl.task_id = $1
		ORDER BY l.name
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to select labels for task: %w", err)
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
