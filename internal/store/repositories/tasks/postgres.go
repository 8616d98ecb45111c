// Package tasks provides the PostgreSQL-backed repository for task rows,
// including filtered, paginated listing and the completion toggle.
package tasks

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

const taskColumns = `id, user_id, project_id, title, description, status, due_date, task_order, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }, task *models.Task) error {
	return row.Scan(
		&task.ID, &task.UserID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &task.DueDate, &task.Order, &task.CreatedAt, &task.UpdatedAt,
	)
}

// Create inserts a task, standalone or under a project. An empty status
// falls back to "todo", matching the column default.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	query := `
		INSERT INTO tasks (user_id, project_id, title, description, status, due_date, task_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.ProjectID, task.Title, task.Description, task.Status, task.DueDate, task.Order).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task := &models.Task{}
	if err := scanTask(r.db.QueryRowContext(ctx, query, taskID, userID), task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// List returns one page of the user's tasks, newest first, optionally
// narrowed to a project and/or a status.
func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID, filter models.TaskFilter, page models.Page) (*models.TaskPage, error) {
	page = page.Normalize()

	where := `user_id = $1`
	args := []any{userID}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		where += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	args = append(args, page.PerPage, page.Offset())
	listQuery := fmt.Sprintf(
		`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args),
	)
	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var items []*models.Task
	for rows.Next() {
		var item models.Task
		if err := scanTask(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.TaskPage{
		Items:      items,
		TotalItems: total,
		TotalPages: (total + page.PerPage - 1) / page.PerPage,
		Page:       page.Number,
		PerPage:    page.PerPage,
	}, nil
}

// Update writes the full mutable state of the task. A nil ProjectID detaches
// it from its project.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET project_id = $1, title = $2, description = $3, status = $4, due_date = $5, task_order = $6
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.ProjectID, task.Title, task.Description, task.Status, task.DueDate, task.Order,
		task.ID, task.UserID).
		Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ToggleCompletion flips the task between done and todo in one statement and
// returns the resulting row. Any non-done status counts as open.
func (r *PostgresRepository) ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET status = CASE WHEN status = $1 THEN $2 ELSE $1 END
		WHERE id = $3 AND user_id = $4
		RETURNING ` + taskColumns
	task := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, query, models.StatusDone, models.StatusTodo, taskID, userID), task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Delete removes the task; label links and time entries cascade away with it.
func (r *PostgresRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
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
