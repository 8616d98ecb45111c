// Package timeentries provides the PostgreSQL-backed repository for tracked
// time, including the aggregate reporting queries.
package timeentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/optitask/backend/internal/common"
	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/models"
)

const entryColumns = `id, user_id, task_id, start_time, end_time, duration_seconds, is_pomodoro_session, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanEntry(row interface{ Scan(...any) error }, entry *models.TimeEntry) error {
	return row.Scan(
		&entry.ID, &entry.UserID, &entry.TaskID, &entry.StartTime, &entry.EndTime,
		&entry.DurationSeconds, &entry.IsPomodoroSession, &entry.CreatedAt, &entry.UpdatedAt,
	)
}

// Create inserts a time entry against a task the user owns. When an end time
// is supplied without an explicit duration, the duration is derived from the
// interval.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	var ok bool
	ownerQuery := `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, ownerQuery, entry.TaskID, entry.UserID).Scan(&ok); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("task %s: %w", entry.TaskID, common.ErrorNotFound)
	}

	if entry.EndTime != nil && entry.DurationSeconds == nil && entry.EndTime.After(entry.StartTime) {
		secs := int32(entry.EndTime.Sub(entry.StartTime) / time.Second)
		entry.DurationSeconds = &secs
	}

	query := `
		INSERT INTO time_entries (user_id, task_id, start_time, end_time, duration_seconds, is_pomodoro_session)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.TaskID, entry.StartTime, entry.EndTime, entry.DurationSeconds, entry.IsPomodoroSession).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, entryID uuid.UUID) (*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = $1 AND user_id = $2`
	entry := &models.TimeEntry{}
	if err := scanEntry(r.db.QueryRowContext(ctx, query, entryID, userID), entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// List returns the user's entries, most recent first, optionally narrowed to
// a task and/or a start-time range (inclusive bounds).
func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID, filter models.TimeEntryFilter) ([]*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE user_id = $1`
	args := []any{userID}
	if filter.TaskID != nil {
		args = append(args, *filter.TaskID)
		query += fmt.Sprintf(` AND task_id = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND start_time <= $%d`, len(args))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select time entries: %w", err)
	}
	defer rows.Close()

	var result []*models.TimeEntry
	for rows.Next() {
		var item models.TimeEntry
		if err := scanEntry(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the full mutable state of the entry. The duration is taken
// as supplied; use Stop to close a running session with a derived duration.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET start_time = $1, end_time = $2, duration_seconds = $3, is_pomodoro_session = $4
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.StartTime, entry.EndTime, entry.DurationSeconds, entry.IsPomodoroSession,
		entry.ID, entry.UserID).
		Scan(&entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Stop closes a running session: end_time is set and duration_seconds is
// computed from the stored start_time in one statement.
func (r *PostgresRepository) Stop(ctx context.Context, userID, entryID uuid.UUID, endTime time.Time) (*models.TimeEntry, error) {
	query := `
		UPDATE time_entries
		SET end_time = $1,
		    duration_seconds = GREATEST(0, EXTRACT(EPOCH FROM ($1 - start_time)))::integer
		WHERE id = $2 AND user_id = $3
		RETURNING ` + entryColumns
	entry := &models.TimeEntry{}
	if err := scanEntry(r.db.QueryRowContext(ctx, query, endTime, entryID, userID), entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	query := `DELETE FROM time_entries WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, entryID, userID)
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

// TimeByProject sums tracked seconds per project inside the window, largest
// total first. Entries on project-less tasks are excluded.
func (r *PostgresRepository) TimeByProject(ctx context.Context, userID uuid.UUID, window models.ReportingWindow) ([]*models.ProjectTime, error) {
	query := `
		SELECT p.id AS project_id, p.name AS project_name, COALESCE(SUM(te.duration_seconds), 0) AS total_duration_seconds
		FROM time_entries te
		JOIN tasks t ON te.task_id = t.id
		JOIN projects p ON t.project_id = p.id
		WHERE te.user_id = $1 AND t.project_id IS NOT NULL
		  AND te.start_time >= $2 AND te.start_time <= $3
		GROUP BY p.id, p.name
		ORDER BY total_duration_seconds DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to select time by project: %w", err)
	}
	defer rows.Close()

	var result []*models.ProjectTime
	for rows.Next() {
		var item models.ProjectTime
		if err := rows.Scan(&item.ProjectID, &item.ProjectName, &item.TotalDurationSeconds); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ProductivityTrend sums tracked seconds per UTC day inside the window,
// oldest first.
func (r *PostgresRepository) ProductivityTrend(ctx context.Context, userID uuid.UUID, window models.ReportingWindow) ([]*models.TrendPoint, error) {
	query := `
		SELECT DATE(te.start_time AT TIME ZONE 'UTC') AS date_point,
		       COALESCE(SUM(te.duration_seconds), 0) AS total_duration_seconds
		FROM time_entries te
		WHERE te.user_id = $1
		  AND te.start_time >= $2 AND te.start_time <= $3
		GROUP BY date_point
		ORDER BY date_point ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to select productivity trend: %w", err)
	}
	defer rows.Close()

	var result []*models.TrendPoint
	for rows.Next() {
		var item models.TrendPoint
		if err := rows.Scan(&item.Date, &item.TotalDurationSeconds); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
