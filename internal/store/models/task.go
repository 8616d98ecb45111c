package models

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses known to the application. The status column itself is
// open-ended text, so rows written by other clients may carry values outside
// this set and are passed through untouched.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProjectID   *uuid.UUID
	Title       string
	Description *string
	Status      string
	DueDate     *time.Time
	Order       *int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Done reports whether the task has reached its terminal status.
func (t *Task) Done() bool {
	return t.Status == StatusDone
}

// TaskFilter narrows task listings. Nil fields match everything.
type TaskFilter struct {
	ProjectID *uuid.UUID
	Status    *string
}

// Page is a 1-based pagination request.
type Page struct {
	Number  int64
	PerPage int64
}

const (
	DefaultPageNumber = 1
	DefaultPerPage    = 10
)

// Normalize replaces out-of-range values with the defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = DefaultPageNumber
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int64 {
	return (p.Number - 1) * p.PerPage
}

// TaskPage is one page of a task listing together with totals.
type TaskPage struct {
	Items      []*Task
	TotalItems int64
	TotalPages int64
	Page       int64
	PerPage    int64
}
