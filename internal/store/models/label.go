package models

import (
	"time"

	"github.com/google/uuid"
)

// Label names are unique per owning user, enforced by the schema.
type Label struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Color     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskLabel links a task to a label. The pair is the primary key; there is no
// owner column, ownership follows from the two referenced rows.
type TaskLabel struct {
	TaskID  uuid.UUID
	LabelID uuid.UUID
}
