// Package models holds the persisted entity types of the task store and the
// filter/option types the repositories accept. All entities carry the owning
// user directly; the task/label association derives ownership from both of
// its endpoints instead.
package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Color     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
