package models

import (
	"time"

	"github.com/google/uuid"
)

type TimeEntry struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	TaskID            uuid.UUID
	StartTime         time.Time
	EndTime           *time.Time
	DurationSeconds   *int32
	IsPomodoroSession bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TimeEntryFilter narrows time entry listings. Nil fields match everything;
// From/To bound the start_time column inclusively.
type TimeEntryFilter struct {
	TaskID *uuid.UUID
	From   *time.Time
	To     *time.Time
}
