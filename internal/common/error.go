// Package common defines shared sentinel errors used across the storage
// layers of OptiTask. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	//
	// ErrorNotFound covers both a genuinely absent row and a row owned by
	// another user; repositories never reveal which of the two it was.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors.
	ErrorInvalidPeriod    = errors.New("invalid reporting period")
	ErrorInvalidDateRange = errors.New("start date is after end date")

	// Internal flow control.
	ErrorInternal = errors.New("internal error")
)
