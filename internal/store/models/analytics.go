package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/optitask/backend/internal/common"
)

// ProjectTime is the total tracked time against one project.
type ProjectTime struct {
	ProjectID            uuid.UUID
	ProjectName          string
	TotalDurationSeconds int64
}

// TrendPoint is the total tracked time for one day.
type TrendPoint struct {
	Date                 time.Time
	TotalDurationSeconds int64
}

// Named reporting periods accepted by PeriodQuery.
const (
	PeriodThisWeek   = "this_week"
	PeriodLast7Days  = "last_7_days"
	PeriodThisMonth  = "this_month"
	PeriodLast30Days = "last_30_days"
)

// PeriodQuery selects a reporting window either by explicit dates or by a
// named period. Explicit dates win when both are present.
type PeriodQuery struct {
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

// ReportingWindow is a resolved half-open-free interval: Start is midnight of
// the first day, End is the last second of the final day, both UTC.
type ReportingWindow struct {
	Start time.Time
	End   time.Time
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window(from, to time.Time) ReportingWindow {
	return ReportingWindow{
		Start: dateOf(from),
		End:   dateOf(to).Add(24*time.Hour - time.Second),
	}
}

// Resolve turns the query into a concrete window relative to now.
// With no period and no dates the current ISO week (Mon–Sun) is used.
func (q PeriodQuery) Resolve(now time.Time) (ReportingWindow, error) {
	if q.StartDate != nil && q.EndDate != nil {
		if q.StartDate.After(*q.EndDate) {
			return ReportingWindow{}, common.ErrorInvalidDateRange
		}
		return window(*q.StartDate, *q.EndDate), nil
	}

	today := dateOf(now)

	switch q.Period {
	case PeriodThisWeek, "":
		// Monday-based week offset.
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return window(monday, monday.AddDate(0, 0, 6)), nil
	case PeriodLast7Days:
		return window(today.AddDate(0, 0, -6), today), nil
	case PeriodThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
		return window(first, last), nil
	case PeriodLast30Days:
		return window(today.AddDate(0, 0, -29), today), nil
	default:
		return ReportingWindow{}, fmt.Errorf("%w: %q", common.ErrorInvalidPeriod, q.Period)
	}
}
