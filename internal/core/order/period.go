package order

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Period names a calendar window used to filter order listings.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// PeriodRange returns the [from, to) window of p containing at.
func PeriodRange(p Period, at time.Time) (time.Time, time.Time, error) {
	n := now.With(at)
	switch p {
	case PeriodToday:
		return n.BeginningOfDay(), n.EndOfDay().Add(time.Nanosecond), nil
	case PeriodWeek:
		return n.BeginningOfWeek(), n.EndOfWeek().Add(time.Nanosecond), nil
	case PeriodMonth:
		return n.BeginningOfMonth(), n.EndOfMonth().Add(time.Nanosecond), nil
	case PeriodYear:
		return n.BeginningOfYear(), n.EndOfYear().Add(time.Nanosecond), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q (want today, week, month or year)", p)
}
