package valueobject

import (
	"errors"
	"fmt"
	"time"
)

// DateRange is a value object representing an inclusive date interval,
// used for rental coverage windows. It is immutable.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a date range; end must not precede start.
// Times are truncated to whole days in UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, errors.New("date range requires both start and end dates")
	}
	s := truncateToDay(start)
	e := truncateToDay(end)
	if e.Before(s) {
		return DateRange{}, errors.New("end date cannot be before start date")
	}
	return DateRange{start: s, end: e}, nil
}

// MustNewDateRange creates a DateRange and panics on error
func MustNewDateRange(start, end time.Time) DateRange {
	r, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Start returns the first covered day
func (r DateRange) Start() time.Time {
	return r.start
}

// End returns the last covered day
func (r DateRange) End() time.Time {
	return r.end
}

// IsZero returns true for the zero range
func (r DateRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Days returns the number of covered days, inclusive of both endpoints
func (r DateRange) Days() int {
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

// Overlaps reports whether the two inclusive intervals share at least one day
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !r.end.Before(other.start)
}

// Contains reports whether the given date falls inside the interval
func (r DateRange) Contains(t time.Time) bool {
	d := truncateToDay(t)
	return !d.Before(r.start) && !d.After(r.end)
}

// String returns a human-readable representation
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.start.Format("2006-01-02"), r.end.Format("2006-01-02"))
}
