package model

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of calendar days in a reference
// location. It is the only place that decides whether a timestamp is
// "in range": both the store's SQL filter and in-memory filtering go
// through Bounds.
type DateRange struct {
	From     time.Time
	To       time.Time
	Location *time.Location
}

// NewDateRange builds a range from two days in loc. A nil loc means UTC.
func NewDateRange(from, to time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{From: from, To: to, Location: loc}
	start, end := r.Bounds()
	if !start.Before(end) {
		return DateRange{}, fmt.Errorf("range start %s is after end %s",
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return r, nil
}

// LastDays returns the range covering the n calendar days ending on the
// day of now, in loc.
func LastDays(now time.Time, n int, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	if n < 1 {
		n = 1
	}
	now = now.In(loc)
	return DateRange{From: now.AddDate(0, 0, -(n - 1)), To: now, Location: loc}
}

func (r DateRange) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Bounds returns the half-open instant interval [start, end) covering
// From at 00:00:00 through the last instant of To, in the range location.
func (r DateRange) Bounds() (start, end time.Time) {
	loc := r.location()
	start = StartOfDay(r.From, loc)
	end = StartOfDay(r.To, loc).AddDate(0, 0, 1)
	return start, end
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	start, end := r.Bounds()
	return !t.Before(start) && t.Before(end)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
