package model

import (
	"testing"
	"time"
)

func TestEnumValidation(t *testing.T) {
	if !StatusResolved.Valid() || Status("DONE").Valid() || Status("").Valid() {
		t.Error("unexpected status validation result")
	}
	if !PriorityHigh.Valid() || Priority("low").Valid() {
		t.Error("unexpected priority validation result")
	}
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("Parking").Valid() {
		t.Error("unknown category should be invalid")
	}
}

func TestDateRangeBoundsInclusiveDays(t *testing.T) {
	from := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	to := time.Date(2026, 3, 12, 1, 0, 0, 0, time.UTC)
	r, err := NewDateRange(from, to, time.UTC)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}

	tests := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 3, 12, 23, 59, 59, 999, time.UTC), true},
		{time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestDateRangeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	r, err := NewDateRange(day, day, loc)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}

	// 2026-03-09 19:30 UTC is 2026-03-10 00:30 in UTC+5.
	if !r.Contains(time.Date(2026, 3, 9, 19, 30, 0, 0, time.UTC)) {
		t.Error("expected instant to be in range in the reference location")
	}
	if r.Contains(time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)) {
		t.Error("expected instant after local midnight to be out of range")
	}
}

func TestNewDateRangeRejectsInverted(t *testing.T) {
	from := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := NewDateRange(from, to, nil); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	r := LastDays(now, 30, time.UTC)
	start, end := r.Bounds()
	if want := time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %s, want %s", start, want)
	}
	if want := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %s, want %s", end, want)
	}
}
