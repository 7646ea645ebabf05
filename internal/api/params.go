package api

import (
	"net/url"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/mohdshuhaib/community-voice-53/internal/apperr"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// maxLimit caps every limit query parameter.
const maxLimit = 100

// location resolves the tz parameter, falling back to def.
func location(q url.Values, def *time.Location) (*time.Location, error) {
	tz := q.Get("tz")
	if tz == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, apperr.Validation("unknown time zone %q", tz)
	}
	return loc, nil
}

// dateRange parses the from and to parameters as calendar days in loc.
// Both or neither must be given; neither yields nil.
func dateRange(q url.Values, loc *time.Location) (*model.DateRange, error) {
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, apperr.Validation("from and to must be given together")
	}

	start, err := dateparse.ParseIn(from, loc)
	if err != nil {
		return nil, apperr.Validation("invalid from date %q", from)
	}
	end, err := dateparse.ParseIn(to, loc)
	if err != nil {
		return nil, apperr.Validation("invalid to date %q", to)
	}

	r, err := model.NewDateRange(start, end, loc)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	return &r, nil
}

// limit parses a non-negative limit parameter capped at maxLimit. Zero
// means the caller's default.
func limit(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.Validation("invalid %s %q", name, s)
	}
	return min(n, maxLimit), nil
}

// itemFilter builds a board filter from query parameters.
func itemFilter(q url.Values, def *time.Location) (model.ItemFilter, error) {
	f := model.ItemFilter{
		Category: model.Category(q.Get("category")),
		Status:   model.Status(q.Get("status")),
		Priority: model.Priority(q.Get("priority")),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, apperr.Validation("invalid category %q", f.Category)
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, apperr.Validation("invalid status %q", f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return f, apperr.Validation("invalid priority %q", f.Priority)
	}

	loc, err := location(q, def)
	if err != nil {
		return f, err
	}
	if f.Range, err = dateRange(q, loc); err != nil {
		return f, err
	}
	if f.Limit, err = limit(q, "limit"); err != nil {
		return f, err
	}
	return f, nil
}
