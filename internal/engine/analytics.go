package engine

import (
	"context"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/analytics"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/store"
)

// AnalyticsQuery selects the items a report covers.
type AnalyticsQuery struct {
	// Range is the inclusive span of creation days. Nil means the last
	// DefaultAnalyticsDays days ending today in Location.
	Range *model.DateRange
	// Location defaults to the engine location.
	Location *time.Location
	// Top is the size of the top-upvoted list; <= 0 means
	// analytics.DefaultTop.
	Top int
}

// GetAnalytics computes the dashboard over the items created in the
// queried range.
func (e *Engine) GetAnalytics(ctx context.Context, caller model.Identity, q AnalyticsQuery) (*analytics.Report, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	loc := q.Location
	if loc == nil {
		loc = e.location
	}
	var span model.DateRange
	if q.Range != nil {
		span = *q.Range
	} else {
		span = model.LastDays(e.clock.Now(), DefaultAnalyticsDays, loc)
	}

	ranked, err := store.ListItems(ctx, e.db, model.ItemFilter{Range: &span})
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, len(ranked))
	for i, ri := range ranked {
		items[i] = ri.Item
	}

	upvotes, err := store.ListUpvotesInRange(ctx, e.db, span)
	if err != nil {
		return nil, err
	}

	report := analytics.Summarize(items, upvotes, span, q.Top)
	return &report, nil
}
