// Package analytics computes dashboard aggregates over a snapshot of items
// and upvotes. Every function is pure: callers filter the snapshot to a
// date range first (see Filter) and every aggregate consumes that same set.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// DayLabelLayout is the display form of a bucketed day.
const DayLabelLayout = "Jan 02"

// DefaultTop is the size of the top-upvoted list when none is given.
const DefaultTop = 10

// DayCount is the number of items created on one calendar day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// DayCategories is the per-category breakdown of one calendar day.
type DayCategories struct {
	Day    time.Time              `json:"day"`
	Label  string                 `json:"label"`
	Counts map[model.Category]int `json:"counts"`
}

// Filter returns the items created within r, preserving order.
func Filter(items []model.Item, r model.DateRange) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if r.Contains(item.CreatedAt) {
			out = append(out, item)
		}
	}
	return out
}

// StatusDistribution counts items per status. Statuses with no items are
// absent from the result.
func StatusDistribution(items []model.Item) map[model.Status]int {
	dist := make(map[model.Status]int)
	for _, item := range items {
		dist[item.Status]++
	}
	return dist
}

// CategoryDistribution counts items per category. Categories with no items
// are absent from the result.
func CategoryDistribution(items []model.Item) map[model.Category]int {
	dist := make(map[model.Category]int)
	for _, item := range items {
		dist[item.Category]++
	}
	return dist
}

// TimeSeries buckets items by the calendar day of created_at in loc. Only
// days with at least one item appear, in order of first appearance in
// items. Use SortDays for chronological order; labels do not sort.
func TimeSeries(items []model.Item, loc *time.Location) []DayCount {
	loc = orUTC(loc)
	index := make(map[string]int)
	var series []DayCount
	for _, item := range items {
		day := model.StartOfDay(item.CreatedAt, loc)
		key := day.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, DayCount{Day: day, Label: day.Format(DayLabelLayout)})
		}
		series[i].Count++
	}
	return series
}

// CategoryTrend is TimeSeries crossed with category.
func CategoryTrend(items []model.Item, loc *time.Location) []DayCategories {
	loc = orUTC(loc)
	index := make(map[string]int)
	var trend []DayCategories
	for _, item := range items {
		day := model.StartOfDay(item.CreatedAt, loc)
		key := day.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(trend)
			index[key] = i
			trend = append(trend, DayCategories{
				Day:    day,
				Label:  day.Format(DayLabelLayout),
				Counts: make(map[model.Category]int),
			})
		}
		trend[i].Counts[item.Category]++
	}
	return trend
}

// SortDays orders day counts chronologically in place.
func SortDays(days []DayCount) {
	slices.SortFunc(days, func(a, b DayCount) int { return a.Day.Compare(b.Day) })
}

// SortTrend orders a category trend chronologically in place.
func SortTrend(days []DayCategories) {
	slices.SortFunc(days, func(a, b DayCategories) int { return a.Day.Compare(b.Day) })
}

// AverageResolutionDays is the mean time to resolution of the RESOLVED
// items, in whole days. Each item contributes updated_at - created_at
// truncated to whole days; the mean is rounded half up. It returns 0 when
// no item is resolved.
func AverageResolutionDays(items []model.Item) int {
	var total, resolved int
	for _, item := range items {
		if item.Status != model.StatusResolved {
			continue
		}
		days := int(item.UpdatedAt.Sub(item.CreatedAt) / (24 * time.Hour))
		if days < 0 {
			days = 0
		}
		total += days
		resolved++
	}
	if resolved == 0 {
		return 0
	}
	return (2*total + resolved) / (2 * resolved)
}

// CountByItem aggregates the ledger into live upvote counts per item ID.
func CountByItem(upvotes []model.Upvote) map[string]int {
	counts := make(map[string]int)
	for _, u := range upvotes {
		counts[u.ItemID]++
	}
	return counts
}

// TopUpvoted ranks items by live upvote count, newest first among equal
// counts and then by ID, and keeps the first n. n <= 0 keeps all.
func TopUpvoted(items []model.Item, upvotes []model.Upvote, n int) []model.RankedItem {
	counts := CountByItem(upvotes)
	ranked := make([]model.RankedItem, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, model.RankedItem{Item: item, Upvotes: counts[item.ID]})
	}

	slices.SortFunc(ranked, func(a, b model.RankedItem) int {
		if c := cmp.Compare(b.Upvotes, a.Upvotes); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Report is the full dashboard over one filtered item set.
type Report struct {
	From                  string                 `json:"from"`
	To                    string                 `json:"to"`
	Total                 int                    `json:"total"`
	StatusDistribution    map[model.Status]int   `json:"status_distribution"`
	CategoryDistribution  map[model.Category]int `json:"category_distribution"`
	TimeSeries            []DayCount             `json:"time_series"`
	CategoryTrend         []DayCategories        `json:"category_trend"`
	AverageResolutionDays int                    `json:"avg_resolution_days"`
	TopUpvoted            []model.RankedItem     `json:"top_upvoted"`
}

// Summarize filters items and upvotes to r and computes every aggregate
// over the result. Day buckets are returned in chronological order.
func Summarize(items []model.Item, upvotes []model.Upvote, r model.DateRange, top int) Report {
	if top <= 0 {
		top = DefaultTop
	}
	loc := orUTC(r.Location)
	inRange := Filter(items, r)

	ids := make(map[string]struct{}, len(inRange))
	for _, item := range inRange {
		ids[item.ID] = struct{}{}
	}
	var ledger []model.Upvote
	for _, u := range upvotes {
		if _, ok := ids[u.ItemID]; ok {
			ledger = append(ledger, u)
		}
	}

	series := TimeSeries(inRange, loc)
	SortDays(series)
	trend := CategoryTrend(inRange, loc)
	SortTrend(trend)

	return Report{
		From:                  r.From.In(loc).Format(time.DateOnly),
		To:                    r.To.In(loc).Format(time.DateOnly),
		Total:                 len(inRange),
		StatusDistribution:    StatusDistribution(inRange),
		CategoryDistribution:  CategoryDistribution(inRange),
		TimeSeries:            series,
		CategoryTrend:         trend,
		AverageResolutionDays: AverageResolutionDays(inRange),
		TopUpvoted:            TopUpvoted(inRange, ledger, top),
	}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
