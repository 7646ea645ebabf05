package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// timeLayout is fixed-width UTC so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// rangeArgs returns the stored-form bounds of r.
func rangeArgs(r model.DateRange) (string, string) {
	start, end := r.Bounds()
	return formatTime(start), formatTime(end)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const itemColumns = `i.id, i.title, i.description, i.category, i.priority, i.status,
	        i.author_id, i.created_at, i.updated_at`

func scanItem(s scanner, extra ...any) (model.Item, error) {
	var item model.Item
	var createdAt, updatedAt string
	dest := append([]any{&item.ID, &item.Title, &item.Description, &item.Category, &item.Priority,
		&item.Status, &item.AuthorID, &createdAt, &updatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return model.Item{}, err
	}

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Item{}, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func isSelfVoteAbort(err error) bool {
	return err != nil && strings.Contains(err.Error(), "self vote")
}
