package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// Duplicate search tuning.
const (
	// MinSimilarLength is the shortest fragment worth searching for.
	MinSimilarLength = 4
	// DefaultSimilarLimit is the number of candidates returned when no
	// limit is given.
	DefaultSimilarLimit = 3
)

// FindSimilarItems returns up to limit items whose title contains the
// fragment, ignoring case, newest first. Fragments shorter than
// MinSimilarLength return no results without touching the database.
//
// Matching is plain substring containment: rephrased duplicates are not
// found.
func FindSimilarItems(ctx context.Context, db *sql.DB, fragment string, limit int) ([]model.Item, error) {
	fragment = strings.TrimSpace(fragment)
	if utf8.RuneCountInString(fragment) < MinSimilarLength {
		return []model.Item{}, nil
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i
		 WHERE instr(fold(i.title), fold(?)) > 0
		 ORDER BY i.created_at DESC, i.id ASC
		 LIMIT ?`, fragment, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding similar items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
