package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohdshuhaib/community-voice-53/internal/apperr"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// NewItem holds the author-supplied fields of a submission.
type NewItem struct {
	AuthorID    string
	Title       string
	Description string
	Category    model.Category
}

// Validate checks the submission before it reaches the database.
func (n NewItem) Validate() error {
	if n.AuthorID == "" {
		return apperr.Validation("author required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return apperr.Validation("title required")
	}
	if strings.TrimSpace(n.Description) == "" {
		return apperr.Validation("description required")
	}
	if !n.Category.Valid() {
		return apperr.Validation("invalid category %q", n.Category)
	}
	return nil
}

// CreateItem creates a new item with status NEW and priority LOW.
func CreateItem(ctx context.Context, db *sql.DB, n NewItem, at time.Time) (*model.Item, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ts := formatTime(at)
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, category, priority, status, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(n.Title), strings.TrimSpace(n.Description), string(n.Category),
		string(model.PriorityLow), string(model.StatusNew), n.AuthorID, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q rowQueryer, id string) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items i WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

// UpdateItem applies the admin-mutable fields of upd in a single
// statement and bumps updated_at. The actor is re-checked here even
// though callers are expected to have authorized already.
func UpdateItem(ctx context.Context, db *sql.DB, actor model.Identity, id string, upd model.ItemUpdate, at time.Time) (*model.Item, error) {
	_, after, err := ApplyItemUpdate(ctx, db, actor, id, upd, at)
	return after, err
}

// ApplyItemUpdate is UpdateItem returning the item both as it was before
// the update and after it, read in the same transaction.
func ApplyItemUpdate(ctx context.Context, db *sql.DB, actor model.Identity, id string, upd model.ItemUpdate, at time.Time) (before, after *model.Item, err error) {
	if !actor.IsAdmin() {
		return nil, nil, apperr.Unauthorized("admin role required to update items")
	}
	if upd.Empty() {
		return nil, nil, apperr.Validation("status or priority required")
	}

	var status, priority any
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, nil, apperr.Validation("invalid status %q", *upd.Status)
		}
		status = string(*upd.Status)
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return nil, nil, apperr.Validation("invalid priority %q", *upd.Priority)
		}
		priority = string(*upd.Priority)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	before, err = getItem(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	// MAX keeps updated_at >= created_at even if the caller's clock lags.
	_, err = tx.ExecContext(ctx,
		`UPDATE items
		 SET status = COALESCE(?, status),
		     priority = COALESCE(?, priority),
		     updated_at = MAX(?, created_at)
		 WHERE id = ?`,
		status, priority, formatTime(at), id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("updating item: %w", err)
	}

	after, err = getItem(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing item update: %w", err)
	}
	return before, after, nil
}

// UpdateItemStatus sets an item's status. Any status may follow any other.
func UpdateItemStatus(ctx context.Context, db *sql.DB, actor model.Identity, id string, status model.Status, at time.Time) (*model.Item, error) {
	return UpdateItem(ctx, db, actor, id, model.ItemUpdate{Status: &status}, at)
}

// UpdateItemPriority sets an item's priority.
func UpdateItemPriority(ctx context.Context, db *sql.DB, actor model.Identity, id string, priority model.Priority, at time.Time) (*model.Item, error) {
	return UpdateItem(ctx, db, actor, id, model.ItemUpdate{Priority: &priority}, at)
}

// ListItemsByAuthor returns an author's items, newest first.
func ListItemsByAuthor(ctx context.Context, db *sql.DB, authorID string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i
		 WHERE i.author_id = ?
		 ORDER BY i.created_at DESC, i.id ASC`, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by author: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItems returns the items matching every set field of f, each with
// its live upvote count.
func ListItems(ctx context.Context, db *sql.DB, f model.ItemFilter) ([]model.RankedItem, error) {
	query := `SELECT ` + itemColumns + `,
	                 (SELECT COUNT(*) FROM upvotes u WHERE u.item_id = i.id) AS upvotes
	          FROM items i
	          WHERE 1=1`
	var args []any

	if f.Category != "" {
		query += ` AND i.category = ?`
		args = append(args, string(f.Category))
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		query += ` AND i.priority = ?`
		args = append(args, string(f.Priority))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		query += ` AND (instr(fold(i.title), fold(?)) > 0 OR instr(fold(i.description), fold(?)) > 0)`
		args = append(args, q, q)
	}
	if f.Range != nil {
		start, end := rangeArgs(*f.Range)
		query += ` AND i.created_at >= ? AND i.created_at < ?`
		args = append(args, start, end)
	}

	switch f.Sort {
	case "", model.SortNewest:
		query += ` ORDER BY i.created_at DESC, i.id ASC`
	case model.SortUpvotes:
		query += ` ORDER BY upvotes DESC, i.created_at DESC, i.id ASC`
	default:
		return nil, apperr.Validation("invalid sort %q", f.Sort)
	}

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.RankedItem
	for rows.Next() {
		var ranked model.RankedItem
		item, err := scanItem(rows, &ranked.Upvotes)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		ranked.Item = item
		items = append(items, ranked)
	}
	return items, rows.Err()
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
