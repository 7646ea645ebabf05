package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mohdshuhaib/community-voice-53/internal/apperr"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// DefaultHistoryLimit is the page size of upvote history when none is given.
const DefaultHistoryLimit = 10

// ToggleUpvote removes the user's upvote on the item if it exists and
// adds it otherwise. The UNIQUE (item_id, user_id) constraint is what
// keeps the ledger at one row per pair, so the outcome is correct across
// processes sharing the database, not just within this one. The
// transaction begins IMMEDIATE, so no other writer can slip in between
// the delete and the insert.
func ToggleUpvote(ctx context.Context, db *sql.DB, itemID, userID string, at time.Time) (model.ToggleState, error) {
	if userID == "" {
		return "", apperr.Validation("user required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var authorID string
	err = tx.QueryRowContext(ctx, `SELECT author_id FROM items WHERE id = ?`, itemID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound("item %s not found", itemID)
	}
	if err != nil {
		return "", fmt.Errorf("checking item: %w", err)
	}
	if authorID == userID {
		return "", apperr.SelfVote(itemID)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM upvotes WHERE item_id = ? AND user_id = ?`, itemID, userID,
	)
	if err != nil {
		return "", fmt.Errorf("removing upvote: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("checking removed upvote: %w", err)
	}
	if removed > 0 {
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("committing upvote removal: %w", err)
		}
		return model.ToggleRemoved, nil
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO upvotes (id, item_id, user_id, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (item_id, user_id) DO NOTHING`,
		uuid.NewString(), itemID, userID, formatTime(at),
	)
	if isSelfVoteAbort(err) {
		return "", apperr.SelfVote(itemID)
	}
	if err != nil {
		return "", fmt.Errorf("adding upvote: %w", err)
	}
	added, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("checking added upvote: %w", err)
	}
	if added == 0 {
		// Only reachable if a writer bypassed the immediate lock.
		return "", apperr.Conflict("upvote on item %s changed concurrently", itemID)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing upvote: %w", err)
	}
	return model.ToggleAdded, nil
}

// HasUpvoted reports whether the user holds a live upvote on the item.
func HasUpvoted(ctx context.Context, db *sql.DB, itemID, userID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upvotes WHERE item_id = ? AND user_id = ?`, itemID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking upvote: %w", err)
	}
	return count > 0, nil
}

// CountUpvotes returns the number of live ledger rows for the item. This
// is the only source of an item's upvote count.
func CountUpvotes(ctx context.Context, db *sql.DB, itemID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upvotes WHERE item_id = ?`, itemID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting upvotes: %w", err)
	}
	return count, nil
}

const upvoteColumns = `u.id, u.item_id, u.user_id, u.created_at, i.title, i.status`

// ListUpvotesByUser returns a user's upvotes, most recent first, joined
// with the upvoted item's title and status.
func ListUpvotesByUser(ctx context.Context, db *sql.DB, userID string, limit int) ([]model.Upvote, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+upvoteColumns+`
		 FROM upvotes u
		 JOIN items i ON i.id = u.item_id
		 WHERE u.user_id = ?
		 ORDER BY u.created_at DESC, u.id ASC
		 LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upvotes by user: %w", err)
	}
	defer rows.Close()

	return scanUpvotes(rows)
}

// ListUpvotesForItem returns every live upvote on an item, oldest first.
func ListUpvotesForItem(ctx context.Context, db *sql.DB, itemID string) ([]model.Upvote, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+upvoteColumns+`
		 FROM upvotes u
		 JOIN items i ON i.id = u.item_id
		 WHERE u.item_id = ?
		 ORDER BY u.created_at ASC, u.id ASC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upvotes for item: %w", err)
	}
	defer rows.Close()

	return scanUpvotes(rows)
}

// ListUpvotesInRange returns the ledger rows of every item created within r.
func ListUpvotesInRange(ctx context.Context, db *sql.DB, r model.DateRange) ([]model.Upvote, error) {
	start, end := rangeArgs(r)
	rows, err := db.QueryContext(ctx,
		`SELECT `+upvoteColumns+`
		 FROM upvotes u
		 JOIN items i ON i.id = u.item_id
		 WHERE i.created_at >= ? AND i.created_at < ?`, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upvotes in range: %w", err)
	}
	defer rows.Close()

	return scanUpvotes(rows)
}

func scanUpvotes(rows *sql.Rows) ([]model.Upvote, error) {
	var upvotes []model.Upvote
	for rows.Next() {
		var u model.Upvote
		var createdAt string
		if err := rows.Scan(&u.ID, &u.ItemID, &u.UserID, &createdAt, &u.ItemTitle, &u.ItemStatus); err != nil {
			return nil, fmt.Errorf("scanning upvote: %w", err)
		}
		t, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		u.CreatedAt = t
		upvotes = append(upvotes, u)
	}
	return upvotes, rows.Err()
}

// GetActivity returns a user's submission and upvote totals.
func GetActivity(ctx context.Context, db *sql.DB, userID string) (*model.Activity, error) {
	a := &model.Activity{UserID: userID}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM items WHERE author_id = ?),
		     (SELECT COUNT(*) FROM items WHERE author_id = ? AND status = ?),
		     (SELECT COUNT(*) FROM upvotes WHERE user_id = ?)`,
		userID, userID, string(model.StatusResolved), userID,
	).Scan(&a.Submitted, &a.Resolved, &a.Upvotes)
	if err != nil {
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	return a, nil
}
