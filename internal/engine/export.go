package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/store"
)

var exportHeader = []string{
	"ID", "Title", "Description", "Category", "Status", "Priority",
	"Author", "Upvotes", "Created At", "Updated At",
}

// ExportFilename is the attachment name of an export taken at now.
func ExportFilename(now time.Time) string {
	return "feedback-report-" + now.UTC().Format(time.DateOnly) + ".csv"
}

// ExportCSV writes the items matching f to w as CSV, one row per item with
// its live upvote count. Admin only. It returns the number of rows written.
func (e *Engine) ExportCSV(ctx context.Context, caller model.Identity, w io.Writer, f model.ItemFilter) (int, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}

	items, err := store.ListItems(ctx, e.db, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("writing export header: %w", err)
	}
	for _, it := range items {
		err := cw.Write([]string{
			it.ID,
			it.Title,
			it.Description,
			string(it.Category),
			string(it.Status),
			string(it.Priority),
			it.AuthorID,
			strconv.Itoa(it.Upvotes),
			it.CreatedAt.UTC().Format(time.RFC3339),
			it.UpdatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return 0, fmt.Errorf("writing export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing export: %w", err)
	}

	e.logger.Info("items exported", "actor_id", caller.UserID, "rows", len(items))
	return len(items), nil
}
