package engine

import (
	"context"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/notify"
	"github.com/mohdshuhaib/community-voice-53/internal/store"
)

// Submission is what an author provides for a new item.
type Submission struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
}

// ItemDetail is an item with its live upvote count and whether the caller
// has upvoted it.
type ItemDetail struct {
	model.RankedItem
	Upvoted bool `json:"upvoted"`
}

// SubmitItem creates an item authored by the caller.
func (e *Engine) SubmitItem(ctx context.Context, caller model.Identity, s Submission) (*model.Item, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, e.db, store.NewItem{
		AuthorID:    caller.UserID,
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
	}, e.clock.Now())
	if err != nil {
		return nil, err
	}

	e.logger.Info("item submitted", "item_id", item.ID, "author_id", item.AuthorID, "category", item.Category)
	e.dispatch(ctx, notify.Change{Kind: notify.KindNewFeedback, Item: *item, At: item.CreatedAt})
	return item, nil
}

// GetItem returns one item with its live count.
func (e *Engine) GetItem(ctx context.Context, caller model.Identity, id string) (*ItemDetail, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, e.db, id)
	if err != nil {
		return nil, err
	}
	status, err := e.UpvoteStatus(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &ItemDetail{
		RankedItem: model.RankedItem{Item: *item, Upvotes: status.Upvotes},
		Upvoted:    status.Upvoted,
	}, nil
}

// UpdateItem changes an item's status and/or priority. Admin only.
func (e *Engine) UpdateItem(ctx context.Context, caller model.Identity, id string, upd model.ItemUpdate) (*model.Item, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	before, after, err := store.ApplyItemUpdate(ctx, e.db, caller, id, upd, e.clock.Now())
	if err != nil {
		return nil, err
	}

	e.logger.Info("item updated",
		"item_id", id,
		"actor_id", caller.UserID,
		"status", after.Status,
		"priority", after.Priority,
	)
	if after.Status != before.Status {
		e.dispatch(ctx, notify.Change{
			Kind:      notify.KindStatusChange,
			Item:      *after,
			OldStatus: before.Status,
			At:        after.UpdatedAt,
		})
	}
	if after.Priority != before.Priority {
		e.dispatch(ctx, notify.Change{
			Kind:        notify.KindPriorityChange,
			Item:        *after,
			OldPriority: before.Priority,
			At:          after.UpdatedAt,
		})
	}
	return after, nil
}

// QueryItems lists the public board.
func (e *Engine) QueryItems(ctx context.Context, caller model.Identity, f model.ItemFilter) ([]model.RankedItem, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	items, err := store.ListItems(ctx, e.db, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.RankedItem{}
	}
	return items, nil
}

// FindSimilar returns existing items whose titles contain fragment.
func (e *Engine) FindSimilar(ctx context.Context, caller model.Identity, fragment string, limit int) ([]model.Item, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return store.FindSimilarItems(ctx, e.db, fragment, limit)
}

// ListAuthorItems returns a user's own submissions.
func (e *Engine) ListAuthorItems(ctx context.Context, caller model.Identity, userID string) ([]model.Item, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}
	items, err := store.ListItemsByAuthor(ctx, e.db, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
