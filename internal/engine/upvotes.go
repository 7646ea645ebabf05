package engine

import (
	"context"

	"github.com/mohdshuhaib/community-voice-53/internal/apperr"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/store"
)

// ToggleResult is the outcome of a toggle with the item's count after it.
type ToggleResult struct {
	State   model.ToggleState `json:"state"`
	Upvotes int               `json:"upvotes"`
}

// ToggleUpvote adds the caller's upvote on an item, or removes it if
// present. Authors cannot upvote their own items.
func (e *Engine) ToggleUpvote(ctx context.Context, caller model.Identity, itemID string) (*ToggleResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, e.db, itemID)
	if err != nil {
		return nil, err
	}
	if item.AuthorID == caller.UserID {
		return nil, apperr.SelfVote(itemID)
	}

	state, err := store.ToggleUpvote(ctx, e.db, itemID, caller.UserID, e.clock.Now())
	if err != nil {
		return nil, err
	}
	count, err := store.CountUpvotes(ctx, e.db, itemID)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("upvote toggled", "item_id", itemID, "user_id", caller.UserID, "state", state)
	return &ToggleResult{State: state, Upvotes: count}, nil
}

// VoteStatus is an item's live count and whether the caller holds an
// upvote on it.
type VoteStatus struct {
	Upvotes int  `json:"upvotes"`
	Upvoted bool `json:"upvoted"`
}

// UpvoteStatus reports the live count of an item and the caller's vote.
func (e *Engine) UpvoteStatus(ctx context.Context, caller model.Identity, itemID string) (*VoteStatus, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	count, err := store.CountUpvotes(ctx, e.db, itemID)
	if err != nil {
		return nil, err
	}
	voted, err := store.HasUpvoted(ctx, e.db, itemID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &VoteStatus{Upvotes: count, Upvoted: voted}, nil
}

// UpvoteHistory returns a user's most recent upvotes.
func (e *Engine) UpvoteHistory(ctx context.Context, caller model.Identity, userID string, limit int) ([]model.Upvote, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}
	upvotes, err := store.ListUpvotesByUser(ctx, e.db, userID, limit)
	if err != nil {
		return nil, err
	}
	if upvotes == nil {
		upvotes = []model.Upvote{}
	}
	return upvotes, nil
}

// UserActivity returns a user's submission and upvote totals.
func (e *Engine) UserActivity(ctx context.Context, caller model.Identity, userID string) (*model.Activity, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}
	return store.GetActivity(ctx, e.db, userID)
}
