package model

import "time"

// Upvote is one row of the ledger: a single user's support for an item.
type Upvote struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemTitle  string `json:"item_title,omitempty"`
	ItemStatus Status `json:"item_status,omitempty"`
}

// ToggleState reports what a toggle did to the ledger.
type ToggleState string

// Toggle outcomes.
const (
	ToggleAdded   ToggleState = "ADDED"
	ToggleRemoved ToggleState = "REMOVED"
)

// Activity summarizes one user's participation.
type Activity struct {
	UserID    string `json:"user_id"`
	Submitted int    `json:"submitted"`
	Resolved  int    `json:"resolved"`
	Upvotes   int    `json:"upvotes"`
}
