package model

import "time"

// Item is a submitted feedback record. The upvote count is not a field:
// it is always derived from the upvote ledger.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RankedItem is an item paired with its live upvote count at read time.
type RankedItem struct {
	Item
	Upvotes int `json:"upvotes"`
}

// Status is the triage state of an item. Any status may follow any other.
type Status string

// Item statuses.
const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

// Priority is the admin-assigned urgency of an item.
type Priority string

// Item priorities.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Category is the fixed set of feedback areas.
type Category string

// Item categories.
const (
	CategoryInfrastructure Category = "Infrastructure"
	CategoryAcademics      Category = "Academics"
	CategoryHostel         Category = "Hostel"
	CategoryFaculty        Category = "Faculty"
	CategoryOther          Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryInfrastructure,
	CategoryAcademics,
	CategoryHostel,
	CategoryFaculty,
	CategoryOther,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemUpdate carries the admin-mutable fields of an item. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Status == nil && u.Priority == nil
}

// Sort orders for item listings.
const (
	SortNewest  = "newest"
	SortUpvotes = "upvotes"
)

// ItemFilter is a conjunction of optional constraints on the item board.
// Zero values mean "no constraint".
type ItemFilter struct {
	Category Category
	Status   Status
	Priority Priority
	// Query is matched case-insensitively as a substring of the title or
	// the description.
	Query string
	Range *DateRange
	// Sort is SortNewest (default) or SortUpvotes.
	Sort  string
	Limit int
}
