package models

import (
	"time"
)

// MoveHistory is one row of the append-only location-change ledger. A nil
// FromLocationID marks the item's initial placement.
type MoveHistory struct {
	ID             int64     `json:"id"`
	ParentItemID   int64     `json:"parent_item_id"`
	ParentItem     string    `json:"parent_item,omitempty"` // Resolved item name, empty if the item was deleted
	FromLocationID *int64    `json:"from_location_id"`
	FromLocation   string    `json:"from_location,omitempty"`
	ToLocationID   int64     `json:"to_location_id"`
	ToLocation     string    `json:"to_location,omitempty"`
	MovedAt        time.Time `json:"moved_at"`
	MovedBy        int64     `json:"moved_by"`
	MovedByName    string    `json:"moved_by_name,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// AssignmentHistory is one row of the append-only reassignment ledger. A nil
// FromParentItemID marks the initial assignment, a nil ToParentItemID an
// unassignment.
type AssignmentHistory struct {
	ID               int64     `json:"id"`
	ChildItemID      int64     `json:"child_item_id"`
	ChildItem        string    `json:"child_item,omitempty"`
	FromParentItemID *int64    `json:"from_parent_item_id"`
	FromParentItem   string    `json:"from_parent_item,omitempty"`
	ToParentItemID   *int64    `json:"to_parent_item_id"`
	ToParentItem     string    `json:"to_parent_item,omitempty"`
	AssignedAt       time.Time `json:"assigned_at"`
	AssignedBy       int64     `json:"assigned_by"`
	AssignedByName   string    `json:"assigned_by_name,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// MoveHistoryFilters narrows move history queries. LocationID matches rows
// where the location is either the source or the destination. Date bounds
// are inclusive.
type MoveHistoryFilters struct {
	ParentItemID *int64     `json:"parent_item_id,omitempty"`
	LocationID   *int64     `json:"location_id,omitempty"`
	MovedBy      *int64     `json:"moved_by,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
}

// AssignmentHistoryFilters narrows assignment history queries. ParentItemID
// matches rows where the parent is either the old or the new assignee.
type AssignmentHistoryFilters struct {
	ChildItemID  *int64     `json:"child_item_id,omitempty"`
	ParentItemID *int64     `json:"parent_item_id,omitempty"`
	AssignedBy   *int64     `json:"assigned_by,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
}

// MoveRequest represents the request payload for moving a parent item
type MoveRequest struct {
	DestinationLocationID int64  `json:"destination_location_id"`
	Notes                 string `json:"notes,omitempty"`
}

// MoveResult reports where a successful move landed
type MoveResult struct {
	ParentItemID    int64  `json:"parent_item_id"`
	UpdatedLocation string `json:"updated_location"`
	HistoryID       int64  `json:"history_id"`
}

// AssignRequest represents the request payload for reassigning a child item.
// A null parent_item_id unassigns the child.
type AssignRequest struct {
	ParentItemID *int64 `json:"parent_item_id"`
	Notes        string `json:"notes,omitempty"`
}

// MoveHistoryListResponse represents the response for move history queries
type MoveHistoryListResponse struct {
	Moves []MoveHistory `json:"moves"`
	Total int           `json:"total"`
}

// AssignmentHistoryListResponse represents the response for assignment history queries
type AssignmentHistoryListResponse struct {
	Assignments []AssignmentHistory `json:"assignments"`
	Total       int                 `json:"total"`
}
