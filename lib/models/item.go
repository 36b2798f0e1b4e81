package models

// Item type categories. Parent items occupy a location; child items attach
// to a parent item.
const (
	ItemCategoryParent = "PARENT"
	ItemCategoryChild  = "CHILD"
)

// ItemType categorizes parent or child items (pallet, server, disk, ...)
type ItemType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"` // PARENT or CHILD
	AuditFields
}

// ParentItem is a top-level inventory unit. It is always at exactly one
// location; its children are wherever it is.
type ParentItem struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	Description       string `json:"description,omitempty"`
	ItemTypeID        int64  `json:"item_type_id"`
	ItemType          string `json:"item_type,omitempty"` // Resolved type name, read-only
	CurrentLocationID int64  `json:"current_location_id"`
	CurrentLocation   string `json:"current_location,omitempty"` // Resolved location name, read-only
	AuditFields
}

// ChildItem is a component attached to at most one parent item. A nil
// ParentItemID means the child is unassigned.
type ChildItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Description  string `json:"description,omitempty"`
	ItemTypeID   int64  `json:"item_type_id"`
	ItemType     string `json:"item_type,omitempty"`
	ParentItemID *int64 `json:"parent_item_id"`
	ParentItem   string `json:"parent_item,omitempty"` // Resolved parent name, read-only
	AuditFields
}

// CreateItemTypeRequest represents the request payload for creating an item type
type CreateItemTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// CreateParentItemRequest represents the request payload for creating a parent item.
// LocationID is the initial placement and produces the first move history row.
type CreateParentItemRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description,omitempty"`
	ItemTypeID  int64  `json:"item_type_id"`
	LocationID  int64  `json:"location_id"`
	Notes       string `json:"notes,omitempty"`
}

// UpdateParentItemRequest represents the request payload for editing parent item
// fields. Location changes go through the movement endpoint instead.
type UpdateParentItemRequest struct {
	Name        string `json:"name,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	ItemTypeID  *int64 `json:"item_type_id,omitempty"`
}

// CreateChildItemRequest represents the request payload for creating a child item.
// A non-nil ParentItemID produces the first assignment history row.
type CreateChildItemRequest struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Description  string `json:"description,omitempty"`
	ItemTypeID   int64  `json:"item_type_id"`
	ParentItemID *int64 `json:"parent_item_id,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// UpdateChildItemRequest represents the request payload for editing child item
// fields. Parent changes go through the assignment endpoint instead.
type UpdateChildItemRequest struct {
	Name        string `json:"name,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	ItemTypeID  *int64 `json:"item_type_id,omitempty"`
}

// ItemTypeListResponse represents the response for listing item types
type ItemTypeListResponse struct {
	ItemTypes []ItemType `json:"item_types"`
	Total     int        `json:"total"`
}

// ParentItemListResponse represents the response for listing parent items
type ParentItemListResponse struct {
	Items []ParentItem `json:"items"`
	Total int          `json:"total"`
}

// ChildItemListResponse represents the response for listing child items
type ChildItemListResponse struct {
	Items []ChildItem `json:"items"`
	Total int         `json:"total"`
}
