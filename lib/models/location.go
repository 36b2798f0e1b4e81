package models

// LocationType categorizes locations (warehouse, store, service van, ...)
type LocationType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AuditFields
}

// Location represents a physical place a parent item can live at
type Location struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"` // Free-form labels (aisle, shelf, contact, ...)
	LocationTypeID int64             `json:"location_type_id"`
	LocationType   string            `json:"location_type,omitempty"` // Resolved type name, read-only
	AuditFields
}

// CreateLocationRequest represents the request payload for creating a new location
type CreateLocationRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	LocationTypeID int64             `json:"location_type_id"`
}

// UpdateLocationRequest represents the request payload for updating an existing location
type UpdateLocationRequest struct {
	Name           string            `json:"name,omitempty"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	LocationTypeID int64             `json:"location_type_id,omitempty"`
}

// CreateLocationTypeRequest represents the request payload for creating a location type
type CreateLocationTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// LocationListResponse represents the response for listing locations
type LocationListResponse struct {
	Locations []Location `json:"locations"`
	Total     int        `json:"total"`
}

// LocationTypeListResponse represents the response for listing location types
type LocationTypeListResponse struct {
	LocationTypes []LocationType `json:"location_types"`
	Total         int            `json:"total"`
}
