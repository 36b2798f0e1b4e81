package models

import (
	"time"
)

// AuditFields carries the creation/update stamps shared by every mutable
// entity. Embedded so the columns scan and marshal uniformly.
type AuditFields struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy int64     `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy int64     `json:"updated_by"`
}
