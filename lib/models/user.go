package models

// Role groups users and carries the permission map checked by the
// permission gate. Permissions maps permission name to granted; a "*" key
// grants everything.
type Role struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions"`
	AuditFields
}

// User represents an operator of the system
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name,omitempty"` // Resolved role name, read-only
	AuditFields
}

// CreateRoleRequest represents the request payload for creating a role
type CreateRoleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions"`
}

// UpdateRoleRequest represents the request payload for updating a role
type UpdateRoleRequest struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// CreateUserRequest represents the request payload for creating a user
type CreateUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	RoleID    int64  `json:"role_id"`
}

// UpdateUserRequest represents the request payload for updating a user
type UpdateUserRequest struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	RoleID    *int64 `json:"role_id,omitempty"`
}

// RoleListResponse represents the response for listing roles
type RoleListResponse struct {
	Roles []Role `json:"roles"`
	Total int    `json:"total"`
}

// UserListResponse represents the response for listing users
type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
