package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"inventory/lib/apperrors"
	"inventory/lib/models"
	"strings"

	"github.com/sirupsen/logrus"
)

// UserRepository defines the interface for user and role data operations
type UserRepository interface {
	// CreateRole creates a new role with its permission map
	CreateRole(ctx context.Context, req *models.CreateRoleRequest, userID int64) (*models.Role, error)

	// GetRoles retrieves all roles
	GetRoles(ctx context.Context) ([]models.Role, error)

	// GetRoleByID retrieves a specific role by ID
	GetRoleByID(ctx context.Context, roleID int64) (*models.Role, error)

	// UpdateRole updates an existing role
	UpdateRole(ctx context.Context, roleID int64, req *models.UpdateRoleRequest, userID int64) (*models.Role, error)

	// DeleteRole deletes a role unless users reference it
	DeleteRole(ctx context.Context, roleID int64) error

	// CreateUser creates a new user
	CreateUser(ctx context.Context, req *models.CreateUserRequest, userID int64) (*models.User, error)

	// GetUsers retrieves all users
	GetUsers(ctx context.Context) ([]models.User, error)

	// GetUserByID retrieves a specific user by ID
	GetUserByID(ctx context.Context, targetUserID int64) (*models.User, error)

	// UpdateUser updates an existing user
	UpdateUser(ctx context.Context, targetUserID int64, req *models.UpdateUserRequest, userID int64) (*models.User, error)

	// DeleteUser deletes a user unless audit history references them
	DeleteUser(ctx context.Context, targetUserID int64) error

	// GetPermissions retrieves the permission map of a user's role
	GetPermissions(ctx context.Context, targetUserID int64) (map[string]bool, error)
}

// UserDao implements UserRepository interface using PostgreSQL
type UserDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateRole creates a new role with its permission map
func (dao *UserDao) CreateRole(ctx context.Context, req *models.CreateRoleRequest, userID int64) (*models.Role, error) {
	permissions := req.Permissions
	if permissions == nil {
		permissions = map[string]bool{}
	}
	permissionsJSON, err := json.Marshal(permissions)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to encode role permissions", err)
	}

	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: permissions,
	}

	err = dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.roles (name, description, permissions, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`, req.Name, req.Description, permissionsJSON, userID).Scan(
		&role.ID, &role.CreatedAt, &role.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"role_name": req.Name,
			"error":     err.Error(),
		}).Error("Failed to create role")
		return nil, apperrors.StorageFailure("failed to create role", err)
	}

	role.CreatedBy = userID
	role.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"role_id":   role.ID,
		"role_name": role.Name,
	}).Info("Successfully created role")

	return role, nil
}

// GetRoles retrieves all roles
func (dao *UserDao) GetRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), permissions,
		       created_at, COALESCE(created_by, 0), updated_at, COALESCE(updated_by, 0)
		FROM inventory.roles
		ORDER BY name ASC
	`)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query roles")
		return nil, apperrors.StorageFailure("failed to query roles", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		var permissionsJSON []byte
		err := rows.Scan(
			&role.ID, &role.Name, &role.Description, &permissionsJSON,
			&role.CreatedAt, &role.CreatedBy, &role.UpdatedAt, &role.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan role", err)
		}
		if err := json.Unmarshal(permissionsJSON, &role.Permissions); err != nil {
			return nil, apperrors.StorageFailure("failed to decode role permissions", err)
		}
		roles = append(roles, role)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating roles", err)
	}

	return roles, nil
}

// GetRoleByID retrieves a specific role by ID
func (dao *UserDao) GetRoleByID(ctx context.Context, roleID int64) (*models.Role, error) {
	var role models.Role
	var permissionsJSON []byte

	err := dao.DB.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, ''), permissions,
		       created_at, COALESCE(created_by, 0), updated_at, COALESCE(updated_by, 0)
		FROM inventory.roles
		WHERE id = $1
	`, roleID).Scan(
		&role.ID, &role.Name, &role.Description, &permissionsJSON,
		&role.CreatedAt, &role.CreatedBy, &role.UpdatedAt, &role.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("role", roleID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to get role", err)
	}

	if err := json.Unmarshal(permissionsJSON, &role.Permissions); err != nil {
		return nil, apperrors.StorageFailure("failed to decode role permissions", err)
	}
	return &role, nil
}

// UpdateRole updates an existing role
func (dao *UserDao) UpdateRole(ctx context.Context, roleID int64, req *models.UpdateRoleRequest, userID int64) (*models.Role, error) {
	setParts := []string{"updated_by = $1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{userID}
	argIndex := 2

	if req.Name != "" {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, req.Name)
		argIndex++
	}
	if req.Description != "" {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, req.Description)
		argIndex++
	}
	if req.Permissions != nil {
		permissionsJSON, err := json.Marshal(req.Permissions)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to encode role permissions", err)
		}
		setParts = append(setParts, fmt.Sprintf("permissions = $%d", argIndex))
		args = append(args, permissionsJSON)
		argIndex++
	}

	args = append(args, roleID)

	query := fmt.Sprintf(`
		UPDATE inventory.roles
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), argIndex)

	var updatedID int64
	err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("role", roleID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"role_id": roleID,
			"error":   err.Error(),
		}).Error("Failed to update role")
		return nil, apperrors.StorageFailure("failed to update role", err)
	}

	return dao.GetRoleByID(ctx, roleID)
}

// DeleteRole deletes a role. Denied while any user references it; check and
// delete share one transaction.
func (dao *UserDao) DeleteRole(ctx context.Context, roleID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	var userCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory.users WHERE role_id = $1
	`, roleID).Scan(&userCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count users for role", err)
	}
	if userCount > 0 {
		return apperrors.Conflict("cannot delete role: assigned to %d user(s)", userCount)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.roles WHERE id = $1
	`, roleID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"role_id": roleID,
			"error":   err.Error(),
		}).Error("Failed to delete role")
		return apperrors.StorageFailure("failed to delete role", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("role", roleID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit role deletion", err)
	}

	dao.Logger.WithField("role_id", roleID).Info("Successfully deleted role")
	return nil
}

// CreateUser creates a new user
func (dao *UserDao) CreateUser(ctx context.Context, req *models.CreateUserRequest, userID int64) (*models.User, error) {
	var roleExists bool
	err := dao.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM inventory.roles WHERE id = $1)
	`, req.RoleID).Scan(&roleExists)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to validate role", err)
	}
	if !roleExists {
		return nil, apperrors.NotFound("role", req.RoleID)
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleID,
	}

	err = dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.users (email, first_name, last_name, role_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`, req.Email, req.FirstName, req.LastName, req.RoleID, userID).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"email": req.Email,
			"error": err.Error(),
		}).Error("Failed to create user")
		return nil, apperrors.StorageFailure("failed to create user", err)
	}

	user.CreatedBy = userID
	user.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Successfully created user")

	return user, nil
}

// GetUsers retrieves all users with their resolved role names
func (dao *UserDao) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT u.id, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), u.role_id, r.name,
		       u.created_at, COALESCE(u.created_by, 0), u.updated_at, COALESCE(u.updated_by, 0)
		FROM inventory.users u
		JOIN inventory.roles r ON u.role_id = r.id
		ORDER BY u.email ASC
	`)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query users")
		return nil, apperrors.StorageFailure("failed to query users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.RoleID, &user.RoleName,
			&user.CreatedAt, &user.CreatedBy, &user.UpdatedAt, &user.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating users", err)
	}

	return users, nil
}

// GetUserByID retrieves a specific user by ID
func (dao *UserDao) GetUserByID(ctx context.Context, targetUserID int64) (*models.User, error) {
	var user models.User

	err := dao.DB.QueryRowContext(ctx, `
		SELECT u.id, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), u.role_id, r.name,
		       u.created_at, COALESCE(u.created_by, 0), u.updated_at, COALESCE(u.updated_by, 0)
		FROM inventory.users u
		JOIN inventory.roles r ON u.role_id = r.id
		WHERE u.id = $1
	`, targetUserID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.RoleID, &user.RoleName,
		&user.CreatedAt, &user.CreatedBy, &user.UpdatedAt, &user.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user", targetUserID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to get user", err)
	}

	return &user, nil
}

// UpdateUser updates an existing user
func (dao *UserDao) UpdateUser(ctx context.Context, targetUserID int64, req *models.UpdateUserRequest, userID int64) (*models.User, error) {
	setParts := []string{"updated_by = $1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{userID}
	argIndex := 2

	if req.Email != "" {
		setParts = append(setParts, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, req.Email)
		argIndex++
	}
	if req.FirstName != "" {
		setParts = append(setParts, fmt.Sprintf("first_name = $%d", argIndex))
		args = append(args, req.FirstName)
		argIndex++
	}
	if req.LastName != "" {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", argIndex))
		args = append(args, req.LastName)
		argIndex++
	}
	if req.RoleID != nil {
		var roleExists bool
		err := dao.DB.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM inventory.roles WHERE id = $1)
		`, *req.RoleID).Scan(&roleExists)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate role", err)
		}
		if !roleExists {
			return nil, apperrors.NotFound("role", *req.RoleID)
		}
		setParts = append(setParts, fmt.Sprintf("role_id = $%d", argIndex))
		args = append(args, *req.RoleID)
		argIndex++
	}

	args = append(args, targetUserID)

	query := fmt.Sprintf(`
		UPDATE inventory.users
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), argIndex)

	var updatedID int64
	err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user", targetUserID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": targetUserID,
			"error":   err.Error(),
		}).Error("Failed to update user")
		return nil, apperrors.StorageFailure("failed to update user", err)
	}

	return dao.GetUserByID(ctx, targetUserID)
}

// DeleteUser deletes a user. Denied while any audit history names them as
// the actor, since the ledgers must keep resolving actors.
func (dao *UserDao) DeleteUser(ctx context.Context, targetUserID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	var moveCount, assignmentCount int
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM inventory.move_history WHERE moved_by = $1),
			(SELECT COUNT(*) FROM inventory.assignment_history WHERE assigned_by = $1)
	`, targetUserID).Scan(&moveCount, &assignmentCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count history for user", err)
	}
	if moveCount+assignmentCount > 0 {
		return apperrors.Conflict("cannot delete user: actor in %d audit record(s)", moveCount+assignmentCount)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.users WHERE id = $1
	`, targetUserID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": targetUserID,
			"error":   err.Error(),
		}).Error("Failed to delete user")
		return apperrors.StorageFailure("failed to delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("user", targetUserID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit user deletion", err)
	}

	dao.Logger.WithField("user_id", targetUserID).Info("Successfully deleted user")
	return nil
}

// GetPermissions retrieves the permission map of a user's role
func (dao *UserDao) GetPermissions(ctx context.Context, targetUserID int64) (map[string]bool, error) {
	var permissionsJSON []byte

	err := dao.DB.QueryRowContext(ctx, `
		SELECT r.permissions
		FROM inventory.users u
		JOIN inventory.roles r ON u.role_id = r.id
		WHERE u.id = $1
	`, targetUserID).Scan(&permissionsJSON)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user", targetUserID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to get user permissions", err)
	}

	permissions := map[string]bool{}
	if err := json.Unmarshal(permissionsJSON, &permissions); err != nil {
		return nil, apperrors.StorageFailure("failed to decode user permissions", err)
	}
	return permissions, nil
}
