package data

import (
	"context"
	"database/sql"
	"fmt"
	"inventory/lib/apperrors"
	"inventory/lib/models"
	"strings"

	"github.com/sirupsen/logrus"
)

// ItemRepository defines the interface for item type, parent item and child
// item data operations
type ItemRepository interface {
	// CreateItemType creates a new item type
	CreateItemType(ctx context.Context, req *models.CreateItemTypeRequest, userID int64) (*models.ItemType, error)

	// GetItemTypes retrieves all item types
	GetItemTypes(ctx context.Context) ([]models.ItemType, error)

	// DeleteItemType deletes an item type unless items reference it
	DeleteItemType(ctx context.Context, itemTypeID int64) error

	// CreateParentItem creates a parent item at its initial location and
	// records the initial placement in move history
	CreateParentItem(ctx context.Context, req *models.CreateParentItemRequest, userID int64) (*models.ParentItem, error)

	// GetParentItemByID retrieves a specific parent item by ID
	GetParentItemByID(ctx context.Context, parentItemID int64) (*models.ParentItem, error)

	// GetParentItems retrieves all parent items, optionally filtered by location
	GetParentItems(ctx context.Context, locationID *int64) ([]models.ParentItem, error)

	// UpdateParentItem updates a parent item's descriptive fields
	UpdateParentItem(ctx context.Context, parentItemID int64, req *models.UpdateParentItemRequest, userID int64) (*models.ParentItem, error)

	// DeleteParentItem deletes a parent item and its children in one transaction
	DeleteParentItem(ctx context.Context, parentItemID int64) error

	// CreateChildItem creates a child item, recording the initial assignment
	// when a parent is given
	CreateChildItem(ctx context.Context, req *models.CreateChildItemRequest, userID int64) (*models.ChildItem, error)

	// GetChildItemByID retrieves a specific child item by ID
	GetChildItemByID(ctx context.Context, childItemID int64) (*models.ChildItem, error)

	// GetChildItems retrieves all child items, optionally filtered by parent
	GetChildItems(ctx context.Context, parentItemID *int64) ([]models.ChildItem, error)

	// UpdateChildItem updates a child item's descriptive fields
	UpdateChildItem(ctx context.Context, childItemID int64, req *models.UpdateChildItemRequest, userID int64) (*models.ChildItem, error)

	// DeleteChildItem deletes a child item
	DeleteChildItem(ctx context.Context, childItemID int64) error
}

// ItemDao implements ItemRepository interface using PostgreSQL
type ItemDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateItemType creates a new item type
func (dao *ItemDao) CreateItemType(ctx context.Context, req *models.CreateItemTypeRequest, userID int64) (*models.ItemType, error) {
	if req.Category != models.ItemCategoryParent && req.Category != models.ItemCategoryChild {
		return nil, apperrors.InvalidOperation("item type category must be %s or %s", models.ItemCategoryParent, models.ItemCategoryChild)
	}

	itemType := &models.ItemType{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}

	err := dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.item_types (name, description, category, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`, req.Name, req.Description, req.Category, userID).Scan(
		&itemType.ID, &itemType.CreatedAt, &itemType.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"name":     req.Name,
			"category": req.Category,
			"error":    err.Error(),
		}).Error("Failed to create item type")
		return nil, apperrors.StorageFailure("failed to create item type", err)
	}

	itemType.CreatedBy = userID
	itemType.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"item_type_id": itemType.ID,
		"name":         itemType.Name,
		"category":     itemType.Category,
	}).Info("Successfully created item type")

	return itemType, nil
}

// GetItemTypes retrieves all item types
func (dao *ItemDao) GetItemTypes(ctx context.Context) ([]models.ItemType, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), category,
		       created_at, COALESCE(created_by, 0), updated_at, COALESCE(updated_by, 0)
		FROM inventory.item_types
		ORDER BY category ASC, name ASC
	`)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query item types")
		return nil, apperrors.StorageFailure("failed to query item types", err)
	}
	defer rows.Close()

	var itemTypes []models.ItemType
	for rows.Next() {
		var itemType models.ItemType
		err := rows.Scan(
			&itemType.ID, &itemType.Name, &itemType.Description, &itemType.Category,
			&itemType.CreatedAt, &itemType.CreatedBy, &itemType.UpdatedAt, &itemType.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan item type", err)
		}
		itemTypes = append(itemTypes, itemType)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating item types", err)
	}

	return itemTypes, nil
}

// DeleteItemType deletes an item type. Denied while any parent or child
// item references it; check and delete share one transaction.
func (dao *ItemDao) DeleteItemType(ctx context.Context, itemTypeID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	var parentCount, childCount int
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM inventory.parent_items WHERE item_type_id = $1),
			(SELECT COUNT(*) FROM inventory.child_items WHERE item_type_id = $1)
	`, itemTypeID).Scan(&parentCount, &childCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count items for type", err)
	}
	if parentCount+childCount > 0 {
		return apperrors.Conflict("cannot delete item type: used by %d item(s)", parentCount+childCount)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.item_types WHERE id = $1
	`, itemTypeID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"item_type_id": itemTypeID,
			"error":        err.Error(),
		}).Error("Failed to delete item type")
		return apperrors.StorageFailure("failed to delete item type", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("item type", itemTypeID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit item type deletion", err)
	}

	dao.Logger.WithField("item_type_id", itemTypeID).Info("Successfully deleted item type")
	return nil
}

// CreateParentItem creates a parent item at its initial location. The item
// insert and the initial move history row commit together.
func (dao *ItemDao) CreateParentItem(ctx context.Context, req *models.CreateParentItemRequest, userID int64) (*models.ParentItem, error) {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	category, err := itemTypeCategory(ctx, tx, req.ItemTypeID)
	if err != nil {
		return nil, err
	}
	if category != models.ItemCategoryParent {
		return nil, apperrors.InvalidOperation("item type %d is not a parent item type", req.ItemTypeID)
	}

	var locationExists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM inventory.locations WHERE id = $1)
	`, req.LocationID).Scan(&locationExists)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to validate location", err)
	}
	if !locationExists {
		return nil, apperrors.NotFound("location", req.LocationID)
	}

	item := &models.ParentItem{
		Name:              req.Name,
		SKU:               req.SKU,
		Description:       req.Description,
		ItemTypeID:        req.ItemTypeID,
		CurrentLocationID: req.LocationID,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO inventory.parent_items (name, sku, description, item_type_id, current_location_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`, req.Name, req.SKU, req.Description, req.ItemTypeID, req.LocationID, userID).Scan(
		&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"sku":   req.SKU,
			"error": err.Error(),
		}).Error("Failed to create parent item")
		return nil, apperrors.StorageFailure("failed to create parent item", err)
	}

	if err := recordInitialPlacement(ctx, tx, item.ID, req.LocationID, userID, req.Notes); err != nil {
		dao.Logger.WithError(err).Error("Failed to record initial placement")
		return nil, apperrors.StorageFailure("failed to record initial placement", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, apperrors.StorageFailure("failed to commit parent item creation", err)
	}

	item.CreatedBy = userID
	item.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"parent_item_id": item.ID,
		"sku":            item.SKU,
		"location_id":    req.LocationID,
	}).Info("Successfully created parent item")

	return item, nil
}

// GetParentItemByID retrieves a specific parent item with resolved names
func (dao *ItemDao) GetParentItemByID(ctx context.Context, parentItemID int64) (*models.ParentItem, error) {
	var item models.ParentItem

	err := dao.DB.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.sku, COALESCE(p.description, ''), p.item_type_id, t.name,
		       p.current_location_id, l.name,
		       p.created_at, p.created_by, p.updated_at, COALESCE(p.updated_by, 0)
		FROM inventory.parent_items p
		JOIN inventory.item_types t ON p.item_type_id = t.id
		JOIN inventory.locations l ON p.current_location_id = l.id
		WHERE p.id = $1
	`, parentItemID).Scan(
		&item.ID, &item.Name, &item.SKU, &item.Description, &item.ItemTypeID, &item.ItemType,
		&item.CurrentLocationID, &item.CurrentLocation,
		&item.CreatedAt, &item.CreatedBy, &item.UpdatedAt, &item.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("parent item", parentItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"error":          err.Error(),
		}).Error("Failed to get parent item")
		return nil, apperrors.StorageFailure("failed to get parent item", err)
	}

	return &item, nil
}

// GetParentItems retrieves all parent items, optionally at one location
func (dao *ItemDao) GetParentItems(ctx context.Context, locationID *int64) ([]models.ParentItem, error) {
	query := `
		SELECT p.id, p.name, p.sku, COALESCE(p.description, ''), p.item_type_id, t.name,
		       p.current_location_id, l.name,
		       p.created_at, p.created_by, p.updated_at, COALESCE(p.updated_by, 0)
		FROM inventory.parent_items p
		JOIN inventory.item_types t ON p.item_type_id = t.id
		JOIN inventory.locations l ON p.current_location_id = l.id
	`
	var args []interface{}
	if locationID != nil {
		query += ` WHERE p.current_location_id = $1`
		args = append(args, *locationID)
	}
	query += ` ORDER BY p.name ASC`

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query parent items")
		return nil, apperrors.StorageFailure("failed to query parent items", err)
	}
	defer rows.Close()

	var items []models.ParentItem
	for rows.Next() {
		var item models.ParentItem
		err := rows.Scan(
			&item.ID, &item.Name, &item.SKU, &item.Description, &item.ItemTypeID, &item.ItemType,
			&item.CurrentLocationID, &item.CurrentLocation,
			&item.CreatedAt, &item.CreatedBy, &item.UpdatedAt, &item.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan parent item", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating parent items", err)
	}

	return items, nil
}

// UpdateParentItem updates a parent item's descriptive fields. The current
// location is only changed through MovementRepository.
func (dao *ItemDao) UpdateParentItem(ctx context.Context, parentItemID int64, req *models.UpdateParentItemRequest, userID int64) (*models.ParentItem, error) {
	setParts := []string{"updated_by = $1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{userID}
	argIndex := 2

	if req.Name != "" {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, req.Name)
		argIndex++
	}
	if req.SKU != "" {
		setParts = append(setParts, fmt.Sprintf("sku = $%d", argIndex))
		args = append(args, req.SKU)
		argIndex++
	}
	if req.Description != "" {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, req.Description)
		argIndex++
	}
	if req.ItemTypeID != nil {
		var category string
		err := dao.DB.QueryRowContext(ctx, `
			SELECT category FROM inventory.item_types WHERE id = $1
		`, *req.ItemTypeID).Scan(&category)
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("item type", *req.ItemTypeID)
		}
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate item type", err)
		}
		if category != models.ItemCategoryParent {
			return nil, apperrors.InvalidOperation("item type %d is not a parent item type", *req.ItemTypeID)
		}
		setParts = append(setParts, fmt.Sprintf("item_type_id = $%d", argIndex))
		args = append(args, *req.ItemTypeID)
		argIndex++
	}

	args = append(args, parentItemID)

	query := fmt.Sprintf(`
		UPDATE inventory.parent_items
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), argIndex)

	var updatedID int64
	err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("parent item", parentItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"error":          err.Error(),
		}).Error("Failed to update parent item")
		return nil, apperrors.StorageFailure("failed to update parent item", err)
	}

	return dao.GetParentItemByID(ctx, parentItemID)
}

// DeleteParentItem deletes a parent item, its attachments and its child
// items, children first, in one transaction. Move history for the item is
// kept; a parent named in any assignment history row is undeletable because
// that ledger resolves parent names. Since every attachment of a child,
// including at child creation, writes a ledger row naming the parent, the
// child cascade is only reachable for parents that never had a child; it
// stays as a backstop for rows created outside the API.
func (dao *ItemDao) DeleteParentItem(ctx context.Context, parentItemID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	var assignmentCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory.assignment_history
		WHERE from_parent_item_id = $1 OR to_parent_item_id = $1
	`, parentItemID).Scan(&assignmentCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count assignment history for parent item", err)
	}
	if assignmentCount > 0 {
		return apperrors.Conflict("cannot delete parent item: referenced in %d historical assignment record(s)", assignmentCount)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM inventory.item_attachments WHERE parent_item_id = $1
	`, parentItemID); err != nil {
		return apperrors.StorageFailure("failed to delete item attachments", err)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM inventory.child_items WHERE parent_item_id = $1
	`, parentItemID); err != nil {
		return apperrors.StorageFailure("failed to delete child items", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.parent_items WHERE id = $1
	`, parentItemID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"error":          err.Error(),
		}).Error("Failed to delete parent item")
		return apperrors.StorageFailure("failed to delete parent item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("parent item", parentItemID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit parent item deletion", err)
	}

	dao.Logger.WithField("parent_item_id", parentItemID).Info("Successfully deleted parent item and children")
	return nil
}

// CreateChildItem creates a child item. When a parent is given, the insert
// and the initial assignment history row commit together.
func (dao *ItemDao) CreateChildItem(ctx context.Context, req *models.CreateChildItemRequest, userID int64) (*models.ChildItem, error) {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	category, err := itemTypeCategory(ctx, tx, req.ItemTypeID)
	if err != nil {
		return nil, err
	}
	if category != models.ItemCategoryChild {
		return nil, apperrors.InvalidOperation("item type %d is not a child item type", req.ItemTypeID)
	}

	if req.ParentItemID != nil {
		var parentExists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM inventory.parent_items WHERE id = $1)
		`, *req.ParentItemID).Scan(&parentExists)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate parent item", err)
		}
		if !parentExists {
			return nil, apperrors.NotFound("parent item", *req.ParentItemID)
		}
	}

	child := &models.ChildItem{
		Name:         req.Name,
		SKU:          req.SKU,
		Description:  req.Description,
		ItemTypeID:   req.ItemTypeID,
		ParentItemID: req.ParentItemID,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO inventory.child_items (name, sku, description, item_type_id, parent_item_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`, req.Name, req.SKU, req.Description, req.ItemTypeID, req.ParentItemID, userID).Scan(
		&child.ID, &child.CreatedAt, &child.UpdatedAt)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"sku":   req.SKU,
			"error": err.Error(),
		}).Error("Failed to create child item")
		return nil, apperrors.StorageFailure("failed to create child item", err)
	}

	if req.ParentItemID != nil {
		if err := recordInitialAssignment(ctx, tx, child.ID, *req.ParentItemID, userID, req.Notes); err != nil {
			dao.Logger.WithError(err).Error("Failed to record initial assignment")
			return nil, apperrors.StorageFailure("failed to record initial assignment", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, apperrors.StorageFailure("failed to commit child item creation", err)
	}

	child.CreatedBy = userID
	child.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"child_item_id": child.ID,
		"sku":           child.SKU,
	}).Info("Successfully created child item")

	return child, nil
}

// GetChildItemByID retrieves a specific child item with resolved names
func (dao *ItemDao) GetChildItemByID(ctx context.Context, childItemID int64) (*models.ChildItem, error) {
	var child models.ChildItem
	var parentID sql.NullInt64
	var parentName sql.NullString

	err := dao.DB.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.sku, COALESCE(c.description, ''), c.item_type_id, t.name,
		       c.parent_item_id, p.name,
		       c.created_at, c.created_by, c.updated_at, COALESCE(c.updated_by, 0)
		FROM inventory.child_items c
		JOIN inventory.item_types t ON c.item_type_id = t.id
		LEFT JOIN inventory.parent_items p ON c.parent_item_id = p.id
		WHERE c.id = $1
	`, childItemID).Scan(
		&child.ID, &child.Name, &child.SKU, &child.Description, &child.ItemTypeID, &child.ItemType,
		&parentID, &parentName,
		&child.CreatedAt, &child.CreatedBy, &child.UpdatedAt, &child.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("child item", childItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to get child item")
		return nil, apperrors.StorageFailure("failed to get child item", err)
	}

	if parentID.Valid {
		child.ParentItemID = &parentID.Int64
		child.ParentItem = parentName.String
	}
	return &child, nil
}

// GetChildItems retrieves all child items, optionally under one parent
func (dao *ItemDao) GetChildItems(ctx context.Context, parentItemID *int64) ([]models.ChildItem, error) {
	query := `
		SELECT c.id, c.name, c.sku, COALESCE(c.description, ''), c.item_type_id, t.name,
		       c.parent_item_id, p.name,
		       c.created_at, c.created_by, c.updated_at, COALESCE(c.updated_by, 0)
		FROM inventory.child_items c
		JOIN inventory.item_types t ON c.item_type_id = t.id
		LEFT JOIN inventory.parent_items p ON c.parent_item_id = p.id
	`
	var args []interface{}
	if parentItemID != nil {
		query += ` WHERE c.parent_item_id = $1`
		args = append(args, *parentItemID)
	}
	query += ` ORDER BY c.name ASC`

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query child items")
		return nil, apperrors.StorageFailure("failed to query child items", err)
	}
	defer rows.Close()

	var children []models.ChildItem
	for rows.Next() {
		var child models.ChildItem
		var parentID sql.NullInt64
		var parentName sql.NullString

		err := rows.Scan(
			&child.ID, &child.Name, &child.SKU, &child.Description, &child.ItemTypeID, &child.ItemType,
			&parentID, &parentName,
			&child.CreatedAt, &child.CreatedBy, &child.UpdatedAt, &child.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan child item", err)
		}

		if parentID.Valid {
			child.ParentItemID = &parentID.Int64
			child.ParentItem = parentName.String
		}
		children = append(children, child)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating child items", err)
	}

	return children, nil
}

// UpdateChildItem updates a child item's descriptive fields. The parent
// reference is only changed through AssignmentRepository.
func (dao *ItemDao) UpdateChildItem(ctx context.Context, childItemID int64, req *models.UpdateChildItemRequest, userID int64) (*models.ChildItem, error) {
	setParts := []string{"updated_by = $1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{userID}
	argIndex := 2

	if req.Name != "" {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, req.Name)
		argIndex++
	}
	if req.SKU != "" {
		setParts = append(setParts, fmt.Sprintf("sku = $%d", argIndex))
		args = append(args, req.SKU)
		argIndex++
	}
	if req.Description != "" {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, req.Description)
		argIndex++
	}
	if req.ItemTypeID != nil {
		var category string
		err := dao.DB.QueryRowContext(ctx, `
			SELECT category FROM inventory.item_types WHERE id = $1
		`, *req.ItemTypeID).Scan(&category)
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("item type", *req.ItemTypeID)
		}
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate item type", err)
		}
		if category != models.ItemCategoryChild {
			return nil, apperrors.InvalidOperation("item type %d is not a child item type", *req.ItemTypeID)
		}
		setParts = append(setParts, fmt.Sprintf("item_type_id = $%d", argIndex))
		args = append(args, *req.ItemTypeID)
		argIndex++
	}

	args = append(args, childItemID)

	query := fmt.Sprintf(`
		UPDATE inventory.child_items
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), argIndex)

	var updatedID int64
	err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("child item", childItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to update child item")
		return nil, apperrors.StorageFailure("failed to update child item", err)
	}

	return dao.GetChildItemByID(ctx, childItemID)
}

// DeleteChildItem deletes a child item. Its assignment history survives;
// the ledger carries the child id without a resolving foreign key.
func (dao *ItemDao) DeleteChildItem(ctx context.Context, childItemID int64) error {
	result, err := dao.DB.ExecContext(ctx, `
		DELETE FROM inventory.child_items WHERE id = $1
	`, childItemID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to delete child item")
		return apperrors.StorageFailure("failed to delete child item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("child item", childItemID)
	}

	dao.Logger.WithField("child_item_id", childItemID).Info("Successfully deleted child item")
	return nil
}

// itemTypeCategory reads an item type's category inside the caller's
// transaction, mapping a missing row to NotFound.
func itemTypeCategory(ctx context.Context, tx *sql.Tx, itemTypeID int64) (string, error) {
	var category string
	err := tx.QueryRowContext(ctx, `
		SELECT category FROM inventory.item_types WHERE id = $1
	`, itemTypeID).Scan(&category)
	if err == sql.ErrNoRows {
		return "", apperrors.NotFound("item type", itemTypeID)
	}
	if err != nil {
		return "", apperrors.StorageFailure("failed to validate item type", err)
	}
	return category, nil
}
