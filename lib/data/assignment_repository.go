package data

import (
	"context"
	"database/sql"
	"fmt"
	"inventory/lib/apperrors"
	"inventory/lib/models"

	"github.com/sirupsen/logrus"
)

// AssignmentRepository defines the interface for child item parent changes
type AssignmentRepository interface {
	// AssignChildItem reassigns a child item to a new parent (nil unassigns it)
	// and records one assignment history row, both inside a single transaction.
	AssignChildItem(ctx context.Context, childItemID int64, newParentItemID *int64, actorID int64, notes string) (*models.ChildItem, error)
}

// AssignmentDao implements AssignmentRepository interface using PostgreSQL
type AssignmentDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// AssignChildItem reassigns a child item. The child row is locked for the
// duration of the transaction so concurrent reassignments of the same child
// are serialized.
func (dao *AssignmentDao) AssignChildItem(ctx context.Context, childItemID int64, newParentItemID *int64, actorID int64, notes string) (*models.ChildItem, error) {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to start transaction for assignment")
		return nil, apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	// Lock the child row and read its current parent.
	var fromParentItemID sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT parent_item_id
		FROM inventory.child_items
		WHERE id = $1
		FOR UPDATE
	`, childItemID).Scan(&fromParentItemID)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("child item", childItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to lock child item for assignment")
		return nil, apperrors.StorageFailure("failed to read child item", err)
	}

	if newParentItemID != nil {
		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM inventory.parent_items WHERE id = $1)
		`, *newParentItemID).Scan(&exists)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate new parent item", err)
		}
		if !exists {
			return nil, apperrors.NotFound("parent item", *newParentItemID)
		}
	}

	// Reject no-op reassignments so every history row records a real change.
	if newParentItemID == nil && !fromParentItemID.Valid {
		return nil, apperrors.InvalidOperation("child item %d is already unassigned", childItemID)
	}
	if newParentItemID != nil && fromParentItemID.Valid && *newParentItemID == fromParentItemID.Int64 {
		return nil, apperrors.InvalidOperation("child item %d is already assigned to parent item %d", childItemID, *newParentItemID)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory.child_items
		SET parent_item_id = $1, updated_by = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, newParentItemID, actorID, childItemID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to update child item parent")
		return nil, apperrors.StorageFailure("failed to update child item parent", err)
	}

	var fromValue interface{}
	if fromParentItemID.Valid {
		fromValue = fromParentItemID.Int64
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory.assignment_history (child_item_id, from_parent_item_id, to_parent_item_id, assigned_by, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, childItemID, fromValue, newParentItemID, actorID, notes)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"child_item_id": childItemID,
			"error":         err.Error(),
		}).Error("Failed to record assignment history")
		return nil, apperrors.StorageFailure("failed to record assignment history", err)
	}

	if err = tx.Commit(); err != nil {
		dao.Logger.WithError(err).Error("Failed to commit assignment transaction")
		return nil, apperrors.StorageFailure("failed to commit assignment", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"child_item_id": childItemID,
		"from_parent":   fromParentItemID.Int64,
		"to_parent":     newParentItemID,
		"assigned_by":   actorID,
	}).Info("Successfully reassigned child item")

	return dao.getChildItem(ctx, childItemID)
}

// getChildItem reads the committed child item back with resolved names.
func (dao *AssignmentDao) getChildItem(ctx context.Context, childItemID int64) (*models.ChildItem, error) {
	var child models.ChildItem
	var parentID sql.NullInt64
	var parentName, description sql.NullString

	err := dao.DB.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.sku, c.description, c.item_type_id, t.name,
		       c.parent_item_id, p.name,
		       c.created_at, c.created_by, c.updated_at, c.updated_by
		FROM inventory.child_items c
		JOIN inventory.item_types t ON c.item_type_id = t.id
		LEFT JOIN inventory.parent_items p ON c.parent_item_id = p.id
		WHERE c.id = $1
	`, childItemID).Scan(
		&child.ID, &child.Name, &child.SKU, &description, &child.ItemTypeID, &child.ItemType,
		&parentID, &parentName,
		&child.CreatedAt, &child.CreatedBy, &child.UpdatedAt, &child.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("child item", childItemID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to read child item", err)
	}

	child.Description = description.String
	if parentID.Valid {
		child.ParentItemID = &parentID.Int64
		child.ParentItem = parentName.String
	}
	return &child, nil
}

// recordInitialAssignment writes the first assignment history row for a
// newly created child item. Runs inside the caller's transaction.
func recordInitialAssignment(ctx context.Context, tx *sql.Tx, childItemID, parentItemID, actorID int64, notes string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory.assignment_history (child_item_id, from_parent_item_id, to_parent_item_id, assigned_by, notes)
		VALUES ($1, NULL, $2, $3, $4)
	`, childItemID, parentItemID, actorID, notes)
	if err != nil {
		return fmt.Errorf("failed to record initial assignment: %w", err)
	}
	return nil
}
