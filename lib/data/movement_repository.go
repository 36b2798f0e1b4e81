package data

import (
	"context"
	"database/sql"
	"fmt"
	"inventory/lib/apperrors"
	"inventory/lib/models"

	"github.com/sirupsen/logrus"
)

// MovementRepository defines the interface for parent item location changes
type MovementRepository interface {
	// MoveParentItem relocates a parent item and records one move history row,
	// both inside a single transaction.
	MoveParentItem(ctx context.Context, parentItemID, destinationLocationID, actorID int64, notes string) (*models.MoveResult, error)
}

// MovementDao implements MovementRepository interface using PostgreSQL
type MovementDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// MoveParentItem relocates a parent item. The item row is locked for the
// duration of the transaction so concurrent moves of the same item are
// serialized; the second mover re-reads the committed location and fails the
// same-location check instead of silently overwriting the first move.
func (dao *MovementDao) MoveParentItem(ctx context.Context, parentItemID, destinationLocationID, actorID int64, notes string) (*models.MoveResult, error) {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to start transaction for move")
		return nil, apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	// Lock the item row and read its current location.
	var fromLocationID int64
	err = tx.QueryRowContext(ctx, `
		SELECT current_location_id
		FROM inventory.parent_items
		WHERE id = $1
		FOR UPDATE
	`, parentItemID).Scan(&fromLocationID)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("parent item", parentItemID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"error":          err.Error(),
		}).Error("Failed to lock parent item for move")
		return nil, apperrors.StorageFailure("failed to read parent item", err)
	}

	// The destination must exist; its name is returned to the caller.
	var destinationName string
	err = tx.QueryRowContext(ctx, `
		SELECT name FROM inventory.locations WHERE id = $1
	`, destinationLocationID).Scan(&destinationName)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("location", destinationLocationID)
	}
	if err != nil {
		return nil, apperrors.StorageFailure("failed to read destination location", err)
	}

	if fromLocationID == destinationLocationID {
		return nil, apperrors.InvalidOperation("parent item %d is already at location %q", parentItemID, destinationName)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory.parent_items
		SET current_location_id = $1, updated_by = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, destinationLocationID, actorID, parentItemID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"destination_id": destinationLocationID,
			"error":          err.Error(),
		}).Error("Failed to update parent item location")
		return nil, apperrors.StorageFailure("failed to update parent item location", err)
	}

	var historyID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO inventory.move_history (parent_item_id, from_location_id, to_location_id, moved_by, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, parentItemID, fromLocationID, destinationLocationID, actorID, notes).Scan(&historyID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"parent_item_id": parentItemID,
			"error":          err.Error(),
		}).Error("Failed to record move history")
		return nil, apperrors.StorageFailure("failed to record move history", err)
	}

	if err = tx.Commit(); err != nil {
		dao.Logger.WithError(err).Error("Failed to commit move transaction")
		return nil, apperrors.StorageFailure("failed to commit move", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"parent_item_id": parentItemID,
		"from_location":  fromLocationID,
		"to_location":    destinationLocationID,
		"moved_by":       actorID,
		"history_id":     historyID,
	}).Info("Successfully moved parent item")

	return &models.MoveResult{
		ParentItemID:    parentItemID,
		UpdatedLocation: destinationName,
		HistoryID:       historyID,
	}, nil
}

// recordInitialPlacement writes the first move history row for a newly
// created parent item. Runs inside the caller's transaction.
func recordInitialPlacement(ctx context.Context, tx *sql.Tx, parentItemID, locationID, actorID int64, notes string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory.move_history (parent_item_id, from_location_id, to_location_id, moved_by, notes)
		VALUES ($1, NULL, $2, $3, $4)
	`, parentItemID, locationID, actorID, notes)
	if err != nil {
		return fmt.Errorf("failed to record initial placement: %w", err)
	}
	return nil
}
