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

// HistoryRepository defines the read-only interface over the audit ledgers.
// Results are most-recent-first; rows with equal timestamps keep insertion
// order via the id tie-break.
type HistoryRepository interface {
	// GetMoveHistory retrieves move history rows matching the filters
	GetMoveHistory(ctx context.Context, filters *models.MoveHistoryFilters) ([]models.MoveHistory, error)

	// GetAssignmentHistory retrieves assignment history rows matching the filters
	GetAssignmentHistory(ctx context.Context, filters *models.AssignmentHistoryFilters) ([]models.AssignmentHistory, error)
}

// HistoryDao implements HistoryRepository interface using PostgreSQL
type HistoryDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// GetMoveHistory retrieves move history rows matching the filters. The
// location filter matches source or destination; date bounds are inclusive.
func (dao *HistoryDao) GetMoveHistory(ctx context.Context, filters *models.MoveHistoryFilters) ([]models.MoveHistory, error) {
	whereConditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if filters.ParentItemID != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("m.parent_item_id = $%d", argIndex))
			args = append(args, *filters.ParentItemID)
			argIndex++
		}
		if filters.LocationID != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("(m.from_location_id = $%d OR m.to_location_id = $%d)", argIndex, argIndex+1))
			args = append(args, *filters.LocationID, *filters.LocationID)
			argIndex += 2
		}
		if filters.MovedBy != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("m.moved_by = $%d", argIndex))
			args = append(args, *filters.MovedBy)
			argIndex++
		}
		if filters.From != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("m.moved_at >= $%d", argIndex))
			args = append(args, *filters.From)
			argIndex++
		}
		if filters.To != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("m.moved_at <= $%d", argIndex))
			args = append(args, *filters.To)
			argIndex++
		}
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.parent_item_id, COALESCE(p.name, ''),
		       m.from_location_id, COALESCE(fl.name, ''),
		       m.to_location_id, tl.name,
		       m.moved_at, m.moved_by,
		       COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, ''),
		       COALESCE(m.notes, '')
		FROM inventory.move_history m
		LEFT JOIN inventory.parent_items p ON m.parent_item_id = p.id
		LEFT JOIN inventory.locations fl ON m.from_location_id = fl.id
		JOIN inventory.locations tl ON m.to_location_id = tl.id
		LEFT JOIN inventory.users u ON m.moved_by = u.id
		WHERE %s
		ORDER BY m.moved_at DESC, m.id DESC
	`, strings.Join(whereConditions, " AND "))

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query move history")
		return nil, apperrors.StorageFailure("failed to query move history", err)
	}
	defer rows.Close()

	var moves []models.MoveHistory
	for rows.Next() {
		var move models.MoveHistory
		var fromLocationID sql.NullInt64

		err := rows.Scan(
			&move.ID, &move.ParentItemID, &move.ParentItem,
			&fromLocationID, &move.FromLocation,
			&move.ToLocationID, &move.ToLocation,
			&move.MovedAt, &move.MovedBy, &move.MovedByName,
			&move.Notes,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan move history row")
			return nil, apperrors.StorageFailure("failed to scan move history", err)
		}

		if fromLocationID.Valid {
			move.FromLocationID = &fromLocationID.Int64
		}
		moves = append(moves, move)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating move history", err)
	}

	dao.Logger.WithField("count", len(moves)).Debug("Successfully retrieved move history")
	return moves, nil
}

// GetAssignmentHistory retrieves assignment history rows matching the
// filters. The parent item filter matches the old or the new parent.
func (dao *HistoryDao) GetAssignmentHistory(ctx context.Context, filters *models.AssignmentHistoryFilters) ([]models.AssignmentHistory, error) {
	whereConditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if filters.ChildItemID != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("a.child_item_id = $%d", argIndex))
			args = append(args, *filters.ChildItemID)
			argIndex++
		}
		if filters.ParentItemID != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("(a.from_parent_item_id = $%d OR a.to_parent_item_id = $%d)", argIndex, argIndex+1))
			args = append(args, *filters.ParentItemID, *filters.ParentItemID)
			argIndex += 2
		}
		if filters.AssignedBy != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("a.assigned_by = $%d", argIndex))
			args = append(args, *filters.AssignedBy)
			argIndex++
		}
		if filters.From != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("a.assigned_at >= $%d", argIndex))
			args = append(args, *filters.From)
			argIndex++
		}
		if filters.To != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("a.assigned_at <= $%d", argIndex))
			args = append(args, *filters.To)
			argIndex++
		}
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.child_item_id, COALESCE(c.name, ''),
		       a.from_parent_item_id, COALESCE(fp.name, ''),
		       a.to_parent_item_id, COALESCE(tp.name, ''),
		       a.assigned_at, a.assigned_by,
		       COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, ''),
		       COALESCE(a.notes, '')
		FROM inventory.assignment_history a
		LEFT JOIN inventory.child_items c ON a.child_item_id = c.id
		LEFT JOIN inventory.parent_items fp ON a.from_parent_item_id = fp.id
		LEFT JOIN inventory.parent_items tp ON a.to_parent_item_id = tp.id
		LEFT JOIN inventory.users u ON a.assigned_by = u.id
		WHERE %s
		ORDER BY a.assigned_at DESC, a.id DESC
	`, strings.Join(whereConditions, " AND "))

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query assignment history")
		return nil, apperrors.StorageFailure("failed to query assignment history", err)
	}
	defer rows.Close()

	var assignments []models.AssignmentHistory
	for rows.Next() {
		var assignment models.AssignmentHistory
		var fromParentID, toParentID sql.NullInt64

		err := rows.Scan(
			&assignment.ID, &assignment.ChildItemID, &assignment.ChildItem,
			&fromParentID, &assignment.FromParentItem,
			&toParentID, &assignment.ToParentItem,
			&assignment.AssignedAt, &assignment.AssignedBy, &assignment.AssignedByName,
			&assignment.Notes,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan assignment history row")
			return nil, apperrors.StorageFailure("failed to scan assignment history", err)
		}

		if fromParentID.Valid {
			assignment.FromParentItemID = &fromParentID.Int64
		}
		if toParentID.Valid {
			assignment.ToParentItemID = &toParentID.Int64
		}
		assignments = append(assignments, assignment)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating assignment history", err)
	}

	dao.Logger.WithField("count", len(assignments)).Debug("Successfully retrieved assignment history")
	return assignments, nil
}
