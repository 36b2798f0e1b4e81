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

// LocationRepository defines the interface for location and location type data operations
type LocationRepository interface {
	// CreateLocation creates a new location
	CreateLocation(ctx context.Context, req *models.CreateLocationRequest, userID int64) (*models.Location, error)

	// GetLocations retrieves all locations
	GetLocations(ctx context.Context) ([]models.Location, error)

	// GetLocationByID retrieves a specific location by ID
	GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error)

	// UpdateLocation updates an existing location
	UpdateLocation(ctx context.Context, locationID int64, req *models.UpdateLocationRequest, userID int64) (*models.Location, error)

	// DeleteLocation deletes a location unless parent items or move history reference it
	DeleteLocation(ctx context.Context, locationID int64) error

	// CreateLocationType creates a new location type
	CreateLocationType(ctx context.Context, req *models.CreateLocationTypeRequest, userID int64) (*models.LocationType, error)

	// GetLocationTypes retrieves all location types
	GetLocationTypes(ctx context.Context) ([]models.LocationType, error)

	// DeleteLocationType deletes a location type unless locations reference it
	DeleteLocationType(ctx context.Context, locationTypeID int64) error
}

// LocationDao implements LocationRepository interface using PostgreSQL
type LocationDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateLocation creates a new location
func (dao *LocationDao) CreateLocation(ctx context.Context, req *models.CreateLocationRequest, userID int64) (*models.Location, error) {
	var typeExists bool
	err := dao.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM inventory.location_types WHERE id = $1)
	`, req.LocationTypeID).Scan(&typeExists)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to validate location type", err)
	}
	if !typeExists {
		return nil, apperrors.NotFound("location type", req.LocationTypeID)
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.StorageFailure("failed to encode location metadata", err)
	}

	location := &models.Location{
		Name:           req.Name,
		Description:    req.Description,
		Metadata:       metadata,
		LocationTypeID: req.LocationTypeID,
	}

	err = dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.locations (name, description, metadata, location_type_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`, req.Name, req.Description, metadataJSON, req.LocationTypeID, userID).Scan(
		&location.ID, &location.CreatedAt, &location.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"name":    req.Name,
			"error":   err.Error(),
		}).Error("Failed to create location")
		return nil, apperrors.StorageFailure("failed to create location", err)
	}

	location.CreatedBy = userID
	location.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"location_id": location.ID,
		"user_id":     userID,
		"name":        location.Name,
	}).Info("Successfully created location")

	return location, nil
}

// GetLocations retrieves all locations with their resolved type names
func (dao *LocationDao) GetLocations(ctx context.Context) ([]models.Location, error) {
	query := `
		SELECT l.id, l.name, COALESCE(l.description, ''), l.metadata, l.location_type_id, t.name,
		       l.created_at, COALESCE(l.created_by, 0), l.updated_at, COALESCE(l.updated_by, 0)
		FROM inventory.locations l
		JOIN inventory.location_types t ON l.location_type_id = t.id
		ORDER BY l.name ASC
	`

	rows, err := dao.DB.QueryContext(ctx, query)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query locations")
		return nil, apperrors.StorageFailure("failed to query locations", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan location row")
			return nil, apperrors.StorageFailure("failed to scan location", err)
		}
		locations = append(locations, *location)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating locations", err)
	}

	dao.Logger.WithField("count", len(locations)).Debug("Successfully retrieved locations")
	return locations, nil
}

// GetLocationByID retrieves a specific location by ID
func (dao *LocationDao) GetLocationByID(ctx context.Context, locationID int64) (*models.Location, error) {
	var location models.Location
	var metadataJSON []byte

	err := dao.DB.QueryRowContext(ctx, `
		SELECT l.id, l.name, COALESCE(l.description, ''), l.metadata, l.location_type_id, t.name,
		       l.created_at, COALESCE(l.created_by, 0), l.updated_at, COALESCE(l.updated_by, 0)
		FROM inventory.locations l
		JOIN inventory.location_types t ON l.location_type_id = t.id
		WHERE l.id = $1
	`, locationID).Scan(
		&location.ID, &location.Name, &location.Description, &metadataJSON,
		&location.LocationTypeID, &location.LocationType,
		&location.CreatedAt, &location.CreatedBy, &location.UpdatedAt, &location.UpdatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("location", locationID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		}).Error("Failed to get location")
		return nil, apperrors.StorageFailure("failed to get location", err)
	}

	if err := json.Unmarshal(metadataJSON, &location.Metadata); err != nil {
		return nil, apperrors.StorageFailure("failed to decode location metadata", err)
	}

	return &location, nil
}

// UpdateLocation updates an existing location with the provided fields
func (dao *LocationDao) UpdateLocation(ctx context.Context, locationID int64, req *models.UpdateLocationRequest, userID int64) (*models.Location, error) {
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
	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to encode location metadata", err)
		}
		setParts = append(setParts, fmt.Sprintf("metadata = $%d", argIndex))
		args = append(args, metadataJSON)
		argIndex++
	}
	if req.LocationTypeID != 0 {
		var typeExists bool
		err := dao.DB.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM inventory.location_types WHERE id = $1)
		`, req.LocationTypeID).Scan(&typeExists)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to validate location type", err)
		}
		if !typeExists {
			return nil, apperrors.NotFound("location type", req.LocationTypeID)
		}
		setParts = append(setParts, fmt.Sprintf("location_type_id = $%d", argIndex))
		args = append(args, req.LocationTypeID)
		argIndex++
	}

	args = append(args, locationID)

	query := fmt.Sprintf(`
		UPDATE inventory.locations
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), argIndex)

	var updatedID int64
	err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("location", locationID)
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		}).Error("Failed to update location")
		return nil, apperrors.StorageFailure("failed to update location", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"location_id": locationID,
		"user_id":     userID,
	}).Info("Successfully updated location")

	return dao.GetLocationByID(ctx, locationID)
}

// DeleteLocation deletes a location. The dependency checks and the delete
// run in one transaction so a concurrent move cannot slip in between the
// check and the delete. Locations with any move history are permanently
// undeletable to keep the audit ledger resolvable.
func (dao *LocationDao) DeleteLocation(ctx context.Context, locationID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	var itemCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory.parent_items WHERE current_location_id = $1
	`, locationID).Scan(&itemCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count items at location", err)
	}
	if itemCount > 0 {
		return apperrors.Conflict("cannot delete location: %d item(s) assigned", itemCount)
	}

	var historyCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory.move_history WHERE from_location_id = $1 OR to_location_id = $1
	`, locationID).Scan(&historyCount)
	if err != nil {
		return apperrors.StorageFailure("failed to count move history for location", err)
	}
	if historyCount > 0 {
		return apperrors.Conflict("cannot delete location: referenced in %d historical movement record(s)", historyCount)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.locations WHERE id = $1
	`, locationID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_id": locationID,
			"error":       err.Error(),
		}).Error("Failed to delete location")
		return apperrors.StorageFailure("failed to delete location", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("location", locationID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit location deletion", err)
	}

	dao.Logger.WithField("location_id", locationID).Info("Successfully deleted location")
	return nil
}

// CreateLocationType creates a new location type
func (dao *LocationDao) CreateLocationType(ctx context.Context, req *models.CreateLocationTypeRequest, userID int64) (*models.LocationType, error) {
	locationType := &models.LocationType{
		Name:        req.Name,
		Description: req.Description,
	}

	err := dao.DB.QueryRowContext(ctx, `
		INSERT INTO inventory.location_types (name, description, created_by, updated_by)
		VALUES ($1, $2, $3, $3)
		RETURNING id, created_at, updated_at
	`, req.Name, req.Description, userID).Scan(
		&locationType.ID, &locationType.CreatedAt, &locationType.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"name":  req.Name,
			"error": err.Error(),
		}).Error("Failed to create location type")
		return nil, apperrors.StorageFailure("failed to create location type", err)
	}

	locationType.CreatedBy = userID
	locationType.UpdatedBy = userID

	dao.Logger.WithFields(logrus.Fields{
		"location_type_id": locationType.ID,
		"name":             locationType.Name,
	}).Info("Successfully created location type")

	return locationType, nil
}

// GetLocationTypes retrieves all location types
func (dao *LocationDao) GetLocationTypes(ctx context.Context) ([]models.LocationType, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at, COALESCE(created_by, 0), updated_at, COALESCE(updated_by, 0)
		FROM inventory.location_types
		ORDER BY name ASC
	`)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query location types")
		return nil, apperrors.StorageFailure("failed to query location types", err)
	}
	defer rows.Close()

	var locationTypes []models.LocationType
	for rows.Next() {
		var locationType models.LocationType
		err := rows.Scan(
			&locationType.ID, &locationType.Name, &locationType.Description,
			&locationType.CreatedAt, &locationType.CreatedBy, &locationType.UpdatedAt, &locationType.UpdatedBy,
		)
		if err != nil {
			return nil, apperrors.StorageFailure("failed to scan location type", err)
		}
		locationTypes = append(locationTypes, locationType)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StorageFailure("error iterating location types", err)
	}

	return locationTypes, nil
}

// DeleteLocationType deletes a location type. Denied while any location
// references it; the reason names up to five of them.
func (dao *LocationDao) DeleteLocationType(ctx context.Context, locationTypeID int64) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageFailure("failed to start transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT name FROM inventory.locations WHERE location_type_id = $1 ORDER BY name ASC
	`, locationTypeID)
	if err != nil {
		return apperrors.StorageFailure("failed to list locations for type", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return apperrors.StorageFailure("failed to scan location name", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return apperrors.StorageFailure("error iterating location names", err)
	}

	if len(names) > 0 {
		shown := names
		if len(shown) > 5 {
			shown = shown[:5]
		}
		return apperrors.Conflict("cannot delete location type: used by %d location(s): %s",
			len(names), strings.Join(shown, ", "))
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM inventory.location_types WHERE id = $1
	`, locationTypeID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"location_type_id": locationTypeID,
			"error":            err.Error(),
		}).Error("Failed to delete location type")
		return apperrors.StorageFailure("failed to delete location type", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StorageFailure("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("location type", locationTypeID)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.StorageFailure("failed to commit location type deletion", err)
	}

	dao.Logger.WithField("location_type_id", locationTypeID).Info("Successfully deleted location type")
	return nil
}

// scanLocation reads one joined location row.
func scanLocation(rows *sql.Rows) (*models.Location, error) {
	var location models.Location
	var metadataJSON []byte

	err := rows.Scan(
		&location.ID, &location.Name, &location.Description, &metadataJSON,
		&location.LocationTypeID, &location.LocationType,
		&location.CreatedAt, &location.CreatedBy, &location.UpdatedAt, &location.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadataJSON, &location.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode location metadata: %w", err)
	}
	return &location, nil
}
