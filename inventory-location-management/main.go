package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"inventory/lib/api"
	"inventory/lib/auth"
	"inventory/lib/clients"
	"inventory/lib/constants"
	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/util"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger             *logrus.Logger
	isLocal            bool
	ssmRepository      data.SSMRepository
	ssmParams          map[string]string
	sqlDB              *sql.DB
	locationRepository data.LocationRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("Location management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	pathSegments := strings.Split(strings.Trim(request.Path, "/"), "/")
	if len(pathSegments) == 0 {
		return api.ErrorResponse(http.StatusBadRequest, "Resource required", logger), nil
	}

	switch pathSegments[0] {
	case "locations":
		return routeLocations(ctx, request, claims, pathSegments), nil
	case "location-types":
		return routeLocationTypes(ctx, request, claims, pathSegments), nil
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unknown resource", logger), nil
	}
}

func routeLocations(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, pathSegments []string) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger)
		}
		if len(pathSegments) >= 2 {
			locationID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid location ID", logger)
			}
			return handleGetLocation(ctx, locationID)
		}
		return handleGetLocations(ctx)

	case http.MethodPost:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger)
		}
		return handleCreateLocation(ctx, claims.UserID, request.Body)

	case http.MethodPut:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger)
		}
		if len(pathSegments) < 2 {
			return api.ErrorResponse(http.StatusBadRequest, "Location ID required", logger)
		}
		locationID, err := strconv.ParseInt(pathSegments[1], 10, 64)
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid location ID", logger)
		}
		return handleUpdateLocation(ctx, locationID, claims.UserID, request.Body)

	case http.MethodDelete:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_DELETE) {
			logger.WithField("user_id", claims.UserID).Warn("Missing inventory:delete permission")
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:delete required", logger)
		}
		if len(pathSegments) < 2 {
			return api.ErrorResponse(http.StatusBadRequest, "Location ID required", logger)
		}
		locationID, err := strconv.ParseInt(pathSegments[1], 10, 64)
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid location ID", logger)
		}
		return handleDeleteLocation(ctx, locationID)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
}

func routeLocationTypes(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, pathSegments []string) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger)
		}
		return handleGetLocationTypes(ctx)

	case http.MethodPost:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger)
		}
		return handleCreateLocationType(ctx, claims.UserID, request.Body)

	case http.MethodDelete:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_DELETE) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:delete required", logger)
		}
		if len(pathSegments) < 2 {
			return api.ErrorResponse(http.StatusBadRequest, "Location type ID required", logger)
		}
		locationTypeID, err := strconv.ParseInt(pathSegments[1], 10, 64)
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid location type ID", logger)
		}
		return handleDeleteLocationType(ctx, locationTypeID)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
}

// handleGetLocations handles GET /locations
func handleGetLocations(ctx context.Context) events.APIGatewayProxyResponse {
	locations, err := locationRepository.GetLocations(ctx)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	response := models.LocationListResponse{
		Locations: locations,
		Total:     len(locations),
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// handleGetLocation handles GET /locations/{id}
func handleGetLocation(ctx context.Context, locationID int64) events.APIGatewayProxyResponse {
	location, err := locationRepository.GetLocationByID(ctx, locationID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusOK, location, logger)
}

// handleCreateLocation handles POST /locations
func handleCreateLocation(ctx context.Context, userID int64, body string) events.APIGatewayProxyResponse {
	var createReq models.CreateLocationRequest
	if err := json.Unmarshal([]byte(body), &createReq); err != nil {
		logger.WithError(err).Error("Failed to parse create location request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if createReq.Name == "" {
		return api.ErrorResponse(http.StatusBadRequest, "Location name is required", logger)
	}
	if createReq.LocationTypeID == 0 {
		return api.ErrorResponse(http.StatusBadRequest, "location_type_id is required", logger)
	}

	location, err := locationRepository.CreateLocation(ctx, &createReq, userID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusCreated, location, logger)
}

// handleUpdateLocation handles PUT /locations/{id}
func handleUpdateLocation(ctx context.Context, locationID, userID int64, body string) events.APIGatewayProxyResponse {
	var updateReq models.UpdateLocationRequest
	if err := json.Unmarshal([]byte(body), &updateReq); err != nil {
		logger.WithError(err).Error("Failed to parse update location request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	location, err := locationRepository.UpdateLocation(ctx, locationID, &updateReq, userID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusOK, location, logger)
}

// handleDeleteLocation handles DELETE /locations/{id}
func handleDeleteLocation(ctx context.Context, locationID int64) events.APIGatewayProxyResponse {
	if err := locationRepository.DeleteLocation(ctx, locationID); err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusOK, map[string]string{
		"message": "Location deleted successfully",
	}, logger)
}

// handleGetLocationTypes handles GET /location-types
func handleGetLocationTypes(ctx context.Context) events.APIGatewayProxyResponse {
	locationTypes, err := locationRepository.GetLocationTypes(ctx)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	response := models.LocationTypeListResponse{
		LocationTypes: locationTypes,
		Total:         len(locationTypes),
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// handleCreateLocationType handles POST /location-types
func handleCreateLocationType(ctx context.Context, userID int64, body string) events.APIGatewayProxyResponse {
	var createReq models.CreateLocationTypeRequest
	if err := json.Unmarshal([]byte(body), &createReq); err != nil {
		logger.WithError(err).Error("Failed to parse create location type request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if createReq.Name == "" {
		return api.ErrorResponse(http.StatusBadRequest, "Location type name is required", logger)
	}

	locationType, err := locationRepository.CreateLocationType(ctx, &createReq, userID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusCreated, locationType, logger)
}

// handleDeleteLocationType handles DELETE /location-types/{id}
func handleDeleteLocationType(ctx context.Context, locationTypeID int64) events.APIGatewayProxyResponse {
	if err := locationRepository.DeleteLocationType(ctx, locationTypeID); err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusOK, map[string]string{
		"message": "Location type deleted successfully",
	}, logger)
}

// main is the Lambda function entry point
func main() {
	lambda.Start(Handler)
}

func init() {
	var err error

	isLocal = parseIsLocal()

	// Logger Setup
	logger = setupLogger(isLocal)

	// Initialize AWS SSM Parameter Store client
	ssmClient := clients.NewSSMClient(isLocal)
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	// Retrieve all required configuration parameters from SSM
	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	// Initialize PostgreSQL database connection
	err = setupPostgresSQLClient(ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up PostgreSQL client")
	}

	logger.WithField("operation", "init").Info("Location Management Lambda initialization completed successfully")
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}

func setupPostgresSQLClient(ssmParams map[string]string) error {
	var err error

	// Create PostgreSQL client using RDS connection parameters from SSM
	sqlDB, err = clients.NewPostgresSQLClient(
		ssmParams[constants.DATABASE_RDS_ENDPOINT],
		ssmParams[constants.DATABASE_PORT],
		ssmParams[constants.DATABASE_NAME],
		ssmParams[constants.DATABASE_USERNAME],
		ssmParams[constants.DATABASE_PASSWORD],
		ssmParams[constants.SSL_MODE],
	)
	if err != nil {
		return fmt.Errorf("error creating PostgreSQL client: %w", err)
	}

	locationRepository = &data.LocationDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
