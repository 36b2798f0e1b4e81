package main

import (
	"context"
	"database/sql"
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
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger            *logrus.Logger
	isLocal           bool
	ssmRepository     data.SSMRepository
	ssmParams         map[string]string
	sqlDB             *sql.DB
	historyRepository data.HistoryRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("History management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	if request.HTTPMethod != http.MethodGet {
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}

	if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
		logger.WithField("user_id", claims.UserID).Warn("Missing inventory:read permission")
		return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger), nil
	}

	pathSegments := strings.Split(strings.Trim(request.Path, "/"), "/")
	if len(pathSegments) < 2 || pathSegments[0] != "history" {
		return api.ErrorResponse(http.StatusBadRequest, "History resource required", logger), nil
	}

	switch pathSegments[1] {
	case "moves":
		// GET /history/moves?parent_item_id=&location_id=&moved_by=&from=&to=
		return handleGetMoveHistory(ctx, request.QueryStringParameters), nil
	case "assignments":
		// GET /history/assignments?child_item_id=&parent_item_id=&assigned_by=&from=&to=
		return handleGetAssignmentHistory(ctx, request.QueryStringParameters), nil
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unknown history resource", logger), nil
	}
}

// handleGetMoveHistory handles GET /history/moves
func handleGetMoveHistory(ctx context.Context, queryParams map[string]string) events.APIGatewayProxyResponse {
	filters := &models.MoveHistoryFilters{}

	var err error
	if filters.ParentItemID, err = parseIDParam(queryParams, "parent_item_id"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid parent_item_id", logger)
	}
	if filters.LocationID, err = parseIDParam(queryParams, "location_id"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid location_id", logger)
	}
	if filters.MovedBy, err = parseIDParam(queryParams, "moved_by"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid moved_by", logger)
	}
	if filters.From, filters.To, err = parseDateRange(queryParams); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, err.Error(), logger)
	}

	moves, err := historyRepository.GetMoveHistory(ctx, filters)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	response := models.MoveHistoryListResponse{
		Moves: moves,
		Total: len(moves),
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// handleGetAssignmentHistory handles GET /history/assignments
func handleGetAssignmentHistory(ctx context.Context, queryParams map[string]string) events.APIGatewayProxyResponse {
	filters := &models.AssignmentHistoryFilters{}

	var err error
	if filters.ChildItemID, err = parseIDParam(queryParams, "child_item_id"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid child_item_id", logger)
	}
	if filters.ParentItemID, err = parseIDParam(queryParams, "parent_item_id"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid parent_item_id", logger)
	}
	if filters.AssignedBy, err = parseIDParam(queryParams, "assigned_by"); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, "Invalid assigned_by", logger)
	}
	if filters.From, filters.To, err = parseDateRange(queryParams); err != nil {
		return api.ErrorResponse(http.StatusBadRequest, err.Error(), logger)
	}

	assignments, err := historyRepository.GetAssignmentHistory(ctx, filters)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	response := models.AssignmentHistoryListResponse{
		Assignments: assignments,
		Total:       len(assignments),
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// parseIDParam extracts an optional int64 query parameter
func parseIDParam(queryParams map[string]string, name string) (*int64, error) {
	value, ok := queryParams[name]
	if !ok || value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDateRange extracts optional from/to bounds. Both RFC 3339 timestamps
// and plain dates are accepted; a plain "to" date is inclusive of the whole day.
func parseDateRange(queryParams map[string]string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if value := queryParams["from"]; value != "" {
		t, _, err := parseTimestamp(value)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from timestamp: %q", value)
		}
		from = &t
	}

	if value := queryParams["to"]; value != "" {
		t, dateOnly, err := parseTimestamp(value)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to timestamp: %q", value)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}

	return from, to, nil
}

func parseTimestamp(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
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

	logger.WithField("operation", "init").Info("History Management Lambda initialization completed successfully")
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

	historyRepository = &data.HistoryDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
