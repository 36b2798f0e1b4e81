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
	movementRepository data.MovementRepository
	historyRepository  data.HistoryRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("Movement management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	pathSegments := strings.Split(strings.Trim(request.Path, "/"), "/")

	switch request.HTTPMethod {
	case http.MethodPost:
		// POST /parent-items/{id}/move - Move a parent item
		if len(pathSegments) >= 3 && pathSegments[2] == "move" {
			if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
				logger.WithField("user_id", claims.UserID).Warn("Missing inventory:write permission")
				return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger), nil
			}
			parentItemID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid parent item ID", logger), nil
			}
			return handleMoveParentItem(ctx, parentItemID, claims.UserID, request.Body), nil
		}
		return api.ErrorResponse(http.StatusBadRequest, "Parent item ID and move action required", logger), nil

	case http.MethodGet:
		// GET /parent-items/{id}/moves - Move history for one item
		if len(pathSegments) >= 3 && pathSegments[2] == "moves" {
			if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
				return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger), nil
			}
			parentItemID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid parent item ID", logger), nil
			}
			return handleGetItemMoves(ctx, parentItemID), nil
		}
		return api.ErrorResponse(http.StatusBadRequest, "Parent item ID required", logger), nil

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}
}

// handleMoveParentItem handles POST /parent-items/{id}/move
func handleMoveParentItem(ctx context.Context, parentItemID, userID int64, body string) events.APIGatewayProxyResponse {
	var moveReq models.MoveRequest
	if err := json.Unmarshal([]byte(body), &moveReq); err != nil {
		logger.WithError(err).Error("Failed to parse move request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if moveReq.DestinationLocationID == 0 {
		return api.ErrorResponse(http.StatusBadRequest, "destination_location_id is required", logger)
	}

	result, err := movementRepository.MoveParentItem(ctx, parentItemID, moveReq.DestinationLocationID, userID, moveReq.Notes)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	return api.SuccessResponse(http.StatusOK, result, logger)
}

// handleGetItemMoves handles GET /parent-items/{id}/moves
func handleGetItemMoves(ctx context.Context, parentItemID int64) events.APIGatewayProxyResponse {
	filters := &models.MoveHistoryFilters{ParentItemID: &parentItemID}
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

	logger.WithField("operation", "init").Info("Movement Management Lambda initialization completed successfully")
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

	movementRepository = &data.MovementDao{
		DB:     sqlDB,
		Logger: logger,
	}
	historyRepository = &data.HistoryDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
