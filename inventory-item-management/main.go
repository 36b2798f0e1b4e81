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
	logger         *logrus.Logger
	isLocal        bool
	ssmRepository  data.SSMRepository
	ssmParams      map[string]string
	sqlDB          *sql.DB
	itemRepository data.ItemRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("Item management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	// Method-level permission gate shared by all three resources
	switch request.HTTPMethod {
	case http.MethodGet:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger), nil
		}
	case http.MethodPost, http.MethodPut:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger), nil
		}
	case http.MethodDelete:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_DELETE) {
			logger.WithField("user_id", claims.UserID).Warn("Missing inventory:delete permission")
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:delete required", logger), nil
		}
	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}

	pathSegments := strings.Split(strings.Trim(request.Path, "/"), "/")
	if len(pathSegments) == 0 {
		return api.ErrorResponse(http.StatusBadRequest, "Resource required", logger), nil
	}

	var resourceID *int64
	if len(pathSegments) >= 2 {
		id, err := strconv.ParseInt(pathSegments[1], 10, 64)
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid resource ID", logger), nil
		}
		resourceID = &id
	}

	switch pathSegments[0] {
	case "item-types":
		return routeItemTypes(ctx, request, claims, resourceID), nil
	case "parent-items":
		return routeParentItems(ctx, request, claims, resourceID), nil
	case "child-items":
		return routeChildItems(ctx, request, claims, resourceID), nil
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unknown resource", logger), nil
	}
}

func routeItemTypes(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, resourceID *int64) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		itemTypes, err := itemRepository.GetItemTypes(ctx)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, models.ItemTypeListResponse{
			ItemTypes: itemTypes,
			Total:     len(itemTypes),
		}, logger)

	case http.MethodPost:
		var createReq models.CreateItemTypeRequest
		if err := json.Unmarshal([]byte(request.Body), &createReq); err != nil {
			logger.WithError(err).Error("Failed to parse create item type request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		if createReq.Name == "" {
			return api.ErrorResponse(http.StatusBadRequest, "Item type name is required", logger)
		}
		itemType, err := itemRepository.CreateItemType(ctx, &createReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusCreated, itemType, logger)

	case http.MethodDelete:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Item type ID required", logger)
		}
		if err := itemRepository.DeleteItemType(ctx, *resourceID); err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, map[string]string{
			"message": "Item type deleted successfully",
		}, logger)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
}

func routeParentItems(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, resourceID *int64) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if resourceID != nil {
			item, err := itemRepository.GetParentItemByID(ctx, *resourceID)
			if err != nil {
				return api.ErrorResponseFromErr(err, logger)
			}
			return api.SuccessResponse(http.StatusOK, item, logger)
		}
		// GET /parent-items?location_id= filters by current location
		locationID, err := parseIDParam(request.QueryStringParameters, "location_id")
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid location_id", logger)
		}
		items, err := itemRepository.GetParentItems(ctx, locationID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, models.ParentItemListResponse{
			Items: items,
			Total: len(items),
		}, logger)

	case http.MethodPost:
		var createReq models.CreateParentItemRequest
		if err := json.Unmarshal([]byte(request.Body), &createReq); err != nil {
			logger.WithError(err).Error("Failed to parse create parent item request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		if createReq.Name == "" || createReq.ItemTypeID == 0 || createReq.LocationID == 0 {
			return api.ErrorResponse(http.StatusBadRequest, "name, item_type_id and location_id are required", logger)
		}
		item, err := itemRepository.CreateParentItem(ctx, &createReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusCreated, item, logger)

	case http.MethodPut:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Parent item ID required", logger)
		}
		var updateReq models.UpdateParentItemRequest
		if err := json.Unmarshal([]byte(request.Body), &updateReq); err != nil {
			logger.WithError(err).Error("Failed to parse update parent item request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		item, err := itemRepository.UpdateParentItem(ctx, *resourceID, &updateReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, item, logger)

	case http.MethodDelete:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Parent item ID required", logger)
		}
		if err := itemRepository.DeleteParentItem(ctx, *resourceID); err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, map[string]string{
			"message": "Parent item deleted successfully",
		}, logger)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
}

func routeChildItems(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, resourceID *int64) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if resourceID != nil {
			item, err := itemRepository.GetChildItemByID(ctx, *resourceID)
			if err != nil {
				return api.ErrorResponseFromErr(err, logger)
			}
			return api.SuccessResponse(http.StatusOK, item, logger)
		}
		// GET /child-items?parent_item_id= filters by current parent
		parentItemID, err := parseIDParam(request.QueryStringParameters, "parent_item_id")
		if err != nil {
			return api.ErrorResponse(http.StatusBadRequest, "Invalid parent_item_id", logger)
		}
		items, err := itemRepository.GetChildItems(ctx, parentItemID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, models.ChildItemListResponse{
			Items: items,
			Total: len(items),
		}, logger)

	case http.MethodPost:
		var createReq models.CreateChildItemRequest
		if err := json.Unmarshal([]byte(request.Body), &createReq); err != nil {
			logger.WithError(err).Error("Failed to parse create child item request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		if createReq.Name == "" || createReq.ItemTypeID == 0 {
			return api.ErrorResponse(http.StatusBadRequest, "name and item_type_id are required", logger)
		}
		item, err := itemRepository.CreateChildItem(ctx, &createReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusCreated, item, logger)

	case http.MethodPut:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Child item ID required", logger)
		}
		var updateReq models.UpdateChildItemRequest
		if err := json.Unmarshal([]byte(request.Body), &updateReq); err != nil {
			logger.WithError(err).Error("Failed to parse update child item request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		item, err := itemRepository.UpdateChildItem(ctx, *resourceID, &updateReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, item, logger)

	case http.MethodDelete:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Child item ID required", logger)
		}
		if err := itemRepository.DeleteChildItem(ctx, *resourceID); err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, map[string]string{
			"message": "Child item deleted successfully",
		}, logger)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
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

	logger.WithField("operation", "init").Info("Item Management Lambda initialization completed successfully")
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

	itemRepository = &data.ItemDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
