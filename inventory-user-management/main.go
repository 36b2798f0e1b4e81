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
	userRepository data.UserRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("User management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	// Role and user administration is admin-only across all methods
	if !claims.Permissions.Allows(constants.PERM_INVENTORY_ADMIN) {
		logger.WithField("user_id", claims.UserID).Warn("Missing inventory:admin permission")
		return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:admin required", logger), nil
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
	case "roles":
		return routeRoles(ctx, request, claims, resourceID), nil
	case "users":
		return routeUsers(ctx, request, claims, resourceID), nil
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unknown resource", logger), nil
	}
}

func routeRoles(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, resourceID *int64) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if resourceID != nil {
			role, err := userRepository.GetRoleByID(ctx, *resourceID)
			if err != nil {
				return api.ErrorResponseFromErr(err, logger)
			}
			return api.SuccessResponse(http.StatusOK, role, logger)
		}
		roles, err := userRepository.GetRoles(ctx)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, models.RoleListResponse{
			Roles: roles,
			Total: len(roles),
		}, logger)

	case http.MethodPost:
		var createReq models.CreateRoleRequest
		if err := json.Unmarshal([]byte(request.Body), &createReq); err != nil {
			logger.WithError(err).Error("Failed to parse create role request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		if createReq.Name == "" {
			return api.ErrorResponse(http.StatusBadRequest, "Role name is required", logger)
		}
		role, err := userRepository.CreateRole(ctx, &createReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusCreated, role, logger)

	case http.MethodPut:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Role ID required", logger)
		}
		var updateReq models.UpdateRoleRequest
		if err := json.Unmarshal([]byte(request.Body), &updateReq); err != nil {
			logger.WithError(err).Error("Failed to parse update role request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		role, err := userRepository.UpdateRole(ctx, *resourceID, &updateReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, role, logger)

	case http.MethodDelete:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "Role ID required", logger)
		}
		if err := userRepository.DeleteRole(ctx, *resourceID); err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, map[string]string{
			"message": "Role deleted successfully",
		}, logger)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
}

func routeUsers(ctx context.Context, request events.APIGatewayProxyRequest, claims *auth.Claims, resourceID *int64) events.APIGatewayProxyResponse {
	switch request.HTTPMethod {
	case http.MethodGet:
		if resourceID != nil {
			user, err := userRepository.GetUserByID(ctx, *resourceID)
			if err != nil {
				return api.ErrorResponseFromErr(err, logger)
			}
			return api.SuccessResponse(http.StatusOK, user, logger)
		}
		users, err := userRepository.GetUsers(ctx)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, models.UserListResponse{
			Users: users,
			Total: len(users),
		}, logger)

	case http.MethodPost:
		var createReq models.CreateUserRequest
		if err := json.Unmarshal([]byte(request.Body), &createReq); err != nil {
			logger.WithError(err).Error("Failed to parse create user request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		if createReq.Email == "" || createReq.RoleID == 0 {
			return api.ErrorResponse(http.StatusBadRequest, "email and role_id are required", logger)
		}
		user, err := userRepository.CreateUser(ctx, &createReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusCreated, user, logger)

	case http.MethodPut:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "User ID required", logger)
		}
		var updateReq models.UpdateUserRequest
		if err := json.Unmarshal([]byte(request.Body), &updateReq); err != nil {
			logger.WithError(err).Error("Failed to parse update user request")
			return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
		}
		user, err := userRepository.UpdateUser(ctx, *resourceID, &updateReq, claims.UserID)
		if err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, user, logger)

	case http.MethodDelete:
		if resourceID == nil {
			return api.ErrorResponse(http.StatusBadRequest, "User ID required", logger)
		}
		if err := userRepository.DeleteUser(ctx, *resourceID); err != nil {
			return api.ErrorResponseFromErr(err, logger)
		}
		return api.SuccessResponse(http.StatusOK, map[string]string{
			"message": "User deleted successfully",
		}, logger)

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger)
	}
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

	logger.WithField("operation", "init").Info("User Management Lambda initialization completed successfully")
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

	userRepository = &data.UserDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
