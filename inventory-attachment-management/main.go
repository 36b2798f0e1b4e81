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
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Presigned URL lifetimes. Uploads get longer since clients may be on
// slow connections.
const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 5 * time.Minute
)

// Global variables for Lambda cold start optimization
var (
	logger               *logrus.Logger
	isLocal              bool
	ssmRepository        data.SSMRepository
	ssmParams            map[string]string
	sqlDB                *sql.DB
	attachmentRepository data.AttachmentRepository
	s3Client             clients.S3ClientInterface
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("Attachment management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	pathSegments := strings.Split(strings.Trim(request.Path, "/"), "/")

	switch request.HTTPMethod {
	case http.MethodPost:
		// POST /parent-items/{id}/attachments - Register attachment, return upload URL
		if len(pathSegments) >= 3 && pathSegments[0] == "parent-items" && pathSegments[2] == "attachments" {
			if !claims.Permissions.Allows(constants.PERM_INVENTORY_WRITE) {
				logger.WithField("user_id", claims.UserID).Warn("Missing inventory:write permission")
				return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:write required", logger), nil
			}
			parentItemID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid parent item ID", logger), nil
			}
			return handleCreateAttachment(ctx, parentItemID, claims.UserID, request.Body), nil
		}
		return api.ErrorResponse(http.StatusBadRequest, "Parent item ID and attachments resource required", logger), nil

	case http.MethodGet:
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_READ) {
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:read required", logger), nil
		}
		// GET /parent-items/{id}/attachments - List attachments for an item
		if len(pathSegments) >= 3 && pathSegments[0] == "parent-items" && pathSegments[2] == "attachments" {
			parentItemID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid parent item ID", logger), nil
			}
			return handleGetAttachments(ctx, parentItemID), nil
		}
		// GET /attachments/{id}/download - Presigned download URL
		if len(pathSegments) >= 3 && pathSegments[0] == "attachments" && pathSegments[2] == "download" {
			attachmentID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid attachment ID", logger), nil
			}
			return handleDownloadAttachment(ctx, attachmentID), nil
		}
		return api.ErrorResponse(http.StatusBadRequest, "Unknown attachment resource", logger), nil

	case http.MethodDelete:
		// DELETE /attachments/{id} - Remove metadata and S3 object
		if !claims.Permissions.Allows(constants.PERM_INVENTORY_DELETE) {
			logger.WithField("user_id", claims.UserID).Warn("Missing inventory:delete permission")
			return api.ErrorResponse(http.StatusForbidden, "Forbidden: inventory:delete required", logger), nil
		}
		if len(pathSegments) >= 2 && pathSegments[0] == "attachments" {
			attachmentID, err := strconv.ParseInt(pathSegments[1], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid attachment ID", logger), nil
			}
			return handleDeleteAttachment(ctx, attachmentID), nil
		}
		return api.ErrorResponse(http.StatusBadRequest, "Attachment ID required", logger), nil

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}
}

// handleCreateAttachment handles POST /parent-items/{id}/attachments
func handleCreateAttachment(ctx context.Context, parentItemID, userID int64, body string) events.APIGatewayProxyResponse {
	var createReq models.CreateAttachmentRequest
	if err := json.Unmarshal([]byte(body), &createReq); err != nil {
		logger.WithError(err).Error("Failed to parse create attachment request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if createReq.FileName == "" || createReq.ContentType == "" {
		return api.ErrorResponse(http.StatusBadRequest, "file_name and content_type are required", logger)
	}

	attachment, err := attachmentRepository.CreateAttachment(ctx, parentItemID, &createReq, userID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	uploadURL, err := s3Client.GenerateUploadURL(attachment.S3Key, attachment.ContentType, uploadURLExpiry)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"attachment_id": attachment.ID,
			"s3_key":        attachment.S3Key,
			"error":         err.Error(),
		}).Error("Failed to generate upload URL")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to generate upload URL", logger)
	}

	response := models.AttachmentUploadResponse{
		Attachment: *attachment,
		UploadURL:  uploadURL,
	}

	return api.SuccessResponse(http.StatusCreated, response, logger)
}

// handleGetAttachments handles GET /parent-items/{id}/attachments
func handleGetAttachments(ctx context.Context, parentItemID int64) events.APIGatewayProxyResponse {
	attachments, err := attachmentRepository.GetAttachmentsByItem(ctx, parentItemID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	response := models.AttachmentListResponse{
		Attachments: attachments,
		Total:       len(attachments),
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// handleDownloadAttachment handles GET /attachments/{id}/download
func handleDownloadAttachment(ctx context.Context, attachmentID int64) events.APIGatewayProxyResponse {
	attachment, err := attachmentRepository.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	downloadURL, err := s3Client.GenerateDownloadURL(attachment.S3Key, downloadURLExpiry)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"attachment_id": attachmentID,
			"s3_key":        attachment.S3Key,
			"error":         err.Error(),
		}).Error("Failed to generate download URL")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to generate download URL", logger)
	}

	response := models.AttachmentDownloadResponse{
		Attachment:  *attachment,
		DownloadURL: downloadURL,
	}

	return api.SuccessResponse(http.StatusOK, response, logger)
}

// handleDeleteAttachment handles DELETE /attachments/{id}
func handleDeleteAttachment(ctx context.Context, attachmentID int64) events.APIGatewayProxyResponse {
	s3Key, err := attachmentRepository.DeleteAttachment(ctx, attachmentID)
	if err != nil {
		return api.ErrorResponseFromErr(err, logger)
	}

	// Metadata row is already gone; a failed object delete only leaves an
	// orphan in the bucket, so log and continue.
	if err := s3Client.DeleteObject(s3Key); err != nil {
		logger.WithFields(logrus.Fields{
			"attachment_id": attachmentID,
			"s3_key":        s3Key,
			"error":         err.Error(),
		}).Warn("Failed to delete S3 object")
	}

	return api.SuccessResponse(http.StatusOK, map[string]string{
		"message": "Attachment deleted successfully",
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

	// Initialize S3 client for attachment objects
	s3Client = clients.NewS3Client(isLocal, ssmParams[constants.ATTACHMENT_BUCKET])

	// Initialize PostgreSQL database connection
	err = setupPostgresSQLClient(ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up PostgreSQL client")
	}

	logger.WithField("operation", "init").Info("Attachment Management Lambda initialization completed successfully")
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

	attachmentRepository = &data.AttachmentDao{
		DB:     sqlDB,
		Logger: logger,
	}

	return nil
}
