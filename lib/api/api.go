package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"inventory/lib/apperrors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
}

// SuccessResponse creates a successful API Gateway response
func SuccessResponse(statusCode int, data interface{}, logger *logrus.Logger) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal response data")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}

// ErrorResponse creates an error API Gateway response
func ErrorResponse(statusCode int, message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":true,"message":"Internal server error","status":500}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}

// ErrorResponseFromErr maps a repository error to an API Gateway response
// using its error kind.
func ErrorResponseFromErr(err error, logger *logrus.Logger) events.APIGatewayProxyResponse {
	kind := apperrors.KindOf(err)

	var appErr *apperrors.Error
	message := "Internal server error"
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch kind {
	case apperrors.KindNotFound:
		return ErrorResponse(http.StatusNotFound, message, logger)
	case apperrors.KindInvalidOperation:
		return ErrorResponse(http.StatusUnprocessableEntity, message, logger)
	case apperrors.KindConflict:
		return ErrorResponse(http.StatusConflict, message, logger)
	case apperrors.KindForbidden:
		return ErrorResponse(http.StatusForbidden, message, logger)
	default:
		logger.WithError(err).Error("Unhandled storage error")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
	}
}
