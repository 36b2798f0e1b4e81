package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"inventory/lib/apperrors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SuccessResponse(t *testing.T) {
	//Arrange
	logger := logrus.New()
	payload := map[string]string{"message": "ok"}

	//Act
	response := SuccessResponse(http.StatusOK, payload, logger)

	//Assert
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "application/json", response.Headers["Content-Type"])
	assert.JSONEq(t, `{"message":"ok"}`, response.Body)
}

func Test_ErrorResponse(t *testing.T) {
	//Arrange
	logger := logrus.New()

	//Act
	response := ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)

	//Assert
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Invalid request body", body["message"])
}

func Test_ErrorResponseFromErr_StatusMapping(t *testing.T) {
	//Arrange
	logger := logrus.New()
	cases := []struct {
		err      error
		expected int
	}{
		{apperrors.NotFound("location", 42), http.StatusNotFound},
		{apperrors.InvalidOperation("parent item 1 is already at location \"Warehouse A\""), http.StatusUnprocessableEntity},
		{apperrors.Conflict("cannot delete location: 3 item(s) assigned"), http.StatusConflict},
		{apperrors.Forbidden("inventory:delete"), http.StatusForbidden},
		{apperrors.StorageFailure("failed to commit move", errors.New("connection reset")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		//Act
		response := ErrorResponseFromErr(c.err, logger)

		//Assert
		assert.Equal(t, c.expected, response.StatusCode)
	}
}

func Test_ErrorResponseFromErr_UsesTypedMessage(t *testing.T) {
	//Arrange
	logger := logrus.New()
	err := apperrors.Conflict("cannot delete location: 1 item(s) assigned")

	//Act
	response := ErrorResponseFromErr(err, logger)

	//Assert
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	assert.Equal(t, "cannot delete location: 1 item(s) assigned", body["message"])
}

func Test_ErrorResponseFromErr_HidesStorageDetails(t *testing.T) {
	//Arrange
	logger := logrus.New()
	err := errors.New("pq: password authentication failed")

	//Act
	response := ErrorResponseFromErr(err, logger)

	//Assert
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	assert.Equal(t, "Internal server error", body["message"])
}
