package auth

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithClaims(claims map[string]interface{}) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{
				"claims": claims,
			},
		},
	}
}

func Test_PermissionSet_Allows_Exact(t *testing.T) {
	//Arrange
	permissions := PermissionSet{"inventory:read": true, "inventory:write": false}

	//Act & Assert
	assert.True(t, permissions.Allows("inventory:read"))
	assert.False(t, permissions.Allows("inventory:write"))
	assert.False(t, permissions.Allows("inventory:delete"))
}

func Test_PermissionSet_Allows_Wildcard(t *testing.T) {
	//Arrange
	permissions := PermissionSet{"*": true}

	//Act & Assert
	assert.True(t, permissions.Allows("inventory:read"))
	assert.True(t, permissions.Allows("inventory:admin"))
}

func Test_PermissionSet_Allows_EmptySet(t *testing.T) {
	//Arrange
	permissions := PermissionSet{}

	//Act & Assert
	assert.False(t, permissions.Allows("inventory:read"))
}

func Test_ExtractClaimsFromRequest_Success(t *testing.T) {
	//Arrange
	request := requestWithClaims(map[string]interface{}{
		"user_id":     "7",
		"email":       "ada@example.com",
		"permissions": `{"inventory:read":true,"inventory:write":true}`,
	})

	//Act
	claims, err := ExtractClaimsFromRequest(request)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.Permissions.Allows("inventory:write"))
	assert.False(t, claims.Permissions.Allows("inventory:delete"))
}

func Test_ExtractClaimsFromRequest_NumericUserID(t *testing.T) {
	//Arrange
	request := requestWithClaims(map[string]interface{}{
		"user_id": float64(7),
		"email":   "ada@example.com",
	})

	//Act
	claims, err := ExtractClaimsFromRequest(request)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func Test_ExtractClaimsFromRequest_PermissionsAsObject(t *testing.T) {
	//Arrange
	request := requestWithClaims(map[string]interface{}{
		"user_id": "7",
		"email":   "ada@example.com",
		"permissions": map[string]interface{}{
			"inventory:read": true,
		},
	})

	//Act
	claims, err := ExtractClaimsFromRequest(request)

	//Assert
	require.NoError(t, err)
	assert.True(t, claims.Permissions.Allows("inventory:read"))
}

func Test_ExtractClaimsFromRequest_MissingPermissionsGrantsNothing(t *testing.T) {
	//Arrange
	request := requestWithClaims(map[string]interface{}{
		"user_id": "7",
		"email":   "ada@example.com",
	})

	//Act
	claims, err := ExtractClaimsFromRequest(request)

	//Assert
	require.NoError(t, err)
	assert.False(t, claims.Permissions.Allows("inventory:read"))
}

func Test_ExtractClaimsFromRequest_MissingUserID(t *testing.T) {
	//Arrange
	request := requestWithClaims(map[string]interface{}{
		"email": "ada@example.com",
	})

	//Act
	_, err := ExtractClaimsFromRequest(request)

	//Assert
	assert.Error(t, err)
}

func Test_ExtractClaimsFromRequest_NoAuthorizer(t *testing.T) {
	//Arrange
	request := events.APIGatewayProxyRequest{}

	//Act
	_, err := ExtractClaimsFromRequest(request)

	//Assert
	assert.Error(t, err)
}
