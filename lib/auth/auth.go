package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// Wildcard grants every permission when present in a permission set.
const Wildcard = "*"

// PermissionSet maps permission names to granted/denied. It is carried in
// the caller's JWT claims and checked before any repository call.
type PermissionSet map[string]bool

// Allows reports whether the set grants the given permission, honoring the
// wildcard entry.
func (p PermissionSet) Allows(permission string) bool {
	if p[Wildcard] {
		return true
	}
	return p[permission]
}

// Claims represents the JWT claims extracted from the API Gateway authorizer context
type Claims struct {
	UserID      int64         `json:"user_id"`
	Email       string        `json:"email"`
	Permissions PermissionSet `json:"permissions"`
}

// ExtractClaimsFromRequest extracts and parses JWT claims from an API Gateway request
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	// Get claims from authorizer context
	var claimsMap map[string]interface{}
	var ok bool

	// Try different possible claim locations in the authorizer context
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}

	// If claims not found, try direct access to authorizer (some API Gateway configurations)
	if !ok {
		claimsMap = request.RequestContext.Authorizer
		ok = (claimsMap != nil)
	}

	if !ok || claimsMap == nil {
		return nil, fmt.Errorf("claims not found in authorizer context")
	}

	userID, err := parseInt64Claim(claimsMap, "user_id")
	if err != nil {
		return nil, err
	}

	email, ok := claimsMap["email"].(string)
	if !ok {
		return nil, fmt.Errorf("email not found or invalid in claims")
	}

	permissions, err := parsePermissionsClaim(claimsMap)
	if err != nil {
		return nil, err
	}

	return &Claims{
		UserID:      userID,
		Email:       email,
		Permissions: permissions,
	}, nil
}

// parseInt64Claim reads a numeric claim that may arrive as a string or a
// JSON number (float64).
func parseInt64Claim(claimsMap map[string]interface{}, key string) (int64, error) {
	value, exists := claimsMap[key]
	if !exists {
		return 0, fmt.Errorf("%s not found in claims", key)
	}

	if str, ok := value.(string); ok {
		parsed, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s string: %w", key, err)
		}
		return parsed, nil
	}
	if f, ok := value.(float64); ok {
		return int64(f), nil
	}
	return 0, fmt.Errorf("%s has unexpected type", key)
}

// parsePermissionsClaim reads the permissions claim, which the authorizer
// forwards either as a JSON string or as an already-decoded object.
func parsePermissionsClaim(claimsMap map[string]interface{}) (PermissionSet, error) {
	value, exists := claimsMap["permissions"]
	if !exists {
		// Absent permissions means nothing is granted
		return PermissionSet{}, nil
	}

	switch v := value.(type) {
	case string:
		permissions := PermissionSet{}
		if err := json.Unmarshal([]byte(v), &permissions); err != nil {
			return nil, fmt.Errorf("failed to parse permissions string: %w", err)
		}
		return permissions, nil
	case map[string]interface{}:
		permissions := PermissionSet{}
		for name, granted := range v {
			if b, ok := granted.(bool); ok {
				permissions[name] = b
			}
		}
		return permissions, nil
	default:
		return nil, fmt.Errorf("permissions has unexpected type")
	}
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
