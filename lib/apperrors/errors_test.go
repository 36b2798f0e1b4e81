package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KindOf_TypedErrors(t *testing.T) {
	//Arrange
	cases := []struct {
		err      error
		expected Kind
	}{
		{NotFound("location", 42), KindNotFound},
		{InvalidOperation("parent item %d is already at location %q", 1, "Warehouse A"), KindInvalidOperation},
		{Conflict("cannot delete location: %d item(s) assigned", 3), KindConflict},
		{Forbidden("inventory:write"), KindForbidden},
		{StorageFailure("failed to commit move", errors.New("connection reset")), KindStorageFailure},
	}

	for _, c := range cases {
		//Act & Assert
		assert.Equal(t, c.expected, KindOf(c.err))
		assert.True(t, IsKind(c.err, c.expected))
	}
}

func Test_KindOf_WrappedError(t *testing.T) {
	//Arrange
	inner := NotFound("parent item", 7)
	wrapped := fmt.Errorf("move failed: %w", inner)

	//Act & Assert
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func Test_KindOf_PlainErrorIsStorageFailure(t *testing.T) {
	//Act & Assert
	assert.Equal(t, KindStorageFailure, KindOf(errors.New("boom")))
}

func Test_IsKind_NilError(t *testing.T) {
	//Act & Assert
	assert.False(t, IsKind(nil, KindNotFound))
}

func Test_Error_MessageFormatting(t *testing.T) {
	//Arrange
	err := NotFound("location", 42)

	//Act & Assert
	assert.Equal(t, "location 42 not found", err.Error())
}

func Test_StorageFailure_UnwrapsCause(t *testing.T) {
	//Arrange
	cause := errors.New("disk full")
	err := StorageFailure("failed to record move history", cause)

	//Act & Assert
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "disk full")
}

func Test_Forbidden_NamesPermission(t *testing.T) {
	//Arrange
	err := Forbidden("inventory:delete")

	//Act & Assert
	assert.Contains(t, err.Error(), `"inventory:delete"`)
}
