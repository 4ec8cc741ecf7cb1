package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrCustomerNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrDuplicateActive))
	assert.Equal(t, KindInvalidInput, KindOf(ErrInvalidID))
	assert.Equal(t, KindUnauthorized, KindOf(ErrInvalidCredentials))
	assert.Equal(t, KindForbidden, KindOf(ErrNotOwner))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrProductNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestStoreWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Store("customer lookup", cause)

	assert.Equal(t, KindStoreFailure, KindOf(err))
	assert.Equal(t, "customer lookup failed", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("sql: whatever")))
	assert.Equal(t, "customer not found", Message(ErrCustomerNotFound))
}
