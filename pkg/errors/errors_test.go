package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", Clone(ErrNotFound, "schedule output not found"))

	appErr := FromError(wrapped)

	require.NotNil(t, appErr)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "schedule output not found", appErr.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("disk full")

	appErr := FromError(cause)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "days must not be empty")

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "days must not be empty", clone.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrForbidden, "download link expired")
	wrapped := fmt.Errorf("open: %w", clone)

	assert.ErrorIs(t, wrapped, ErrForbidden)
	assert.NotErrorIs(t, wrapped, ErrUnauthorized)
	assert.False(t, clone.Is(errors.New("forbidden")))
}
