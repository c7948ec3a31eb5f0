package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, "DATA_ERROR", "bad input")

	assert.Equal(t, "bad input: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrInvariant, "custom message")
	got := FromError(typed)
	require.NotNil(t, got)
	assert.Equal(t, ErrInvariant.Code, got.Code)
	assert.Equal(t, "custom message", got.Message)

	plain := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
}

func TestFromErrorUnwrapsChain(t *testing.T) {
	inner := Clone(ErrData, "missing slot")
	wrapped := Wrap(inner, ErrInternal.Code, "outer context")

	// errors.As stops at the outermost typed error.
	got := FromError(wrapped)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, wrapped, inner)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrData, "specific detail")

	assert.Equal(t, "specific detail", clone.Message)
	assert.Equal(t, "malformed or missing input data", ErrData.Message)
	assert.Nil(t, Clone(nil, "ignored"))
}
