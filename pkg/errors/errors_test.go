package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeInvalidOperation, "length mismatch")
	assert.Equal(t, ErrorTypeInvalidOperation, err.Type)
	assert.Equal(t, "invalid_operation: length mismatch", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeColumnNotFound, "column %q not found", "value")
	assert.Contains(t, err.Error(), `column "value" not found`)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrorTypeMemory, "allocation failed")
	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeMemory, err.Type)
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, ErrorTypeMemory, "ignored"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeInvalidOperation, "inner")
	outer := Wrap(inner, ErrorTypeInternal, "chunk 3 failed")
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.ErrorIs(t, outer, inner)
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeUnsupported, "no such function")
	assert.True(t, IsType(err, ErrorTypeUnsupported))
	assert.False(t, IsType(err, ErrorTypeMemory))

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeUnsupported), "IsType must see through wrapping")

	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeUnsupported))
	assert.False(t, IsType(nil, ErrorTypeUnsupported))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeParse, "bad cell").
		WithDetail("row", 17).
		WithDetail("column", "score")
	assert.Equal(t, 17, err.Details["row"])
	assert.Equal(t, "score", err.Details["column"])
}
