package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormat(t *testing.T) {
	withCause := NewAppError(CodeCacheError, "open store", errors.New("disk full"))
	assert.Equal(t, "CACHE_ERROR: open store: disk full", withCause.Error())

	bare := NewAppError(CodeConfigError, "missing key", nil)
	assert.Equal(t, "CONFIG_ERROR: missing key", bare.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAcquisitionError("every strategy produced nothing", ErrEmptyText)
	assert.ErrorIs(t, err, ErrEmptyText)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &appErr)
	assert.Equal(t, CodeAcquisitionFailed, appErr.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnsupportedFormat, CodeOf(NewUnsupportedFormatError("no handler for .xyz")))
	assert.Equal(t, CodeExtractionFailed, CodeOf(WrapError(NewExtractionError("no parseable mapping", nil), "field stage")))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestIsAcquisitionError(t *testing.T) {
	assert.True(t, IsAcquisitionError(NewAcquisitionError("unreadable scan", nil)))
	assert.True(t, IsAcquisitionError(NewUnsupportedFormatError("unsupported file extension: .exe")))
	assert.False(t, IsAcquisitionError(NewExtractionError("bad payload", nil)))
	assert.False(t, IsAcquisitionError(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "loading templates"))

	err := WrapError(ErrInvalidInput, "parsing flags")
	assert.EqualError(t, err, "parsing flags: invalid input")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
