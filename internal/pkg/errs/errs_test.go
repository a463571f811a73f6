package errs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewErrorKnownCode(t *testing.T) {
	err := NewError(ErrMissingRole)
	require.Equal(t, ErrMissingRole, err.Code)
	require.Equal(t, "Missing 'role' field in request.", err.Message)
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrWeatherNotFound, "Oslo")
	require.Equal(t, "Weather data not available for location: Oslo", err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(999999)
	require.Equal(t, ErrUnknown, err.Code)
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	NewError(ErrBatchFileNotFound, "/tmp/a.json")
	err := NewError(ErrBatchFileNotFound, "/tmp/b.json")
	require.Contains(t, err.Message, "/tmp/b.json")
	require.NotContains(t, err.Message, "/tmp/a.json")
}
