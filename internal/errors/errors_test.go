package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSSH,
		ErrExec,
		ErrTransfer,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	err := New(ErrSSH, "Cannot connect to broker-1", "Check that the host is reachable: ssh broker-1")

	require.NotNil(t, err)
	assert.Equal(t, ErrSSH, err.Code)
	assert.Equal(t, "Cannot connect to broker-1", err.Message)
	assert.Nil(t, err.Cause)

	rendered := err.Error()
	assert.True(t, strings.HasPrefix(rendered, "✗ Cannot connect to broker-1"))
	assert.Contains(t, rendered, "Check that the host is reachable")
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, "Connection failed")

	assert.Equal(t, ErrSSH, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapWithCode(t *testing.T) {
	cause := fmt.Errorf("yaml: line 3: mapping values are not allowed")
	err := WrapWithCode(cause, ErrConfig, "Invalid configuration", "Check the file syntax")

	assert.Equal(t, ErrConfig, err.Code)
	assert.ErrorIs(t, err, cause)

	rendered := err.Error()
	assert.Contains(t, rendered, "Invalid configuration")
	assert.Contains(t, rendered, "yaml: line 3")
	assert.Contains(t, rendered, "Check the file syntax")
}

func TestErrorWithoutSuggestion(t *testing.T) {
	err := New(ErrExec, "Command failed", "")

	rendered := err.Error()
	assert.Contains(t, rendered, "✗ Command failed")
	assert.NotContains(t, rendered, "\n\n", "no suggestion block expected")
}

func TestIsCode(t *testing.T) {
	err := New(ErrTransfer, "Upload failed", "")

	assert.True(t, IsCode(err, ErrTransfer))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(nil, ErrSSH))
	assert.False(t, IsCode(errors.New("plain"), ErrSSH))

	// Codes survive wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, ErrTransfer))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 3, ExitCode(NewExitError(3)))

	wrapped := fmt.Errorf("remote: %w", NewExitError(7))
	assert.Equal(t, 7, ExitCode(wrapped))
}
