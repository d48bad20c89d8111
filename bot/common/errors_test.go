package common

import (
	"errors"
	"fmt"
	"testing"

	"logiq/service"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponse(t *testing.T) {
	t.Run("user error keeps its message", func(t *testing.T) {
		resp := ErrorResponse(NewUserError("Invalid Amount", "Amount must be between 1 and 100"))
		assert.True(t, resp.Ephemeral)
		assert.Contains(t, resp.Embed.Title, "Invalid Amount")
		assert.Equal(t, "Amount must be between 1 and 100", resp.Embed.Description)
	})

	t.Run("persistence unavailable degrades", func(t *testing.T) {
		resp := ErrorResponse(fmt.Errorf("get guild: %w", service.ErrPersistenceUnavailable))
		assert.Contains(t, resp.Embed.Title, "Database Unavailable")
	})

	t.Run("internal errors stay generic", func(t *testing.T) {
		resp := ErrorResponse(errors.New("connection reset by peer"))
		assert.NotContains(t, resp.Embed.Description, "connection reset")
	})
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(NewUserError("Error", "bad")))
	assert.True(t, IsUserError(service.ErrPersistenceUnavailable))
	assert.True(t, IsUserError(fmt.Errorf("purge: %w", ErrMissingPermissions)))
	assert.False(t, IsUserError(NewSystemError(errors.New("boom"), "failed")))
	assert.False(t, IsUserError(errors.New("boom")))
}

func TestErrorResponse_ServiceSentinels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"insufficient balance", fmt.Errorf("pay: %w", service.ErrInsufficientBalance), "Insufficient Balance"},
		{"self transfer", service.ErrSelfTransfer, "Invalid Recipient"},
		{"missing item", fmt.Errorf("buy: %w", service.ErrNotFound), "Not Found"},
		{"invalid update", fmt.Errorf("%w: prefix cannot be empty", service.ErrInvalidUpdate), "Invalid Value"},
		{"missing permissions", fmt.Errorf("%w: 403", ErrMissingPermissions), "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsUserError(tt.err))
			assert.Contains(t, ErrorResponse(tt.err).Embed.Title, tt.title)
		})
	}
}
