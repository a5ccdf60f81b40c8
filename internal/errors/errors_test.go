// Package errors tests for error code definitions and error handling.
package errors

import (
	"errors"
	"strings"
	"testing"
)

// TestErrorCodeValues verifies all error codes have non-empty values.
func TestErrorCodeValues(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
	}{
		{"internal", ErrInternal},
		{"invalid", ErrInvalid},
		{"not found", ErrNotFound},
		{"validation", ErrValidation},
		{"config", ErrConfig},
		{"database", ErrDatabase},
		{"queue persist", ErrQueuePersist},
		{"queue corrupt", ErrQueueCorrupt},
		{"remote unavailable", ErrRemoteUnavailable},
		{"remote rejected", ErrRemoteRejected},
		{"sync in progress", ErrSyncInProgress},
		{"sync failed", ErrSyncFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code == "" {
				t.Errorf("error code %s has empty value", tt.name)
			}
		})
	}
}

// TestAppErrorFormat verifies the error string includes the code and message.
func TestAppErrorFormat(t *testing.T) {
	err := New(ErrValidation, "price must be positive")

	if !strings.Contains(err.Error(), string(ErrValidation)) {
		t.Errorf("expected code in error string, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "price must be positive") {
		t.Errorf("expected message in error string, got %q", err.Error())
	}
}

// TestAppErrorWrap verifies wrapped errors unwrap to the original cause.
func TestAppErrorWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrRemoteUnavailable, "insert failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the wrapped cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

// TestIsCode verifies code matching on AppError values.
func TestIsCode(t *testing.T) {
	err := New(ErrQueueCorrupt, "unreadable state")

	if !Is(err, ErrQueueCorrupt) {
		t.Error("expected Is to match the error code")
	}
	if Is(err, ErrQueuePersist) {
		t.Error("expected Is to reject a different code")
	}
	if Is(errors.New("plain"), ErrQueueCorrupt) {
		t.Error("expected Is to reject non-AppError values")
	}
}
