package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewProducesUsableLogger(t *testing.T) {
	logger, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("test entry", zap.String("component", "logging_test"))
}

func TestNamedWithNilBase(t *testing.T) {
	logger := Named(nil, "sync")
	if logger == nil {
		t.Fatal("expected nop logger for nil base")
	}
	// Must not panic.
	logger.Info("discarded")
}

func TestMustPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Must to panic on error")
		}
	}()
	Must(nil, errTest)
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
