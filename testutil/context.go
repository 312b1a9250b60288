package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds test contexts so a hung promise fails the test
// instead of stalling the run.
const DefaultTimeout = 10 * time.Second

// TestContext returns a context that is canceled when the test ends or
// after DefaultTimeout.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	return TestContextWithTimeout(t, DefaultTimeout)
}

// TestContextWithTimeout returns a context with a timeout.
// The context is also canceled when the test ends.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// CancelableContext returns a context and cancel function.
// The context is automatically canceled when the test ends if not canceled earlier.
func CancelableContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx, cancel
}
