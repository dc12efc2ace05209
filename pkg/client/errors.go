package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/scalien/sdbp-go/pkg/transport"
)

// Errors that can occur during client operations
var (
	// ErrNotConnected indicates the client is not connected to the server
	ErrNotConnected = transport.ErrNotConnected

	// ErrInvalidOptions indicates invalid client options or range parameters
	ErrInvalidOptions = errors.New("invalid client options")

	// ErrTableNotFound indicates a table name could not be resolved
	ErrTableNotFound = errors.New("table not found")

	// ErrUnsupportedOperation is returned by Remove on every iterator
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// RemoteCallError wraps a failed list call issued while fetching a page
type RemoteCallError struct {
	Op       string
	TableID  uint64
	StartKey string
	Err      error
}

// Error returns the error string
func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s on table %d from %q: %v", e.Op, e.TableID, e.StartKey, e.Err)
}

// Unwrap returns the wrapped error
func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// IsRetryableError returns true if the error is considered retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation by the caller is final
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return transport.IsTemporary(err)
}

// RetryWithBackoff executes fn, retrying retryable errors according to policy
func RetryWithBackoff(ctx context.Context, policy transport.RetryPolicy, fn transport.RetryableFunc) error {
	return transport.WithRetryIf(ctx, policy, IsRetryableError, fn)
}
