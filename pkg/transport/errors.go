package transport

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrServerStopped      = errors.New("server is not running")
	ErrUnknownTransport   = errors.New("unknown transport")
)

// TemporaryError marks a failure a later attempt may not hit again, such as an
// unreachable shard or an overloaded server
type TemporaryError struct {
	Err error

	// RetryAfter is the wait the remote side asked for, zero when it gave none
	RetryAfter time.Duration

	permanent bool
}

func (e *TemporaryError) Error() string {
	switch {
	case e.permanent:
		return fmt.Sprintf("%v (permanent)", e.Err)
	case e.RetryAfter > 0:
		return fmt.Sprintf("%v (temporary, retry after %s)", e.Err, e.RetryAfter)
	default:
		return fmt.Sprintf("%v (temporary)", e.Err)
	}
}

func (e *TemporaryError) Unwrap() error {
	return e.Err
}

// IsTemporary reports whether retrying may succeed
func (e *TemporaryError) IsTemporary() bool {
	return !e.permanent
}

// NewTemporaryError wraps err. A false isTemp records that the failure was
// inspected and found permanent.
func NewTemporaryError(err error, isTemp bool) *TemporaryError {
	return &TemporaryError{Err: err, permanent: !isTemp}
}

// NewTemporaryErrorWithRetry wraps err as temporary with a wait hint
func NewTemporaryErrorWithRetry(err error, retryAfter time.Duration) *TemporaryError {
	return &TemporaryError{Err: err, RetryAfter: retryAfter}
}

// IsTemporary checks if an error is worth retrying. Timeout statuses reported
// by the remote side count as temporary.
func IsTemporary(err error) bool {
	var tempErr *TemporaryError
	if errors.As(err, &tempErr) {
		return tempErr.IsTemporary()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status.IsTimeout()
	}
	return errors.Is(err, ErrTimeout)
}

// RetryAfter extracts the wait hint from an error, zero when there is none
func RetryAfter(err error) time.Duration {
	var tempErr *TemporaryError
	if errors.As(err, &tempErr) && tempErr.IsTemporary() {
		return tempErr.RetryAfter
	}
	return 0
}
