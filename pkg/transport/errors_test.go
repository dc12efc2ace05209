package transport

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemporaryError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("without retry hint", func(t *testing.T) {
		tempErr := NewTemporaryError(baseErr, true)
		assert.True(t, tempErr.IsTemporary())
		assert.Equal(t, "connection refused (temporary)", tempErr.Error())
		assert.Same(t, baseErr, errors.Unwrap(tempErr))
	})

	t.Run("with retry hint", func(t *testing.T) {
		tempErr := NewTemporaryErrorWithRetry(baseErr, time.Second)
		assert.True(t, IsTemporary(tempErr))
		assert.Equal(t, time.Second, RetryAfter(fmt.Errorf("send: %w", tempErr)))
		assert.Equal(t, "connection refused (temporary, retry after 1s)", tempErr.Error())
		assert.Zero(t, RetryAfter(baseErr))
	})

	t.Run("non temporary", func(t *testing.T) {
		tempErr := NewTemporaryError(baseErr, false)
		assert.False(t, IsTemporary(tempErr))
		assert.Equal(t, "connection refused (permanent)", tempErr.Error())
	})
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"temporary", NewTemporaryError(errors.New("boom"), true), true},
		{"wrapped temporary", fmt.Errorf("send: %w", NewTemporaryError(errors.New("boom"), true)), true},
		{"timeout sentinel", fmt.Errorf("send: %w", ErrTimeout), true},
		{"timeout status", NewStatusError(StatusPrimaryTimeout, "shard 3"), true},
		{"bad schema status", NewStatusError(StatusBadSchema, "no table"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTemporary(tt.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	err := NewStatusError(StatusBadSchema, "no table with name '%s'", "users")
	assert.Equal(t, "SDBP_BADSCHEMA: no table with name 'users'", err.Error())
	assert.Equal(t, StatusBadSchema, StatusOf(fmt.Errorf("lookup: %w", err)))
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusFailure, StatusOf(errors.New("other")))

	assert.Equal(t, "SDBP_NOCONNECTION", StatusNoConnection.String())
	assert.Equal(t, "<UNKNOWN>", Status(42).String())
	assert.Equal(t, "SDBP_FAILED", (&StatusError{Status: StatusFailed}).Error())
}

func TestResultHeaderErr(t *testing.T) {
	assert.NoError(t, ResultHeader{Status: StatusSuccess}.Err())

	err := ResultHeader{Status: StatusNoService, Message: "shard down"}.Err()
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, StatusNoService, statusErr.Status)
}

func TestEncodeDecode(t *testing.T) {
	req, err := EncodeRequest(TypeListKeys, ListPayload{TableID: 7, StartKey: "a", Count: 100, Skip: true})
	assert.NoError(t, err)
	assert.Equal(t, TypeListKeys, req.Type())

	var decoded ListPayload
	assert.NoError(t, Decode(req.Payload(), &decoded))
	assert.Equal(t, uint64(7), decoded.TableID)
	assert.Equal(t, "a", decoded.StartKey)
	assert.True(t, decoded.Skip)

	assert.ErrorIs(t, Decode([]byte("{"), &decoded), ErrInvalidPayload)
}
