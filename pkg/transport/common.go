package transport

import (
	"errors"
	"fmt"
)

// Standard request/response type constants
const (
	TypeListKeys      = "list_keys"
	TypeListKeyValues = "list_key_values"
	TypeGetTableID    = "get_table_id"
	TypeSet           = "set"
	TypeError         = "error"
)

// Common errors
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNotConnected   = errors.New("not connected to server")
	ErrTimeout        = errors.New("operation timed out")
)

// Status is the command status reported by a shard or controller.
type Status int

// Status codes as reported by the SDBP protocol.
const (
	StatusSuccess        Status = 0
	StatusAPIError       Status = -1
	StatusPartial        Status = -101
	StatusFailure        Status = -102
	StatusNoMaster       Status = -201
	StatusNoConnection   Status = -202
	StatusNoPrimary      Status = -203
	StatusMasterTimeout  Status = -301
	StatusGlobalTimeout  Status = -302
	StatusPrimaryTimeout Status = -303
	StatusNoService      Status = -401
	StatusFailed         Status = -402
	StatusBadSchema      Status = -403
)

// String returns the protocol name of the status
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SDBP_SUCCESS"
	case StatusAPIError:
		return "SDBP_API_ERROR"
	case StatusPartial:
		return "SDBP_PARTIAL"
	case StatusFailure:
		return "SDBP_FAILURE"
	case StatusNoMaster:
		return "SDBP_NOMASTER"
	case StatusNoConnection:
		return "SDBP_NOCONNECTION"
	case StatusNoPrimary:
		return "SDBP_NOPRIMARY"
	case StatusMasterTimeout:
		return "SDBP_MASTER_TIMEOUT"
	case StatusGlobalTimeout:
		return "SDBP_GLOBAL_TIMEOUT"
	case StatusPrimaryTimeout:
		return "SDBP_PRIMARY_TIMEOUT"
	case StatusNoService:
		return "SDBP_NOSERVICE"
	case StatusFailed:
		return "SDBP_FAILED"
	case StatusBadSchema:
		return "SDBP_BADSCHEMA"
	default:
		return "<UNKNOWN>"
	}
}

// IsTimeout reports whether the status is one of the timeout statuses
func (s Status) IsTimeout() bool {
	return s == StatusMasterTimeout || s == StatusGlobalTimeout || s == StatusPrimaryTimeout
}

// StatusError is returned when the remote side answers with a non-success status
type StatusError struct {
	Status  Status
	Message string
}

// Error returns the error string
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status.String()
}

// NewStatusError creates a new status error
func NewStatusError(status Status, format string, args ...interface{}) *StatusError {
	return &StatusError{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusOf extracts the wire status from an error. Nil maps to StatusSuccess and
// errors without a status map to StatusFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return StatusFailure
}

// BasicRequest implements the Request interface
type BasicRequest struct {
	RequestType string
	RequestData []byte
}

// Type returns the type of the request
func (r *BasicRequest) Type() string {
	return r.RequestType
}

// Payload returns the payload of the request
func (r *BasicRequest) Payload() []byte {
	return r.RequestData
}

// NewRequest creates a new request with the given type and payload
func NewRequest(requestType string, data []byte) Request {
	return &BasicRequest{
		RequestType: requestType,
		RequestData: data,
	}
}

// BasicResponse implements the Response interface
type BasicResponse struct {
	ResponseType string
	ResponseData []byte
	ResponseErr  error
}

// Type returns the type of the response
func (r *BasicResponse) Type() string {
	return r.ResponseType
}

// Payload returns the payload of the response
func (r *BasicResponse) Payload() []byte {
	return r.ResponseData
}

// Error returns any error associated with the response
func (r *BasicResponse) Error() error {
	return r.ResponseErr
}

// NewResponse creates a new response with the given type, payload, and error
func NewResponse(responseType string, data []byte, err error) Response {
	return &BasicResponse{
		ResponseType: responseType,
		ResponseData: data,
		ResponseErr:  err,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err error) Response {
	var msg []byte
	if err != nil {
		msg = []byte(err.Error())
	}
	return &BasicResponse{
		ResponseType: TypeError,
		ResponseData: msg,
		ResponseErr:  err,
	}
}
