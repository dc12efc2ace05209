package transport

import (
	"encoding/json"
	"fmt"
)

// ListPayload is the request payload for list_keys and list_key_values
type ListPayload struct {
	TableID  uint64 `json:"table_id"`
	StartKey string `json:"start_key"`
	EndKey   string `json:"end_key"`
	Prefix   string `json:"prefix"`
	Count    int    `json:"count"`
	Forward  bool   `json:"forward"`
	Skip     bool   `json:"skip"`
}

// ResultHeader is embedded in every response payload
type ResultHeader struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Err returns a StatusError for non-success results
func (h ResultHeader) Err() error {
	if h.Status == StatusSuccess {
		return nil
	}
	return &StatusError{Status: h.Status, Message: h.Message}
}

// ListKeysResult is the response payload for list_keys
type ListKeysResult struct {
	ResultHeader
	Keys []string `json:"keys"`
}

// KeyValuePayload is a single pair inside a list_key_values response
type KeyValuePayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ListKeyValuesResult is the response payload for list_key_values. Items are
// ordered in the direction requested.
type ListKeyValuesResult struct {
	ResultHeader
	Items []KeyValuePayload `json:"items"`
}

// GetTableIDPayload is the request payload for get_table_id
type GetTableIDPayload struct {
	Name string `json:"name"`
}

// GetTableIDResult is the response payload for get_table_id
type GetTableIDResult struct {
	ResultHeader
	TableID uint64 `json:"table_id"`
}

// SetPayload is the request payload for set
type SetPayload struct {
	TableID uint64 `json:"table_id"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// SetResult is the response payload for set
type SetResult struct {
	ResultHeader
}

// EncodeRequest marshals a payload into a request of the given type
func EncodeRequest(requestType string, payload interface{}) (Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", requestType, err)
	}
	return NewRequest(requestType, data), nil
}

// EncodeResponse marshals a payload into a response of the given type
func EncodeResponse(responseType string, payload interface{}) (Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s response: %w", responseType, err)
	}
	return NewResponse(responseType, data, nil), nil
}

// Decode unmarshals a request or response payload
func Decode(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
