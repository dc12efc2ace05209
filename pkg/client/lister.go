package client

import "context"

//go:generate mockgen -destination=mocks/mock_lister.go -package=mocks github.com/scalien/sdbp-go/pkg/client Lister

// ListRequest selects one bounded page of a table
type ListRequest struct {
	StartKey string
	EndKey   string
	Prefix   string

	// Count is the page size; the result never holds more entries
	Count int

	// Forward selects ascending order. Only list key values honours it.
	Forward bool

	// Skip excludes StartKey itself from the result
	Skip bool
}

// KeyValue is a single key-value pair
type KeyValue struct {
	Key   string
	Value string
}

// Lister issues the remote list calls the iterators are built on
type Lister interface {
	// ListKeys returns at most req.Count keys
	ListKeys(ctx context.Context, tableID uint64, req ListRequest) ([]string, error)

	// ListKeyValues returns at most req.Count pairs in the direction given by
	// req.Forward
	ListKeyValues(ctx context.Context, tableID uint64, req ListRequest) ([]KeyValue, error)
}
