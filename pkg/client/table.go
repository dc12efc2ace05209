package client

import (
	"context"

	"github.com/scalien/sdbp-go/pkg/common/log"
)

// Table is a handle on one remote table. Iterators created from it are
// independent of each other.
type Table struct {
	lister   Lister
	id       uint64
	pageSize int
	logger   log.Logger
}

// NewTable creates a table handle that lists through lister. A non-positive
// page size selects DefaultPageSize; a nil logger selects the default logger.
func NewTable(lister Lister, id uint64, pageSize int, logger log.Logger) *Table {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Table{
		lister:   lister,
		id:       id,
		pageSize: pageSize,
		logger:   logger.WithField("table_id", id),
	}
}

// ID returns the table id
func (t *Table) ID() uint64 {
	return t.id
}

// PageSize returns the default page size of iterators on this table
func (t *Table) PageSize() int {
	return t.pageSize
}

func (t *Table) effectivePageSize(params RangeParams) int {
	if params.PageSize > 0 {
		return params.PageSize
	}
	return t.pageSize
}

// Keys returns an iterator over the keys selected by params, ascending. The
// first page is fetched before returning; its failure is returned as a
// *RemoteCallError.
func (t *Table) Keys(ctx context.Context, params RangeParams) (*KeyIterator, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return newKeyIterator(ctx, t.lister, t.id, params, t.effectivePageSize(params), t.logger)
}

// KeyValues returns an iterator over the pairs selected by params in the
// direction of params.Forward, yielding at most params.Count pairs. The first
// page is fetched before returning unless Count is zero.
func (t *Table) KeyValues(ctx context.Context, params RangeParams) (*KeyValueIterator, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return newKeyValueIterator(ctx, t.lister, t.id, params, t.effectivePageSize(params), t.logger)
}
