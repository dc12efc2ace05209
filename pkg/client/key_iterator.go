package client

import (
	"context"
	"slices"

	"github.com/samber/mo"

	"github.com/scalien/sdbp-go/pkg/common/log"
)

// KeyIterator walks the keys of a table one page at a time. Every page is
// sorted ascending before it is exposed. It is not safe for concurrent use.
type KeyIterator struct {
	fetch  *rangeFetch[string]
	buf    pageBuffer[string]
	state  IteratorState
	err    error
	logger log.Logger
}

func newKeyIterator(ctx context.Context, lister Lister, tableID uint64, params RangeParams, pageSize int, logger log.Logger) (*KeyIterator, error) {
	it := &KeyIterator{
		fetch: &rangeFetch[string]{
			op:      "list keys",
			tableID: tableID,
			template: ListRequest{
				EndKey:  params.EndKey,
				Prefix:  params.Prefix,
				Forward: true,
			},
			pageSize: pageSize,
			call:     lister.ListKeys,
			prepare:  sortedKeys,
		},
		buf:    newPageBuffer(func(k string) string { return k }),
		logger: logger,
	}

	page, err := it.fetch.page(ctx, params.StartKey, false, pageSize)
	if err != nil {
		return nil, err
	}
	it.load(page)
	return it, nil
}

// sortedKeys returns a sorted copy of a key page, leaving the lister's slice
// untouched
func sortedKeys(page []string) []string {
	page = slices.Clone(page)
	slices.Sort(page)
	return page
}

func (it *KeyIterator) load(page []string) {
	it.buf.fill(page)
	if len(page) == 0 {
		it.state = StateExhausted
	} else {
		it.state = StateFresh
	}
}

// HasNext reports whether Next will return a key. When the current page is
// drained and was full it fetches the following page. A failed fetch ends the
// iteration; the cause is available from Err.
func (it *KeyIterator) HasNext(ctx context.Context) bool {
	if it.state == StateExhausted {
		return false
	}
	if !it.buf.drained() {
		return true
	}
	if it.buf.size < it.fetch.pageSize {
		it.state = StateExhausted
		return false
	}

	it.state = StateRefilling
	it.logger.Debug("fetching keys after %q", it.buf.last)
	page, err := it.fetch.page(ctx, it.buf.last, true, it.fetch.pageSize)
	if err != nil {
		it.err = err
		it.state = StateExhausted
		it.logger.Warn("key iteration stopped: %v", err)
		return false
	}
	it.load(page)
	return it.state != StateExhausted
}

// Next returns the key at the cursor and advances it. It must only be called
// after HasNext returned true; otherwise it panics.
func (it *KeyIterator) Next() string {
	key := it.buf.pop()
	it.state = StateDraining
	return key
}

// Advance returns the next key, None once the range is exhausted, or the error
// of a failed page fetch. A failure is sticky.
func (it *KeyIterator) Advance(ctx context.Context) (mo.Option[string], error) {
	if !it.HasNext(ctx) {
		return mo.None[string](), it.err
	}
	return mo.Some(it.Next()), nil
}

// Remove is not supported
func (it *KeyIterator) Remove() error {
	return ErrUnsupportedOperation
}

// State returns the lifecycle state of the iterator
func (it *KeyIterator) State() IteratorState {
	return it.state
}

// Err returns the error that ended the iteration, if any
func (it *KeyIterator) Err() error {
	return it.err
}
