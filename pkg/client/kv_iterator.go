package client

import (
	"context"

	"github.com/samber/mo"

	"github.com/scalien/sdbp-go/pkg/common/log"
)

// KeyValueIterator walks the pairs of a table one page at a time in the
// requested direction, yielding at most Count pairs. Pages keep the order the
// server returned. It is not safe for concurrent use.
type KeyValueIterator struct {
	fetch  *rangeFetch[KeyValue]
	buf    pageBuffer[KeyValue]
	state  IteratorState
	err    error
	logger log.Logger

	// remaining is the number of pairs still allowed; negative means no cap
	remaining int
}

func newKeyValueIterator(ctx context.Context, lister Lister, tableID uint64, params RangeParams, pageSize int, logger log.Logger) (*KeyValueIterator, error) {
	it := &KeyValueIterator{
		fetch: &rangeFetch[KeyValue]{
			op:      "list key values",
			tableID: tableID,
			template: ListRequest{
				EndKey:  params.EndKey,
				Prefix:  params.Prefix,
				Forward: params.Forward,
			},
			pageSize: pageSize,
			call:     lister.ListKeyValues,
		},
		buf:       newPageBuffer(func(kv KeyValue) string { return kv.Key }),
		logger:    logger,
		remaining: params.Count,
	}

	if it.remaining == 0 {
		it.state = StateExhausted
		return it, nil
	}

	page, err := it.fetch.page(ctx, params.StartKey, false, it.requestCount())
	if err != nil {
		return nil, err
	}
	it.load(page)
	return it, nil
}

// requestCount is the page size capped by the pairs still allowed
func (it *KeyValueIterator) requestCount() int {
	if it.remaining > 0 && it.remaining < it.fetch.pageSize {
		return it.remaining
	}
	return it.fetch.pageSize
}

func (it *KeyValueIterator) load(page []KeyValue) {
	it.buf.fill(page)
	if len(page) == 0 {
		it.state = StateExhausted
	} else {
		it.state = StateFresh
	}
}

// HasNext reports whether Next will return a pair. It returns false without a
// fetch once Count pairs were returned. When the current page is drained and
// was full it fetches the following page; a failed fetch ends the iteration
// and the cause is available from Err.
func (it *KeyValueIterator) HasNext(ctx context.Context) bool {
	if it.state == StateExhausted {
		return false
	}
	if it.remaining == 0 {
		it.state = StateExhausted
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
	it.logger.Debug("fetching key values after %q (forward=%v, remaining=%d)",
		it.buf.last, it.fetch.template.Forward, it.remaining)
	page, err := it.fetch.page(ctx, it.buf.last, true, it.requestCount())
	if err != nil {
		it.err = err
		it.state = StateExhausted
		it.logger.Warn("key value iteration stopped: %v", err)
		return false
	}
	it.load(page)
	return it.state != StateExhausted
}

// Next returns the pair at the cursor and advances it. It must only be called
// after HasNext returned true; otherwise it panics.
func (it *KeyValueIterator) Next() KeyValue {
	kv := it.buf.pop()
	if it.remaining > 0 {
		it.remaining--
	}
	it.state = StateDraining
	return kv
}

// Advance returns the next pair, None once the range or the cap is exhausted,
// or the error of a failed page fetch. A failure is sticky.
func (it *KeyValueIterator) Advance(ctx context.Context) (mo.Option[KeyValue], error) {
	if !it.HasNext(ctx) {
		return mo.None[KeyValue](), it.err
	}
	return mo.Some(it.Next()), nil
}

// Remove is not supported
func (it *KeyValueIterator) Remove() error {
	return ErrUnsupportedOperation
}

// State returns the lifecycle state of the iterator
func (it *KeyValueIterator) State() IteratorState {
	return it.state
}

// Err returns the error that ended the iteration, if any
func (it *KeyValueIterator) Err() error {
	return it.err
}
