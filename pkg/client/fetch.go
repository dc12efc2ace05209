package client

import (
	"context"

	"github.com/gammazero/deque"
)

// rangeFetch issues single bounded page requests against one table. The
// request template carries the parts of the range that never change.
type rangeFetch[T any] struct {
	op       string
	tableID  uint64
	template ListRequest
	pageSize int
	call     func(ctx context.Context, tableID uint64, req ListRequest) ([]T, error)

	// prepare, when set, reorders a fetched page before it is truncated.
	// It must not modify the slice it is given.
	prepare func([]T) []T
}

// page fetches at most count entries from startKey. Failures are wrapped in a
// RemoteCallError. Pages longer than count are truncated after prepare ran.
func (f *rangeFetch[T]) page(ctx context.Context, startKey string, skip bool, count int) ([]T, error) {
	req := f.template
	req.StartKey = startKey
	req.Skip = skip
	req.Count = count

	items, err := f.call(ctx, f.tableID, req)
	if err != nil {
		return nil, &RemoteCallError{
			Op:       f.op,
			TableID:  f.tableID,
			StartKey: startKey,
			Err:      err,
		}
	}
	if f.prepare != nil {
		items = f.prepare(items)
	}
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}

// pageBuffer holds the unread part of the most recent page. The read cursor
// is size minus the number of pending items.
type pageBuffer[T any] struct {
	items *deque.Deque[T]
	keyOf func(T) string

	// size is the length of the most recent page
	size int
	// last is the key of the final entry of the most recent non-empty page
	last string
}

func newPageBuffer[T any](keyOf func(T) string) pageBuffer[T] {
	return pageBuffer[T]{
		items: deque.New[T](0),
		keyOf: keyOf,
	}
}

// fill replaces the buffer content with page
func (b *pageBuffer[T]) fill(page []T) {
	b.items.Clear()
	for _, item := range page {
		b.items.PushBack(item)
	}
	b.size = len(page)
	if len(page) > 0 {
		b.last = b.keyOf(page[len(page)-1])
	}
}

// pop returns the entry at the cursor and advances it. It panics when the
// buffer is drained.
func (b *pageBuffer[T]) pop() T {
	return b.items.PopFront()
}

func (b *pageBuffer[T]) drained() bool {
	return b.items.Len() == 0
}

func (b *pageBuffer[T]) cursor() int {
	return b.size - b.items.Len()
}
