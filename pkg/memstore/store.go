// Package memstore is an in-process shard: named tables kept in key order that
// answer list, table lookup and set requests the way a remote shard does. It
// backs the "memory" transport and the shell's local mode.
package memstore

import (
	"slices"
	"strings"
	"sync"

	"github.com/huandu/skiplist"

	"github.com/scalien/sdbp-go/pkg/transport"
)

// Table is an ordered string key-value table
type Table struct {
	id   uint64
	name string

	mu  sync.RWMutex
	skl *skiplist.SkipList
}

func newTable(id uint64, name string) *Table {
	return &Table{
		id:   id,
		name: name,
		skl:  skiplist.New(skiplist.String),
	}
}

// ID returns the table id
func (t *Table) ID() uint64 {
	return t.id
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Set stores a key-value pair
func (t *Table) Set(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skl.Set(key, value)
}

// Get returns the value stored under key
func (t *Table) Get(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	elem := t.skl.Get(key)
	if elem == nil {
		return "", false
	}
	return elem.Value.(string), true
}

// Delete removes key and reports whether it existed
func (t *Table) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skl.Remove(key) != nil
}

// Len returns the number of keys in the table
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skl.Len()
}

// ListKeys returns the keys selected by req, in the requested direction
func (t *Table) ListKeys(req transport.ListPayload) []string {
	items := t.list(req)
	if len(items) == 0 {
		return nil
	}
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	return keys
}

// ListKeyValues returns the pairs selected by req, in the requested direction
func (t *Table) ListKeyValues(req transport.ListPayload) []transport.KeyValuePayload {
	return t.list(req)
}

// list applies the range semantics of the list commands. Forward scans start at
// StartKey (inclusive unless Skip) and stop before EndKey; backward scans start
// at StartKey, or the last key when it is empty, and stop at or before EndKey.
// Count <= 0 means no limit.
func (t *Table) list(req transport.ListPayload) []transport.KeyValuePayload {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if req.Forward {
		return t.listForward(req)
	}
	return t.listBackward(req)
}

func (t *Table) listForward(req transport.ListPayload) []transport.KeyValuePayload {
	start := req.StartKey
	if req.Prefix > start {
		start = req.Prefix
	}

	var out []transport.KeyValuePayload
	for elem := t.skl.Find(start); elem != nil; elem = elem.Next() {
		key := elem.Key().(string)
		if req.EndKey != "" && key >= req.EndKey {
			break
		}
		if req.Prefix != "" && !strings.HasPrefix(key, req.Prefix) {
			break
		}
		if req.Skip && key == req.StartKey {
			continue
		}
		out = append(out, transport.KeyValuePayload{Key: key, Value: elem.Value.(string)})
		if req.Count > 0 && len(out) == req.Count {
			break
		}
	}
	return out
}

func (t *Table) listBackward(req transport.ListPayload) []transport.KeyValuePayload {
	var elem *skiplist.Element
	if req.StartKey == "" {
		elem = t.skl.Back()
	} else if elem = t.skl.Find(req.StartKey); elem == nil {
		elem = t.skl.Back()
	} else if key := elem.Key().(string); key > req.StartKey || (req.Skip && key == req.StartKey) {
		elem = elem.Prev()
	}

	var out []transport.KeyValuePayload
	for ; elem != nil; elem = elem.Prev() {
		key := elem.Key().(string)
		if req.EndKey != "" && key <= req.EndKey {
			break
		}
		if req.Prefix != "" && !strings.HasPrefix(key, req.Prefix) {
			if key < req.Prefix {
				break
			}
			continue
		}
		out = append(out, transport.KeyValuePayload{Key: key, Value: elem.Value.(string)})
		if req.Count > 0 && len(out) == req.Count {
			break
		}
	}
	return out
}

// Store holds the tables of one shard
type Store struct {
	mu     sync.RWMutex
	byName map[string]*Table
	byID   map[uint64]*Table
	nextID uint64
}

// New creates an empty store
func New() *Store {
	return &Store{
		byName: make(map[string]*Table),
		byID:   make(map[uint64]*Table),
		nextID: 1,
	}
}

// CreateTable returns the table with the given name, creating it if needed
func (s *Store) CreateTable(name string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.byName[name]; ok {
		return t
	}
	t := newTable(s.nextID, name)
	s.nextID++
	s.byName[name] = t
	s.byID[t.id] = t
	return t
}

// Table looks up a table by name
func (s *Store) Table(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byName[name]
	return t, ok
}

// TableByID looks up a table by id
func (s *Store) TableByID(id uint64) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	return t, ok
}

// TableNames returns the table names in sorted order
func (s *Store) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
