package memstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalien/sdbp-go/pkg/transport"
)

func fillTable(t *testing.T, n int) *Table {
	t.Helper()
	store := New()
	table := store.CreateTable("users")
	for i := 0; i < n; i++ {
		table.Set(fmt.Sprintf("k%03d", i), fmt.Sprintf("v%03d", i))
	}
	require.Equal(t, n, table.Len())
	return table
}

func TestTableSetGetDelete(t *testing.T) {
	table := fillTable(t, 3)

	v, ok := table.Get("k001")
	require.True(t, ok)
	assert.Equal(t, "v001", v)

	table.Set("k001", "updated")
	v, _ = table.Get("k001")
	assert.Equal(t, "updated", v)
	assert.Equal(t, 3, table.Len())

	assert.True(t, table.Delete("k001"))
	assert.False(t, table.Delete("k001"))
	_, ok = table.Get("k001")
	assert.False(t, ok)
}

func TestListForward(t *testing.T) {
	table := fillTable(t, 10)

	tests := []struct {
		name string
		req  transport.ListPayload
		want []string
	}{
		{
			name: "all",
			req:  transport.ListPayload{Forward: true},
			want: []string{"k000", "k001", "k002", "k003", "k004", "k005", "k006", "k007", "k008", "k009"},
		},
		{
			name: "start inclusive",
			req:  transport.ListPayload{StartKey: "k007", Forward: true},
			want: []string{"k007", "k008", "k009"},
		},
		{
			name: "skip start",
			req:  transport.ListPayload{StartKey: "k007", Forward: true, Skip: true},
			want: []string{"k008", "k009"},
		},
		{
			name: "end exclusive",
			req:  transport.ListPayload{StartKey: "k002", EndKey: "k005", Forward: true},
			want: []string{"k002", "k003", "k004"},
		},
		{
			name: "count",
			req:  transport.ListPayload{StartKey: "k004", Count: 2, Forward: true},
			want: []string{"k004", "k005"},
		},
		{
			name: "skip then count",
			req:  transport.ListPayload{StartKey: "k004", Count: 2, Forward: true, Skip: true},
			want: []string{"k005", "k006"},
		},
		{
			name: "start between keys",
			req:  transport.ListPayload{StartKey: "k0055", Forward: true},
			want: []string{"k006", "k007", "k008", "k009"},
		},
		{
			name: "past the end",
			req:  transport.ListPayload{StartKey: "z", Forward: true},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.ListKeys(tt.req))
		})
	}
}

func TestListPrefix(t *testing.T) {
	store := New()
	table := store.CreateTable("t")
	for _, k := range []string{"apple", "apricot", "banana", "blueberry", "cherry"} {
		table.Set(k, k+"-v")
	}

	assert.Equal(t, []string{"banana", "blueberry"}, table.ListKeys(transport.ListPayload{Prefix: "b", Forward: true}))
	assert.Equal(t, []string{"apricot"}, table.ListKeys(transport.ListPayload{Prefix: "ap", StartKey: "apple", Skip: true, Forward: true}))
	assert.Empty(t, table.ListKeys(transport.ListPayload{Prefix: "a", StartKey: "b", Forward: true}))
	assert.Equal(t, []string{"blueberry", "banana"}, table.ListKeys(transport.ListPayload{Prefix: "b"}))
}

func TestListBackward(t *testing.T) {
	table := fillTable(t, 10)

	items := table.ListKeyValues(transport.ListPayload{StartKey: "k005", Count: 3})
	require.Len(t, items, 3)
	assert.Equal(t, transport.KeyValuePayload{Key: "k005", Value: "v005"}, items[0])
	assert.Equal(t, "k004", items[1].Key)
	assert.Equal(t, "k003", items[2].Key)

	keys := table.ListKeys(transport.ListPayload{StartKey: "k005", Skip: true, Count: 2})
	assert.Equal(t, []string{"k004", "k003"}, keys)

	keys = table.ListKeys(transport.ListPayload{StartKey: "k005", EndKey: "k002"})
	assert.Equal(t, []string{"k005", "k004", "k003"}, keys)

	keys = table.ListKeys(transport.ListPayload{Count: 2})
	assert.Equal(t, []string{"k009", "k008"}, keys)

	keys = table.ListKeys(transport.ListPayload{StartKey: "k0055", Count: 2})
	assert.Equal(t, []string{"k005", "k004"}, keys)

	keys = table.ListKeys(transport.ListPayload{StartKey: "z", Count: 1})
	assert.Equal(t, []string{"k009"}, keys)

	assert.Nil(t, table.ListKeys(transport.ListPayload{StartKey: "k000", Skip: true}))
	assert.Nil(t, table.ListKeys(transport.ListPayload{StartKey: "a"}))
}

func TestListBackwardPaging(t *testing.T) {
	table := fillTable(t, 10)

	var got []string
	req := transport.ListPayload{Count: 3}
	for {
		page := table.ListKeys(req)
		got = append(got, page...)
		if len(page) < req.Count {
			break
		}
		req.StartKey, req.Skip = page[len(page)-1], true
	}

	want := make([]string, 0, 10)
	for i := 9; i >= 0; i-- {
		want = append(want, fmt.Sprintf("k%03d", i))
	}
	assert.Equal(t, want, got)
}

func TestListBackwardPrefix(t *testing.T) {
	table := New().CreateTable("t")
	for _, k := range []string{"a1", "b1", "b2", "b3", "c1"} {
		table.Set(k, k)
	}

	assert.Equal(t, []string{"b3", "b2", "b1"}, table.ListKeys(transport.ListPayload{Prefix: "b"}))
	assert.Equal(t, []string{"b2", "b1"}, table.ListKeys(transport.ListPayload{Prefix: "b", StartKey: "b3", Skip: true}))
	assert.Nil(t, table.ListKeys(transport.ListPayload{Prefix: "b", StartKey: "a9"}))
}

func TestStoreTables(t *testing.T) {
	store := New()
	a := store.CreateTable("a")
	b := store.CreateTable("b")
	assert.Same(t, a, store.CreateTable("a"))
	assert.NotEqual(t, a.ID(), b.ID())

	got, ok := store.TableByID(b.ID())
	require.True(t, ok)
	assert.Equal(t, "b", got.Name())

	_, ok = store.Table("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, store.TableNames())
}
