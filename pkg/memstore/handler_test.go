package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalien/sdbp-go/pkg/transport"
)

func send(t *testing.T, c transport.Client, requestType string, payload, out interface{}) {
	t.Helper()
	req, err := transport.EncodeRequest(requestType, payload)
	require.NoError(t, err)
	resp, err := c.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, requestType, resp.Type())
	require.NoError(t, transport.Decode(resp.Payload(), out))
}

func TestMemoryTransport(t *testing.T) {
	store := New()
	store.CreateTable("users")
	Register("test-shard", store)
	defer Unregister("test-shard")

	metrics := transport.NewMetricsCollector()
	c, err := transport.GetClient(TransportName, "test-shard", transport.TransportOptions{Metrics: metrics})
	require.NoError(t, err)

	_, err = c.Send(context.Background(), transport.NewRequest(transport.TypeSet, nil))
	assert.ErrorIs(t, err, transport.ErrNotConnected)

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	var idResult transport.GetTableIDResult
	send(t, c, transport.TypeGetTableID, transport.GetTableIDPayload{Name: "users"}, &idResult)
	require.NoError(t, idResult.Err())

	for _, kv := range [][2]string{{"b", "2"}, {"a", "1"}, {"c", "3"}} {
		var setResult transport.SetResult
		send(t, c, transport.TypeSet, transport.SetPayload{TableID: idResult.TableID, Key: kv[0], Value: kv[1]}, &setResult)
		require.NoError(t, setResult.Err())
	}

	var keys transport.ListKeysResult
	send(t, c, transport.TypeListKeys, transport.ListPayload{TableID: idResult.TableID, Forward: true}, &keys)
	require.NoError(t, keys.Err())
	assert.Equal(t, []string{"a", "b", "c"}, keys.Keys)

	var kvs transport.ListKeyValuesResult
	send(t, c, transport.TypeListKeyValues, transport.ListPayload{TableID: idResult.TableID, StartKey: "c", Count: 2}, &kvs)
	require.NoError(t, kvs.Err())
	assert.Equal(t, []transport.KeyValuePayload{{Key: "c", Value: "3"}, {Key: "b", Value: "2"}}, kvs.Items)

	m := metrics.GetMetrics()
	assert.Equal(t, uint64(1), m.Connections)
	assert.Equal(t, uint64(6), m.TotalRequests)
	assert.Equal(t, uint64(3), m.RequestsByType[transport.TypeSet])
}

func TestHandlerStatuses(t *testing.T) {
	h := NewHandler(New())
	c := NewClient(h, nil)
	require.NoError(t, c.Connect(context.Background()))

	var idResult transport.GetTableIDResult
	send(t, c, transport.TypeGetTableID, transport.GetTableIDPayload{Name: "nope"}, &idResult)
	var statusErr *transport.StatusError
	require.ErrorAs(t, idResult.Err(), &statusErr)
	assert.Equal(t, transport.StatusBadSchema, statusErr.Status)

	var keys transport.ListKeysResult
	send(t, c, transport.TypeListKeys, transport.ListPayload{TableID: 42}, &keys)
	assert.Equal(t, transport.StatusBadSchema, transport.StatusOf(keys.Err()))

	_, err := c.Send(context.Background(), transport.NewRequest("drop_table", nil))
	assert.ErrorIs(t, err, transport.ErrInvalidRequest)

	_, err = c.Send(context.Background(), transport.NewRequest(transport.TypeListKeys, []byte("{")))
	assert.ErrorIs(t, err, transport.ErrInvalidPayload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.HandleRequest(ctx, transport.NewRequest(transport.TypeListKeys, []byte("{}")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnknownMemoryEndpoint(t *testing.T) {
	_, err := transport.GetClient(TransportName, "nowhere", transport.TransportOptions{})
	assert.ErrorIs(t, err, transport.ErrConnectionFailed)
}
