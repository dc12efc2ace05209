package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements the Client interface for testing
type mockClient struct {
	connected bool
	endpoint  string
	options   TransportOptions
}

func (m *mockClient) Connect(ctx context.Context) error {
	m.connected = true
	return nil
}

func (m *mockClient) Close() error {
	m.connected = false
	return nil
}

func (m *mockClient) IsConnected() bool {
	return m.connected
}

func (m *mockClient) Status() TransportStatus {
	return TransportStatus{Connected: m.connected}
}

func (m *mockClient) Send(ctx context.Context, request Request) (Response, error) {
	if !m.connected {
		return nil, ErrNotConnected
	}
	return NewResponse(request.Type(), []byte("mock response"), nil), nil
}

func mockClientFactory(endpoint string, options TransportOptions) (Client, error) {
	return &mockClient{endpoint: endpoint, options: options}, nil
}

// mockServer implements the Server interface for testing
type mockServer struct {
	started bool
	address string
	handler RequestHandler
}

func (m *mockServer) Start() error {
	m.started = true
	return nil
}

func (m *mockServer) Serve() error {
	m.started = true
	return nil
}

func (m *mockServer) Stop(ctx context.Context) error {
	m.started = false
	return nil
}

func (m *mockServer) SetRequestHandler(handler RequestHandler) {
	m.handler = handler
}

func mockServerFactory(address string, options TransportOptions) (Server, error) {
	return &mockServer{address: address}, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterClient("mock", mockClientFactory)
	registry.RegisterServer("mock", mockServerFactory)
	registry.RegisterClient("another", mockClientFactory)

	assert.Equal(t, []string{"another", "mock"}, registry.ListTransports())

	client, err := registry.CreateClient("mock", "localhost:8080", TransportOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.False(t, client.IsConnected())

	_, err = client.Send(context.Background(), NewRequest(TypeListKeys, nil))
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.IsConnected())

	resp, err := client.Send(context.Background(), NewRequest(TypeListKeys, nil))
	require.NoError(t, err)
	assert.Equal(t, TypeListKeys, resp.Type())

	server, err := registry.CreateServer("mock", "localhost:8080", TransportOptions{})
	require.NoError(t, err)
	require.NoError(t, server.Start())
	assert.True(t, server.(*mockServer).started)

	_, err = registry.CreateClient("nonexistent", "", TransportOptions{})
	assert.ErrorIs(t, err, ErrUnknownTransport)
	assert.ErrorContains(t, err, `client "nonexistent" (available: [another mock])`)

	_, err = registry.CreateServer("another", "", TransportOptions{})
	assert.ErrorIs(t, err, ErrUnknownTransport)
}
