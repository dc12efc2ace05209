package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scalien/sdbp-go/pkg/transport"
)

// TransportName is the name the in-process transport registers under
const TransportName = "memory"

var (
	storesMu sync.RWMutex
	stores   = make(map[string]*Store)
)

func init() {
	transport.RegisterClientTransport(TransportName, newTransportClient)
}

// Register makes store reachable through the memory transport under endpoint
func Register(endpoint string, store *Store) {
	storesMu.Lock()
	defer storesMu.Unlock()
	stores[endpoint] = store
}

// Unregister removes a store registered with Register
func Unregister(endpoint string) {
	storesMu.Lock()
	defer storesMu.Unlock()
	delete(stores, endpoint)
}

func lookup(endpoint string) (*Store, bool) {
	storesMu.RLock()
	defer storesMu.RUnlock()
	store, ok := stores[endpoint]
	return store, ok
}

func newTransportClient(endpoint string, options transport.TransportOptions) (transport.Client, error) {
	store, ok := lookup(endpoint)
	if !ok {
		return nil, fmt.Errorf("%w: no memory store registered at %q", transport.ErrConnectionFailed, endpoint)
	}
	return NewClient(NewHandler(store), options.Metrics), nil
}

// Client is a transport.Client that hands requests straight to a handler
type Client struct {
	handler transport.RequestHandler
	metrics transport.MetricsCollector

	mu     sync.RWMutex
	status transport.TransportStatus
}

var _ transport.Client = (*Client)(nil)

// NewClient creates an in-process client. A nil metrics collector gets a
// BasicMetricsCollector.
func NewClient(handler transport.RequestHandler, metrics transport.MetricsCollector) *Client {
	if metrics == nil {
		metrics = transport.NewMetricsCollector()
	}
	return &Client{handler: handler, metrics: metrics}
}

// Connect marks the client connected
func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.status.Connected = true
	c.status.LastConnected = time.Now()
	c.mu.Unlock()
	c.metrics.RecordConnection(true)
	return nil
}

// Close marks the client disconnected
func (c *Client) Close() error {
	c.mu.Lock()
	c.status.Connected = false
	c.mu.Unlock()
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.Connected
}

// Status returns the current status of the connection
func (c *Client) Status() transport.TransportStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Send passes the request to the handler
func (c *Client) Send(ctx context.Context, request transport.Request) (transport.Response, error) {
	if !c.IsConnected() {
		return nil, transport.ErrNotConnected
	}

	start := time.Now()
	c.metrics.RecordSend(len(request.Payload()))

	resp, err := c.handler.HandleRequest(ctx, request)
	c.metrics.RecordRequest(request.Type(), start, err)

	c.mu.Lock()
	c.status.BytesSent += uint64(len(request.Payload()))
	if resp != nil {
		c.status.BytesReceived += uint64(len(resp.Payload()))
	}
	c.status.LastError = err
	c.mu.Unlock()

	if resp != nil {
		c.metrics.RecordReceive(len(resp.Payload()))
	}
	return resp, err
}
