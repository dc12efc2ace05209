package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maypok86/otter"
	"github.com/oklog/ulid/v2"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/transport"
)

// CompressionType represents a compression algorithm
type CompressionType = transport.CompressionType

// Compression options
const (
	CompressionNone   = transport.CompressionNone
	CompressionGzip   = transport.CompressionGzip
	CompressionSnappy = transport.CompressionSnappy
	CompressionZstd   = transport.CompressionZstd
	CompressionLZ4    = transport.CompressionLZ4
)

// ClientOptions configures a client
type ClientOptions struct {
	// Connection options
	Endpoint       string        // Server address
	ConnectTimeout time.Duration // Timeout for connection attempts
	RequestTimeout time.Duration // Timeout for a single request attempt
	TransportType  string        // Transport type (e.g. "grpc")
	PoolSize       int           // Connection pool size

	// Security options
	TLSEnabled bool   // Enable TLS
	CertFile   string // Client certificate file
	KeyFile    string // Client key file
	CAFile     string // CA certificate file

	// Retry options
	MaxRetries     int           // Maximum number of retries
	InitialBackoff time.Duration // Initial retry backoff
	MaxBackoff     time.Duration // Maximum retry backoff
	BackoffFactor  float64       // Backoff multiplier
	RetryJitter    float64       // Random jitter factor

	// Performance options
	Compression    CompressionType // Compression algorithm
	MaxMessageSize int             // Maximum message size

	// Iteration options
	PageSize       int // Entries per list call, 0 for DefaultPageSize
	TableCacheSize int // Resolved table names kept, 0 disables the cache

	Logger  log.Logger                 // Defaults to the package default logger
	Metrics transport.MetricsCollector // Passed to the transport
}

// DefaultClientOptions returns sensible default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Endpoint:       "localhost:7080",
		ConnectTimeout: time.Second * 5,
		RequestTimeout: time.Second * 10,
		TransportType:  "grpc",
		PoolSize:       1,
		TLSEnabled:     false,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond * 100,
		MaxBackoff:     time.Second * 2,
		BackoffFactor:  1.5,
		RetryJitter:    0.2,
		Compression:    CompressionNone,
		MaxMessageSize: 16 * 1024 * 1024, // 16MB
		PageSize:       DefaultPageSize,
		TableCacheSize: 1024,
	}
}

// Client is a connection to a shard. It implements Lister on top of the
// configured transport.
type Client struct {
	options ClientOptions
	client  transport.Client
	policy  transport.RetryPolicy
	logger  log.Logger

	// tables caches name to id lookups, nil when disabled
	tables *otter.Cache[string, uint64]
}

var _ Lister = (*Client)(nil)

// NewClient creates a new client with the given options
func NewClient(options ClientOptions) (*Client, error) {
	if options.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidOptions)
	}
	if options.PageSize < 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidOptions, options.PageSize)
	}

	policy := transport.RetryPolicy{
		MaxRetries:     options.MaxRetries,
		InitialBackoff: options.InitialBackoff,
		MaxBackoff:     options.MaxBackoff,
		BackoffFactor:  options.BackoffFactor,
		Jitter:         options.RetryJitter,
	}

	transportOpts := transport.TransportOptions{
		Timeout:        options.ConnectTimeout,
		MaxMessageSize: options.MaxMessageSize,
		Compression:    options.Compression,
		PoolSize:       options.PoolSize,
		TLSEnabled:     options.TLSEnabled,
		CertFile:       options.CertFile,
		KeyFile:        options.KeyFile,
		CAFile:         options.CAFile,
		RetryPolicy:    policy,
		Metrics:        options.Metrics,
	}

	transportClient, err := transport.GetClient(options.TransportType, options.Endpoint, transportOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport client: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	c := &Client{
		options: options,
		client:  transportClient,
		policy:  policy,
		logger:  logger.WithField("endpoint", options.Endpoint),
	}

	if options.TableCacheSize > 0 {
		cache, err := otter.MustBuilder[string, uint64](options.TableCacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create table cache: %w", err)
		}
		c.tables = &cache
	}

	return c, nil
}

// Connect establishes a connection to the server
func (c *Client) Connect(ctx context.Context) error {
	return c.client.Connect(ctx)
}

// Close closes the connection to the server
func (c *Client) Close() error {
	if c.tables != nil {
		c.tables.Clear()
	}
	return c.client.Close()
}

// IsConnected returns whether the client is connected to the server
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// responsePayload is implemented by every response payload
type responsePayload interface {
	Err() error
}

// call sends one request, retrying temporary failures, and decodes the
// response into out. A non-success status is returned as a
// *transport.StatusError.
func (c *Client) call(ctx context.Context, requestType string, payload interface{}, out responsePayload) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	req, err := transport.EncodeRequest(requestType, payload)
	if err != nil {
		return err
	}

	requestID := ulid.Make().String()
	ctx = transport.WithRequestID(ctx, requestID)
	logger := c.logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"type":       requestType,
	})

	attempt := 0
	err = RetryWithBackoff(ctx, c.policy, func(ctx context.Context) error {
		attempt++
		if c.options.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.options.RequestTimeout)
			defer cancel()
		}

		resp, err := c.client.Send(ctx, req)
		if err != nil {
			logger.Debug("attempt %d failed: %v", attempt, err)
			return fmt.Errorf("failed to send request: %w", err)
		}

		if err := transport.Decode(resp.Payload(), out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return out.Err()
	})
	if err != nil {
		return err
	}

	logger.Debug("completed after %d attempt(s)", attempt)
	return nil
}

func listPayload(tableID uint64, req ListRequest) transport.ListPayload {
	return transport.ListPayload{
		TableID:  tableID,
		StartKey: req.StartKey,
		EndKey:   req.EndKey,
		Prefix:   req.Prefix,
		Count:    req.Count,
		Forward:  req.Forward,
		Skip:     req.Skip,
	}
}

// ListKeys returns at most req.Count keys of the table
func (c *Client) ListKeys(ctx context.Context, tableID uint64, req ListRequest) ([]string, error) {
	var result transport.ListKeysResult
	if err := c.call(ctx, transport.TypeListKeys, listPayload(tableID, req), &result); err != nil {
		return nil, err
	}
	return result.Keys, nil
}

// ListKeyValues returns at most req.Count pairs of the table in the requested
// direction
func (c *Client) ListKeyValues(ctx context.Context, tableID uint64, req ListRequest) ([]KeyValue, error) {
	var result transport.ListKeyValuesResult
	if err := c.call(ctx, transport.TypeListKeyValues, listPayload(tableID, req), &result); err != nil {
		return nil, err
	}

	kvs := make([]KeyValue, len(result.Items))
	for i, item := range result.Items {
		kvs[i] = KeyValue{Key: item.Key, Value: item.Value}
	}
	return kvs, nil
}

// GetTableID resolves a table name. Resolved names are cached.
func (c *Client) GetTableID(ctx context.Context, name string) (uint64, error) {
	if c.tables != nil {
		if id, ok := c.tables.Get(name); ok {
			return id, nil
		}
	}

	var result transport.GetTableIDResult
	err := c.call(ctx, transport.TypeGetTableID, transport.GetTableIDPayload{Name: name}, &result)
	if err != nil {
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) && statusErr.Status == transport.StatusBadSchema {
			return 0, fmt.Errorf("%w: %q: %w", ErrTableNotFound, name, err)
		}
		return 0, err
	}

	if c.tables != nil {
		c.tables.Set(name, result.TableID)
	}
	return result.TableID, nil
}

// Table resolves name and returns a handle on it
func (c *Client) Table(ctx context.Context, name string) (*Table, error) {
	id, err := c.GetTableID(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.TableByID(id), nil
}

// TableByID returns a handle on the table with the given id
func (c *Client) TableByID(id uint64) *Table {
	return NewTable(c, id, c.options.PageSize, c.logger)
}

// Set stores a key-value pair
func (c *Client) Set(ctx context.Context, tableID uint64, key, value string) error {
	var result transport.SetResult
	return c.call(ctx, transport.TypeSet, transport.SetPayload{
		TableID: tableID,
		Key:     key,
		Value:   value,
	}, &result)
}
