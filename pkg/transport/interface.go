// Package transport carries SDBP requests between a client and a shard. A
// request is a type name plus an encoded payload; concrete transports (gRPC,
// in-process) register themselves by name and are looked up through the
// registry.
package transport

import (
	"context"
	"time"
)

// CompressionType names a wire compression codec
type CompressionType string

const (
	CompressionNone   CompressionType = "none"
	CompressionGzip   CompressionType = "gzip"
	CompressionSnappy CompressionType = "snappy"
	CompressionZstd   CompressionType = "zstd"
	CompressionLZ4    CompressionType = "lz4"
)

// TransportOptions is handed to every client and server factory. Transports
// ignore the fields that do not apply to them.
type TransportOptions struct {
	Timeout        time.Duration // connect timeout
	RetryPolicy    RetryPolicy
	Compression    CompressionType
	MaxMessageSize int
	PoolSize       int // connections per endpoint

	TLSEnabled bool
	CertFile   string
	KeyFile    string
	CAFile     string

	// Metrics receives per-request measurements. A BasicMetricsCollector is
	// used when nil.
	Metrics MetricsCollector
}

// TransportStatus is a snapshot of a client connection
type TransportStatus struct {
	Connected     bool
	LastConnected time.Time
	LastError     error
	BytesSent     uint64
	BytesReceived uint64
}

// Request is one SDBP command on its way to a shard
type Request interface {
	Type() string
	Payload() []byte
}

// Response is the shard's answer to a Request. Error is set only for
// transport level failures; application results travel in the payload.
type Response interface {
	Type() string
	Payload() []byte
	Error() error
}

// Client sends requests to a single endpoint
type Client interface {
	Connect(ctx context.Context) error
	Close() error
	IsConnected() bool
	Status() TransportStatus

	// Send blocks until the response arrives or ctx is done
	Send(ctx context.Context, request Request) (Response, error)
}

// RequestHandler answers requests on the shard side
type RequestHandler interface {
	HandleRequest(ctx context.Context, request Request) (Response, error)
}

// Server accepts requests and hands them to its RequestHandler
type Server interface {
	// Start begins serving in the background
	Start() error

	// Serve blocks until the server stops
	Serve() error

	// Stop drains in-flight requests, cutting them off when ctx expires
	Stop(ctx context.Context) error

	SetRequestHandler(handler RequestHandler)
}

type ClientFactory func(endpoint string, options TransportOptions) (Client, error)

type ServerFactory func(address string, options TransportOptions) (Server, error)

// Registry maps transport names to their factories
type Registry interface {
	RegisterClient(name string, factory ClientFactory)
	RegisterServer(name string, factory ServerFactory)
	CreateClient(name, endpoint string, options TransportOptions) (Client, error)
	CreateServer(name, address string, options TransportOptions) (Server, error)
	ListTransports() []string
}
