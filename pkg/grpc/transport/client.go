package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/transport"
)

// GRPCClient implements the transport.Client interface for gRPC
type GRPCClient struct {
	endpoint string
	options  transport.TransportOptions
	metrics  transport.MetricsCollector
	logger   log.Logger

	mu       sync.RWMutex
	pool     *connectionPool
	status   transport.TransportStatus
	callOpts []grpc.CallOption
}

var _ transport.Client = (*GRPCClient)(nil)

// NewGRPCClient creates a new gRPC client
func NewGRPCClient(endpoint string, options transport.TransportOptions) (transport.Client, error) {
	metrics := options.Metrics
	if metrics == nil {
		metrics = transport.NewMetricsCollector()
	}

	var callOpts []grpc.CallOption
	if name := compressorName(options.Compression); name != "" {
		callOpts = append(callOpts, grpc.UseCompressor(name))
	}

	return &GRPCClient{
		endpoint: endpoint,
		options:  options,
		metrics:  metrics,
		logger:   log.GetDefaultLogger().WithField("component", "grpc_client"),
		callOpts: callOpts,
	}, nil
}

func (c *GRPCClient) dialOptions() ([]grpc.DialOption, error) {
	dialOptions := []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                defaultKeepAliveTime,
			Timeout:             defaultKeepAlivePolicy,
			PermitWithoutStream: true,
		}),
	}

	if c.options.MaxMessageSize > 0 {
		dialOptions = append(dialOptions, grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(c.options.MaxMessageSize),
			grpc.MaxCallSendMsgSize(c.options.MaxMessageSize),
		))
	}

	if c.options.TLSEnabled {
		tlsConfig, err := LoadClientTLSConfig(c.options.CertFile, c.options.KeyFile, c.options.CAFile)
		if err != nil {
			return nil, err
		}
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return dialOptions, nil
}

// Connect establishes the pool of connections to the server
func (c *GRPCClient) Connect(ctx context.Context) error {
	dialOptions, err := c.dialOptions()
	if err != nil {
		c.metrics.RecordConnection(false)
		return fmt.Errorf("%w: %v", transport.ErrConnectionFailed, err)
	}

	timeout := c.options.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := newConnectionPool(dialCtx, c.endpoint, c.options.PoolSize, dialOptions)
	if err != nil {
		c.metrics.RecordConnection(false)
		c.setStatus(false, err)
		return fmt.Errorf("%w: %v", transport.ErrConnectionFailed, err)
	}

	c.mu.Lock()
	old := c.pool
	c.pool = pool
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	c.metrics.RecordConnection(true)
	c.setStatus(true, nil)
	c.logger.Info("connected to %s with %d connection(s)", c.endpoint, pool.Size())
	return nil
}

// Close closes the connection
func (c *GRPCClient) Close() error {
	c.mu.Lock()
	pool := c.pool
	c.pool = nil
	c.mu.Unlock()

	c.setStatus(false, nil)
	if pool != nil {
		return pool.Close()
	}
	return nil
}

// IsConnected returns whether the client is connected
func (c *GRPCClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.Connected
}

// Status returns the current status of the connection
func (c *GRPCClient) Status() transport.TransportStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// setStatus updates the client status
func (c *GRPCClient) setStatus(connected bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Connected = connected
	c.status.LastError = err

	if connected {
		c.status.LastConnected = time.Now()
	}
}

// Send sends a request and waits for a response
func (c *GRPCClient) Send(ctx context.Context, request transport.Request) (transport.Response, error) {
	c.mu.RLock()
	pool := c.pool
	c.mu.RUnlock()
	if pool == nil {
		return nil, transport.ErrNotConnected
	}

	startTime := time.Now()
	requestType := request.Type()
	payload := request.Payload()
	c.metrics.RecordSend(len(payload))

	conn, err := pool.pick(payload)
	if err != nil {
		c.metrics.RecordRequest(requestType, startTime, err)
		return nil, err
	}

	md := metadata.Pairs(mdRequestType, requestType)
	if id, ok := transport.RequestIDFromContext(ctx); ok {
		md.Set(mdRequestID, id)
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	out := new(wrapperspb.BytesValue)
	err = conn.call(ctx, &wrapperspb.BytesValue{Value: payload}, out, c.callOpts...)
	if err != nil {
		err = convertError(err)
		c.metrics.RecordRequest(requestType, startTime, err)
		c.mu.Lock()
		c.status.LastError = err
		c.mu.Unlock()
		return nil, err
	}

	c.metrics.RecordRequest(requestType, startTime, nil)
	c.metrics.RecordReceive(len(out.GetValue()))

	c.mu.Lock()
	c.status.BytesSent += uint64(len(payload))
	c.status.BytesReceived += uint64(len(out.GetValue()))
	c.mu.Unlock()

	return transport.NewResponse(requestType, out.GetValue(), nil), nil
}

// convertError maps gRPC status codes onto transport errors. Codes a retry may
// cure become temporary errors.
func convertError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.Aborted:
		return transport.NewTemporaryError(err, true)
	case codes.ResourceExhausted:
		return transport.NewTemporaryErrorWithRetry(err, overloadRetryAfter)
	case codes.DeadlineExceeded:
		return transport.NewTemporaryError(fmt.Errorf("%w: %s", transport.ErrTimeout, st.Message()), true)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", transport.ErrInvalidRequest, st.Message())
	case codes.Canceled:
		return errors.Join(context.Canceled, err)
	default:
		return err
	}
}

func init() {
	transport.RegisterClientTransport("grpc", NewGRPCClient)
}
