package transport

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Constants for default timeout values
const (
	defaultConnectTimeout  = 5 * time.Second
	defaultKeepAliveTime   = 15 * time.Second
	defaultKeepAlivePolicy = 5 * time.Second
	defaultMaxConnIdle     = 60 * time.Second
	defaultMaxConnAge      = 5 * time.Minute

	// wait suggested to callers when the server reports ResourceExhausted
	overloadRetryAfter = 250 * time.Millisecond
)

// ConnectionStatus describes one pooled connection
type ConnectionStatus struct {
	State        connectivity.State
	LastActivity time.Time
	ErrorCount   int
	RequestCount int
}

// GRPCConnection wraps a gRPC client connection with usage counters
type GRPCConnection struct {
	conn     *grpc.ClientConn
	address  string
	mu       sync.RWMutex
	lastUsed time.Time
	reqCount int
	errCount int
}

// call invokes the shard Call method on this connection
func (c *GRPCConnection) call(ctx context.Context, in, out *wrapperspb.BytesValue, opts ...grpc.CallOption) error {
	c.mu.Lock()
	c.lastUsed = time.Now()
	c.reqCount++
	c.mu.Unlock()

	err := c.conn.Invoke(ctx, callMethod, in, out, opts...)
	if err != nil {
		c.mu.Lock()
		c.errCount++
		c.mu.Unlock()
	}
	return err
}

// Close closes the gRPC connection
func (c *GRPCConnection) Close() error {
	return c.conn.Close()
}

// Address returns the endpoint address
func (c *GRPCConnection) Address() string {
	return c.address
}

// Status returns the current connection status
func (c *GRPCConnection) Status() ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ConnectionStatus{
		State:        c.conn.GetState(),
		LastActivity: c.lastUsed,
		ErrorCount:   c.errCount,
		RequestCount: c.reqCount,
	}
}

// waitReady blocks until the connection is ready or ctx is done
func (c *GRPCConnection) waitReady(ctx context.Context) error {
	c.conn.Connect()
	for {
		state := c.conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !c.conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}
