package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"google.golang.org/grpc"
)

var ErrPoolClosed = errors.New("connection pool is closed")

// connectionPool is a fixed set of connections to one endpoint. Requests are
// spread over them by a hash of their payload.
type connectionPool struct {
	address string
	conns   []*GRPCConnection
}

func newConnectionPool(ctx context.Context, address string, size int, dialOptions []grpc.DialOption) (*connectionPool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &connectionPool{address: address}
	for i := 0; i < size; i++ {
		conn, err := grpc.NewClient(address, dialOptions...)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create connection to %s: %w", address, err)
		}

		c := &GRPCConnection{conn: conn, address: address}
		pool.conns = append(pool.conns, c)

		if err := c.waitReady(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connection to %s not ready: %w", address, err)
		}
	}
	return pool, nil
}

// pick returns the connection serving payload
func (p *connectionPool) pick(payload []byte) (*GRPCConnection, error) {
	if len(p.conns) == 0 {
		return nil, ErrPoolClosed
	}
	if len(p.conns) == 1 {
		return p.conns[0], nil
	}
	return p.conns[xxhash.Sum64(payload)%uint64(len(p.conns))], nil
}

// Size returns the number of connections in the pool
func (p *connectionPool) Size() int {
	return len(p.conns)
}

// Close closes every connection and empties the pool
func (p *connectionPool) Close() error {
	var errs []error
	for _, c := range p.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.conns = nil
	return errors.Join(errs...)
}
