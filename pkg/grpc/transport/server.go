package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/transport"
)

// GRPCServer implements the transport.Server interface for gRPC
type GRPCServer struct {
	address string
	options transport.TransportOptions
	metrics transport.MetricsCollector
	logger  log.Logger

	mu       sync.Mutex
	server   *grpc.Server
	listener net.Listener
	handler  transport.RequestHandler
	started  bool
}

var _ transport.Server = (*GRPCServer)(nil)

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(address string, options transport.TransportOptions) (transport.Server, error) {
	metrics := options.Metrics
	if metrics == nil {
		metrics = transport.NewMetricsCollector()
	}
	return &GRPCServer{
		address: address,
		options: options,
		metrics: metrics,
		logger:  log.GetDefaultLogger().WithField("component", "grpc_server"),
	}, nil
}

// prepare builds the gRPC server and opens the listener. Callers hold s.mu.
func (s *GRPCServer) prepare() error {
	if s.started {
		return fmt.Errorf("server already started")
	}

	var serverOpts []grpc.ServerOption

	if s.options.TLSEnabled {
		tlsConfig, err := LoadServerTLSConfig(s.options.CertFile, s.options.KeyFile, s.options.CAFile)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	if s.options.MaxMessageSize > 0 {
		serverOpts = append(serverOpts,
			grpc.MaxRecvMsgSize(s.options.MaxMessageSize),
			grpc.MaxSendMsgSize(s.options.MaxMessageSize),
		)
	}

	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle:     defaultMaxConnIdle,
		MaxConnectionAge:      defaultMaxConnAge,
		MaxConnectionAgeGrace: 5 * time.Second,
		Time:                  defaultKeepAliveTime,
		Timeout:               defaultKeepAlivePolicy,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}

	serverOpts = append(serverOpts,
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
	)

	server := grpc.NewServer(serverOpts...)
	RegisterShardServer(server, &shardService{server: s})

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.server = server
	s.listener = listener
	s.started = true
	return nil
}

// Start starts the server and returns immediately
func (s *GRPCServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(); err != nil {
		return err
	}

	server, listener := s.server, s.listener
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("gRPC server error: %v", err)
		}
	}()

	s.logger.Info("listening on %s", listener.Addr())
	return nil
}

// Serve starts the server and blocks until it's stopped
func (s *GRPCServer) Serve() error {
	s.mu.Lock()
	if err := s.prepare(); err != nil {
		s.mu.Unlock()
		return err
	}
	server, listener := s.server, s.listener
	s.mu.Unlock()

	s.logger.Info("listening on %s", listener.Addr())
	return server.Serve(listener)
}

// Stop stops the server gracefully, forcing it down when ctx expires
func (s *GRPCServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.server.Stop()
	}

	s.started = false
	return nil
}

// SetRequestHandler sets the handler for incoming requests
func (s *GRPCServer) SetRequestHandler(handler transport.RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
}

// Addr returns the listening address, nil before the server started
func (s *GRPCServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *GRPCServer) requestHandler() transport.RequestHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// shardService adapts the server's RequestHandler to the shard service
type shardService struct {
	server *GRPCServer
}

func (svc *shardService) Call(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	handler := svc.server.requestHandler()
	if handler == nil {
		return nil, status.Error(codes.Unavailable, "no request handler")
	}

	md, _ := metadata.FromIncomingContext(ctx)
	requestType := first(md.Get(mdRequestType))
	if requestType == "" {
		return nil, status.Error(codes.InvalidArgument, "missing request type")
	}
	if id := first(md.Get(mdRequestID)); id != "" {
		ctx = transport.WithRequestID(ctx, id)
	}

	startTime := time.Now()
	svc.server.metrics.RecordReceive(len(in.GetValue()))

	resp, err := handler.HandleRequest(ctx, transport.NewRequest(requestType, in.GetValue()))
	svc.server.metrics.RecordRequest(requestType, startTime, err)
	if err != nil {
		return nil, toStatus(err)
	}

	svc.server.metrics.RecordSend(len(resp.Payload()))
	return &wrapperspb.BytesValue{Value: resp.Payload()}, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// toStatus maps handler errors onto gRPC status codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, transport.ErrInvalidRequest), errors.Is(err, transport.ErrInvalidPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case transport.IsTemporary(err):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Register server factory with transport registry
func init() {
	transport.RegisterServerTransport("grpc", NewGRPCServer)
}
