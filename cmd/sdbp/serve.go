package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/config"
	"github.com/scalien/sdbp-go/pkg/memstore"
	"github.com/scalien/sdbp-go/pkg/transport"
)

const (
	tableF       = "table"
	seedF        = "seed"
	metricsAddrF = "metrics-addr"

	tableUsage       = "Table to create at startup, may be repeated."
	seedUsage        = "Number of sample keys written to every startup table."
	metricsAddrUsage = "Address to serve Prometheus metrics on, empty to disable."

	metricsNamespace = "sdbp"
	shutdownTimeout  = 5 * time.Second
)

type serveOptions struct {
	tables      []string
	seed        int
	metricsAddr string

	// ready is called with the bound address once the shard accepts requests
	ready func(net.Addr)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory shard over gRPC on the configured endpoint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var opts serveOptions
			if opts.tables, err = flags.GetStringSlice(tableF); err != nil {
				return err
			}
			if opts.seed, err = flags.GetInt(seedF); err != nil {
				return err
			}
			if opts.metricsAddr, err = flags.GetString(metricsAddrF); err != nil {
				return err
			}
			opts.ready = func(addr net.Addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "Shard listening on %s\n", addr)
			}
			return runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringSlice(tableF, nil, tableUsage)
	cmd.Flags().Int(seedF, 0, seedUsage)
	cmd.Flags().String(metricsAddrF, "", metricsAddrUsage)
	return cmd
}

func seedStore(store *memstore.Store, tables []string, n int) {
	for _, name := range tables {
		t := store.CreateTable(name)
		for i := 0; i < n; i++ {
			t.Set(fmt.Sprintf("key-%06d", i), fmt.Sprintf("value-%d", i))
		}
	}
}

// runServe serves a memstore shard until ctx is done
func runServe(ctx context.Context, cfg *config.Config, opts serveOptions) error {
	logger := log.GetDefaultLogger().WithField("component", "serve")

	store := memstore.New()
	seedStore(store, opts.tables, opts.seed)

	reg := prometheus.NewRegistry()
	metrics, err := transport.NewPrometheusCollector(reg, metricsNamespace)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	server, err := transport.GetServer("grpc", cfg.Endpoint, transport.TransportOptions{
		Timeout:        cfg.ConnectTimeout,
		Compression:    transport.CompressionType(cfg.Compression),
		MaxMessageSize: cfg.MaxMessageSize,
		TLSEnabled:     cfg.TLSEnabled,
		CertFile:       cfg.CertFile,
		KeyFile:        cfg.KeyFile,
		CAFile:         cfg.CAFile,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}
	server.SetRequestHandler(memstore.NewHandler(store))

	if err := server.Start(); err != nil {
		return err
	}

	var httpSrv *http.Server
	var wg conc.WaitGroup
	if opts.metricsAddr != "" {
		listener, err := net.Listen("tcp", opts.metricsAddr)
		if err != nil {
			stopServer(server, logger)
			return fmt.Errorf("failed to listen on %s: %w", opts.metricsAddr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		httpSrv = &http.Server{
			Handler: mux,
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		}
		wg.Go(func() {
			if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error: %v", err)
			}
		})
		logger.Info("serving metrics on %s", listener.Addr())
	}

	if opts.ready != nil {
		if a, ok := server.(interface{ Addr() net.Addr }); ok {
			opts.ready(a.Addr())
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown: %v", err)
		}
		cancel()
	}
	wg.Wait()

	return stopServer(server, logger)
}

func stopServer(server transport.Server, logger log.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("failed to stop shard server: %v", err)
		return err
	}
	return nil
}
