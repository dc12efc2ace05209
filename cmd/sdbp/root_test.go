package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalien/sdbp-go/pkg/client"
	"github.com/scalien/sdbp-go/pkg/config"
)

// probe runs loadConfig under the root command and returns what it produced
func probe(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var cfg *config.Config
	root := NewCmd()
	root.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = loadConfig(cmd)
			return err
		},
	})
	root.SetOut(new(bytes.Buffer))
	root.SetArgs(append([]string{"probe"}, args...))
	return cfg, root.Execute()
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := probe(t)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := probe(t,
		"--endpoint", "shard-1:7080",
		"--page-size", "7",
		"--compression", "zstd",
		"--request-timeout", "3s",
		"--log-level", "debug",
	)
	require.NoError(t, err)
	assert.Equal(t, "shard-1:7080", cfg.Endpoint)
	assert.Equal(t, 7, cfg.PageSize)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFileUnderFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdbp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: file:1\npage_size: 42\npool_size: 4\n"), 0644))

	cfg, err := probe(t, "--config", path, "--endpoint", "flag:2")
	require.NoError(t, err)
	assert.Equal(t, "flag:2", cfg.Endpoint)
	assert.Equal(t, 42, cfg.PageSize)
	assert.Equal(t, 4, cfg.PoolSize)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := probe(t, "--page-size", "0")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = probe(t, "--compression", "brotli")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = probe(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewDefaultConfig()
	cfg.Endpoint = "127.0.0.1:0"

	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cfg, serveOptions{
			tables:      []string{"users", "orders"},
			seed:        25,
			metricsAddr: "127.0.0.1:0",
			ready:       func(addr net.Addr) { ready <- addr },
		})
	}()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("shard did not start")
	}

	options := client.DefaultClientOptions()
	options.Endpoint = addr.String()
	options.PageSize = 10
	c, err := client.NewClient(options)
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	for _, name := range []string{"users", "orders"} {
		table, err := c.Table(ctx, name)
		require.NoError(t, err)

		it, err := table.Keys(ctx, client.DefaultRangeParams())
		require.NoError(t, err)
		var keys []string
		for it.HasNext(ctx) {
			keys = append(keys, it.Next())
		}
		require.NoError(t, it.Err())
		require.Len(t, keys, 25)
		assert.Equal(t, "key-000000", keys[0])
		assert.Equal(t, fmt.Sprintf("key-%06d", 24), keys[24])
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
