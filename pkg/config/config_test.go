package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, "grpc", cfg.Transport)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PageSize"},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, "Endpoint"},
		{"unknown compression", func(c *Config) { c.Compression = "brotli" }, "Compression"},
		{"backoff below initial", func(c *Config) { c.MaxBackoff = time.Millisecond }, "MaxBackoff"},
		{"key without cert", func(c *Config) { c.KeyFile = "client.key" }, "CertFile"},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "MaxRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sdbp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: shard-1:7080
page_size: 25
compression: zstd
request_timeout: 3s
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "shard-1:7080", cfg.Endpoint)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, NewDefaultConfig().MaxRetries, cfg.MaxRetries)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 0\n"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sdbp.json")

	cfg := NewDefaultConfig()
	cfg.Endpoint = "10.0.0.5:7080"
	cfg.PageSize = 7
	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Endpoint, loaded.Endpoint)
	assert.Equal(t, 7, loaded.PageSize)
	assert.Equal(t, cfg.ConnectTimeout, loaded.ConnectTimeout)

	cfg.PageSize = -1
	assert.ErrorIs(t, cfg.Save(path), ErrInvalidConfig)
}
