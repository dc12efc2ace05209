package client

import (
	"github.com/scalien/sdbp-go/pkg/config"
	"github.com/scalien/sdbp-go/pkg/transport"
)

// OptionsFromConfig converts a loaded configuration into client options.
// Logger and Metrics are left unset.
func OptionsFromConfig(cfg *config.Config) ClientOptions {
	return ClientOptions{
		Endpoint:       cfg.Endpoint,
		ConnectTimeout: cfg.ConnectTimeout,
		RequestTimeout: cfg.RequestTimeout,
		TransportType:  cfg.Transport,
		PoolSize:       cfg.PoolSize,
		TLSEnabled:     cfg.TLSEnabled,
		CertFile:       cfg.CertFile,
		KeyFile:        cfg.KeyFile,
		CAFile:         cfg.CAFile,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		BackoffFactor:  cfg.BackoffFactor,
		RetryJitter:    cfg.RetryJitter,
		Compression:    transport.CompressionType(cfg.Compression),
		MaxMessageSize: cfg.MaxMessageSize,
		PageSize:       cfg.PageSize,
		TableCacheSize: cfg.TableCacheSize,
	}
}
