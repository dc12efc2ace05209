package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultEndpoint  = "localhost:7080"
	DefaultPageSize  = 100
	CurrentVersion   = 1
	EnvPrefix        = "SDBP"
	defaultTransport = "grpc"
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConfigNotFound = errors.New("config file not found")
)

// Config holds client-side settings. Field names double as viper keys and
// command line flag names.
type Config struct {
	Version int `json:"version" mapstructure:"version" validate:"gte=1"`

	// Connection
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint" validate:"required"`
	Transport      string        `json:"transport" mapstructure:"transport" validate:"required"`
	ConnectTimeout time.Duration `json:"connect_timeout" mapstructure:"connect_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout" validate:"gt=0"`
	PoolSize       int           `json:"pool_size" mapstructure:"pool_size" validate:"gte=1"`

	// Security
	TLSEnabled bool   `json:"tls_enabled" mapstructure:"tls_enabled"`
	CertFile   string `json:"cert_file" mapstructure:"cert_file" validate:"required_with=KeyFile"`
	KeyFile    string `json:"key_file" mapstructure:"key_file" validate:"required_with=CertFile"`
	CAFile     string `json:"ca_file" mapstructure:"ca_file"`

	// Retry
	MaxRetries     int           `json:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	InitialBackoff time.Duration `json:"initial_backoff" mapstructure:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `json:"max_backoff" mapstructure:"max_backoff" validate:"gtefield=InitialBackoff"`
	BackoffFactor  float64       `json:"backoff_factor" mapstructure:"backoff_factor" validate:"gte=1"`
	RetryJitter    float64       `json:"retry_jitter" mapstructure:"retry_jitter" validate:"gte=0,lte=1"`

	// Wire
	Compression    string `json:"compression" mapstructure:"compression" validate:"oneof=none gzip snappy zstd lz4"`
	MaxMessageSize int    `json:"max_message_size" mapstructure:"max_message_size" validate:"gt=0"`

	// Iteration
	PageSize       int `json:"page_size" mapstructure:"page_size" validate:"gt=0"`
	TableCacheSize int `json:"table_cache_size" mapstructure:"table_cache_size" validate:"gte=0"`

	LogLevel string `json:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error fatal"`
}

// NewDefaultConfig creates a Config with recommended default values
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,

		Endpoint:       DefaultEndpoint,
		Transport:      defaultTransport,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
		PoolSize:       1,

		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  1.5,
		RetryJitter:    0.2,

		Compression:    "none",
		MaxMessageSize: 16 * 1024 * 1024, // 16MB

		PageSize:       DefaultPageSize,
		TableCacheSize: 1024,

		LogLevel: "info",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SetDefaults registers every default value with v so that unset keys in a
// file, environment or flag set resolve to them.
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("pool_size", d.PoolSize)
	v.SetDefault("tls_enabled", d.TLSEnabled)
	v.SetDefault("cert_file", d.CertFile)
	v.SetDefault("key_file", d.KeyFile)
	v.SetDefault("ca_file", d.CAFile)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("initial_backoff", d.InitialBackoff)
	v.SetDefault("max_backoff", d.MaxBackoff)
	v.SetDefault("backoff_factor", d.BackoffFactor)
	v.SetDefault("retry_jitter", d.RetryJitter)
	v.SetDefault("compression", d.Compression)
	v.SetDefault("max_message_size", d.MaxMessageSize)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("table_cache_size", d.TableCacheSize)
	v.SetDefault("log_level", d.LogLevel)
}

// FromViper decodes and validates a Config from v. Environment variables
// prefixed with SDBP_ override file values.
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a yaml, json or toml config file (format chosen by
// extension) layered over the defaults
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return FromViper(v)
}

// Save writes the configuration as JSON, replacing path atomically
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename config: %w", err)
	}

	return nil
}
