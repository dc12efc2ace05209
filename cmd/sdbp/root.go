package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/config"

	// Register the gRPC transport
	_ "github.com/scalien/sdbp-go/pkg/grpc/transport"
)

var Version = "dev"

const (
	configF         = "config"
	endpointF       = "endpoint"
	transportF      = "transport"
	pageSizeF       = "page-size"
	compressionF    = "compression"
	requestTimeoutF = "request-timeout"
	logLevelF       = "log-level"
	logJSONF        = "log-json"

	configFlagUsage     = "Configuration file (yaml, json or toml)."
	endpointUsage       = "Shard address to connect to."
	transportUsage      = "Transport used to reach the shard."
	pageSizeUsage       = "Entries fetched per list call."
	compressionUsage    = "Wire compression: none, gzip, snappy, zstd or lz4."
	requestTimeoutUsage = "Timeout of a single request attempt."
	logLevelUsage       = "Log level: debug, info, warn or error."
	logJSONUsage        = "Write logs as JSON."
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	endpointF:       "endpoint",
	transportF:      "transport",
	pageSizeF:       "page_size",
	compressionF:    "compression",
	requestTimeoutF: "request_timeout",
	logLevelF:       "log_level",
}

// NewCmd builds the root command
func NewCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sdbp",
		Short:         "Client and test shard for paged range iteration over SDBP tables.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.NewDefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String(configF, "", configFlagUsage)
	flags.String(endpointF, defaults.Endpoint, endpointUsage)
	flags.String(transportF, defaults.Transport, transportUsage)
	flags.Int(pageSizeF, defaults.PageSize, pageSizeUsage)
	flags.String(compressionF, defaults.Compression, compressionUsage)
	flags.Duration(requestTimeoutF, defaults.RequestTimeout, requestTimeoutUsage)
	flags.String(logLevelF, defaults.LogLevel, logLevelUsage)
	flags.Bool(logJSONF, false, logJSONUsage)

	rootCmd.AddCommand(newShellCmd(), newServeCmd())
	return rootCmd
}

// loadConfig layers flags over the config file over the defaults and installs
// the logger the config asks for
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()

	flags := cmd.Flags()
	if cfgFile, _ := flags.GetString(configF); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	jsonLogs, _ := flags.GetBool(logJSONF)
	logger, err := log.NewZapLogger(level, !jsonLogs)
	if err != nil {
		return nil, err
	}
	log.SetDefaultLogger(logger)

	return cfg, nil
}
