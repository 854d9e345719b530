package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TASKFLOW"

type Config struct {
	HttpAddr            string
	DatabaseDriver      string
	DatabaseArgs        string
	ElasticsearchURLs   []string
	TrustGatewayHeaders bool
	TracingEnabled      bool
	LogLevel            string
}

func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("config-file", "", "path to config file")
	flags.String("http-addr", ":8080", "listen address of the rest endpoints")
	flags.String("db-driver", "sqlite", "database driver, mysql or sqlite")
	flags.String("db-args", "file:taskflow.db?cache=shared", "data source name passed to the driver")
	flags.String("elasticsearch-url", "", "comma separated elasticsearch addresses, search is disabled when empty")
	flags.Bool("trust-gateway-headers", false, "accept the identity asserted by X-User-* headers")
	flags.Bool("tracing", false, "report spans to jaeger, configured by the JAEGER_* variables")
	flags.String("log-level", "info", "log level")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// loadConfig resolves flags, TASKFLOW_* variables and the optional config file, in that order.
func loadConfig(v *viper.Viper) (*Config, error) {
	if configFile := v.GetString("config-file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HttpAddr:            v.GetString("http-addr"),
		DatabaseDriver:      v.GetString("db-driver"),
		DatabaseArgs:        v.GetString("db-args"),
		TrustGatewayHeaders: v.GetBool("trust-gateway-headers"),
		TracingEnabled:      v.GetBool("tracing"),
		LogLevel:            v.GetString("log-level"),
	}
	for _, addr := range strings.Split(v.GetString("elasticsearch-url"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.ElasticsearchURLs = append(cfg.ElasticsearchURLs, addr)
		}
	}
	return cfg, nil
}
