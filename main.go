package main

import (
	"flag"
	"fmt"
	"os"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/solarlog/tariff-tracker/logging"
)

// envOrString returns the environment variable value if set, otherwise returns the default value.
func envOrString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// Config contains configuration for the application.
type Config struct {
	APIKey         string
	ConfigFile     string
	CacheDirectory string
	Region         string
	LogLevel       string
	LogFormat      string
}

func parseFlags() (*Config, []string) {
	apiKey := flag.String("apikey", envOrString("OCTOPUS_API_KEY", ""), "Octopus API key (only needed for refresh and product search)")
	configFile := flag.String("config", envOrString("TARIFF_CONFIG", "tariff_config.json"), "Tariff configuration document")
	cacheDir := flag.String("cache", envOrString("CACHE_DIR", "disable"), "Directory for HTTP cache ('disable' to disable, empty for temporary directory)")
	region := flag.String("region", envOrString("OCTOPUS_REGION", "C"), "Distribution region code (A-P)")
	logLevel := flag.String("logLevel", envOrString("LOG_LEVEL", "info"), "Log level")
	logFormat := flag.String("logFormat", envOrString("LOG_FORMAT", "console"), "Log format (console or json)")
	flag.Parse()

	return &Config{
		APIKey:         *apiKey,
		ConfigFile:     *configFile,
		CacheDirectory: *cacheDir,
		Region:         *region,
		LogLevel:       *logLevel,
		LogFormat:      *logFormat,
	}, flag.Args()
}

func main() {
	config, args := parseFlags()

	if err := logging.Init(config.LogLevel, config.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zap.L().Sync() }()

	app := NewApp(config)
	if err := app.Run(args); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
