package main

import (
	"fmt"
	"os"

	"jobmatch/internal/config"
	"jobmatch/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "jobmatch"

var (
	v = viper.New()

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "jobmatch analyses résumés and scores candidates against job postings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = v.BindPFlag("LOG_DEBUG", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("LOG_JSON", rootCmd.PersistentFlags().Lookup("json"))
}

// setup resolves configuration and builds the process logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log.With(zap.String("app", cfg.App.AppName)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
