// Package main provides the citegraph CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"citegraph/internal/store"
	"citegraph/pkg/config"
	"citegraph/pkg/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

// configPath is the optional YAML overlay applied on top of the environment.
var configPath string

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "Citation graph ingestion and query tool",
	Long: `citegraph ingests bibliographic JSON records into a Neo4j property
graph (papers, authors, fields of study, venues, citations) and answers
bibliometric queries over it. All query output is JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config overlay")
	rootCmd.Version = Version
}

// loadConfig reads the environment and the optional --config overlay,
// then initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openClient loads configuration and connects the store client.
// Connection failures are fatal here: nothing else can proceed.
func openClient(ctx context.Context) (*store.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := store.New(store.Config{
		URI:                     cfg.Neo4jURI,
		Username:                cfg.Neo4jUser,
		Password:                cfg.Neo4jPassword,
		Database:                cfg.Neo4jDatabase,
		MaxPoolSize:             cfg.MaxPoolSize,
		AcquisitionTimeout:      cfg.AcquisitionTimeout,
		MaxTransactionRetryTime: cfg.MaxTxRetryTime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}
