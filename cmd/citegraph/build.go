package main

import (
	"context"

	"github.com/spf13/cobra"

	"citegraph/internal/builder"
)

var (
	buildClear   bool
	buildWorkers int
	buildBatch   int
)

func init() {
	buildCmd.Flags().BoolVar(&buildClear, "clear", false, "Wipe the graph before ingesting")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Worker pool size (default from config)")
	buildCmd.Flags().IntVar(&buildBatch, "batch", 0, "Batch size (default from config)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <records.json>",
	Short: "Ingest bibliographic records into the graph",
	Long: `Ingest a JSON array or JSON-lines file of bibliographic records.

Each record needs an identity and a title; anything else is optional.
The run summary, including per-record failure counts, is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, cfg, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	records, err := builder.LoadRecords(args[0])
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if buildWorkers > 0 {
		workers = buildWorkers
	}
	batch := cfg.BatchSize
	if buildBatch > 0 {
		batch = buildBatch
	}

	b := builder.New(client, batch, workers)
	result, err := b.Build(ctx, records, buildClear)
	if err != nil {
		return err
	}
	return outputJSON(result)
}
