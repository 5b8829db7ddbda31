package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"citegraph/internal/builder"
)

var wipeForce bool

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Confirm the wipe")
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(wipeCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Apply uniqueness constraints and secondary indexes",
	Long:  `Apply the graph schema. Idempotent; safe to run before every build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, cfg, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		b := builder.New(client, cfg.BatchSize, cfg.Workers)
		if err := b.InitializeSchema(ctx); err != nil {
			return err
		}
		return outputJSON(map[string]any{"schema": "applied"})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node/relationship totals and per-label counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		return outputJSON(stats)
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every node and relationship",
	Long:  `Delete the whole graph. Rebuild flows only; requires --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeForce {
			return fmt.Errorf("refusing to wipe without --force")
		}
		ctx := context.Background()
		client, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		if err := client.Wipe(ctx); err != nil {
			return err
		}
		return outputJSON(map[string]any{"wiped": true})
	},
}
