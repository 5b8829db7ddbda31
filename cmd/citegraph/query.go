package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"citegraph/internal/query"
)

var (
	queryLimit     int
	querySortBy    string
	queryMinPapers int
	queryDepth     int
	querySince     int
	queryField     string

	searchText         string
	searchAuthor       string
	searchField        string
	searchYearFrom     int
	searchYearTo       int
	searchMinCitations int
)

func init() {
	queryCmd.PersistentFlags().IntVar(&queryLimit, "limit", 0, "Result cap (default from config)")

	authorPapersCmd.Flags().StringVar(&querySortBy, "sort", "year", "Sort by 'year' or 'citations'")
	collaboratorsCmd.Flags().IntVar(&queryMinPapers, "min-papers", 1, "Minimum shared papers")
	lineageCmd.Flags().IntVar(&queryDepth, "depth", 2, "Citation hops to follow (max 5)")
	hotFieldsCmd.Flags().IntVar(&querySince, "since", 2018, "Count papers published in or after this year")
	topCitedCmd.Flags().StringVar(&queryField, "field", "", "Restrict to one field of study")

	searchCmd.Flags().StringVar(&searchText, "text", "", "Substring match on title or abstract")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "Substring match on author name")
	searchCmd.Flags().StringVar(&searchField, "field", "", "Substring match on field of study")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Earliest publication year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Latest publication year")
	searchCmd.Flags().IntVar(&searchMinCitations, "min-citations", 0, "Minimum citation count")

	queryCmd.AddCommand(authorPapersCmd)
	queryCmd.AddCommand(collaboratorsCmd)
	queryCmd.AddCommand(impactCmd)
	queryCmd.AddCommand(hotFieldsCmd)
	queryCmd.AddCommand(similarCmd)
	queryCmd.AddCommand(lineageCmd)
	queryCmd.AddCommand(searchCmd)
	queryCmd.AddCommand(topCitedCmd)
	queryCmd.AddCommand(paperCmd)
	queryCmd.AddCommand(venueCmd)

	runCmd.Flags().StringArrayVar(&runParams, "param", nil, "Query parameter as key=value (repeatable)")
	runCmd.Flags().BoolVar(&runWithGraph, "graph", false, "Also resolve the visualization subgraph")
	queryCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run bibliometric queries against the graph",
}

// withEngine handles the shared connect/close/engine boilerplate.
func withEngine(fn func(ctx context.Context, e *query.Engine) (any, error)) error {
	ctx := context.Background()
	client, cfg, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	engine := query.New(client, cfg.DefaultQueryLimit, cfg.MaxQueryLimit)
	result, err := fn(ctx, engine)
	if err != nil {
		return err
	}
	return outputJSON(result)
}

var (
	runParams    []string
	runWithGraph bool
)

// runCmd executes caller-supplied read queries verbatim. Query-safety
// validation (write-keyword rejection, LIMIT enforcement) belongs to
// the tool-calling layer that normally fronts this; the store client
// executes exactly what it is given.
var runCmd = &cobra.Command{
	Use:   "run <cypher>",
	Short: "Run an arbitrary read query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := make(map[string]any, len(runParams))
		for _, p := range runParams {
			key, value, found := strings.Cut(p, "=")
			if !found {
				return fmt.Errorf("invalid --param %q, want key=value", p)
			}
			params[key] = value
		}

		ctx := context.Background()
		client, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		if runWithGraph {
			result, err := client.ExecuteQueryWithGraph(ctx, args[0], params)
			if err != nil {
				return err
			}
			return outputJSON(result)
		}
		rows, err := client.ExecuteQuery(ctx, args[0], params)
		if err != nil {
			return err
		}
		return outputJSON(rows)
	},
}

var authorPapersCmd = &cobra.Command{
	Use:   "author <name>",
	Short: "List an author's papers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if querySortBy != "year" && querySortBy != "citations" {
			return fmt.Errorf("--sort must be 'year' or 'citations'")
		}
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.AuthorPapers(ctx, args[0], querySortBy, queryLimit)
		})
	},
}

var collaboratorsCmd = &cobra.Command{
	Use:   "collaborators <name>",
	Short: "List an author's collaborators",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.Collaborators(ctx, args[0], queryMinPapers, queryLimit)
		})
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <name>",
	Short: "Paper count, total citations and h-index for an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			impact, err := e.AuthorImpact(ctx, args[0])
			if err != nil {
				return nil, err
			}
			if impact == nil {
				return nil, fmt.Errorf("author not found: %s", args[0])
			}
			return impact, nil
		})
	},
}

var hotFieldsCmd = &cobra.Command{
	Use:   "hot-fields",
	Short: "Rank fields of study by recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.FieldHotness(ctx, querySince, queryLimit)
		})
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <paper-id>",
	Short: "Rank papers by weighted overlap with the given one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.SimilarPapers(ctx, args[0], queryLimit)
		})
	},
}

var lineageCmd = &cobra.Command{
	Use:   "lineage <paper-id>",
	Short: "Follow citation chains outward from a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.CitationLineage(ctx, args[0], queryDepth, queryLimit)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Composite conjunctive paper search",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.SearchPapers(ctx, query.SearchFilter{
				Text:         searchText,
				Author:       searchAuthor,
				Field:        searchField,
				YearFrom:     searchYearFrom,
				YearTo:       searchYearTo,
				MinCitations: searchMinCitations,
			}, queryLimit)
		})
	},
}

var topCitedCmd = &cobra.Command{
	Use:   "top-cited",
	Short: "List the most cited papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			return e.TopCitedPapers(ctx, queryField, queryLimit)
		})
	},
}

var paperCmd = &cobra.Command{
	Use:   "paper <paper-id>",
	Short: "Show one paper with its linked entities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			detail, err := e.PaperDetails(ctx, args[0])
			if err != nil {
				return nil, err
			}
			if detail == nil {
				return nil, fmt.Errorf("paper not found: %s", args[0])
			}
			return detail, nil
		})
	},
}

var venueCmd = &cobra.Command{
	Use:   "venue <name>",
	Short: "Summarize one publication venue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *query.Engine) (any, error) {
			impact, err := e.VenueImpact(ctx, args[0])
			if err != nil {
				return nil, err
			}
			if impact == nil {
				return nil, fmt.Errorf("venue not found: %s", args[0])
			}
			return impact, nil
		})
	},
}
