// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/knowledgegraph/pkg/logging"
	"github.com/AleutianAI/knowledgegraph/store"
)

// --- Global Command Variables ---
var (
	dbPath       string
	verbose      bool
	quiet        bool
	exportFormat string
	exportOutput string
	topN         int
	minScore     float64
	minSize      int

	logger = logging.Default()

	rootCmd = &cobra.Command{
		Use:   "kgraph",
		Short: "Manage and analyze a stored knowledge graph",
		Long: `kgraph imports and exports knowledge-graph snapshots, reports
stored statistics, and runs graph analytics (PageRank, central
concepts, knowledge gaps, communities) over a local database.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelInfo
			if verbose {
				level = logging.LevelDebug
			}
			logger = logging.New(logging.Config{
				Level:   level,
				Service: "kgraph",
				Quiet:   quiet,
			})
		},
	}

	importCmd = &cobra.Command{
		Use:   "import [file.json]",
		Short: "Import a graph document into the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport, // Defined in cmd_import.go
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the stored graph as JSON, GEXF, or GraphML",
		Args:  cobra.NoArgs,
		RunE:  runExport, // Defined in cmd_export.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print stored graph statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats, // Defined in cmd_stats.go
	}

	// --- Analytics ---
	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run analytics over the stored graph",
	}
	analyzePageRankCmd = &cobra.Command{
		Use:   "pagerank",
		Short: "Rank nodes by PageRank",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzePageRank, // Defined in cmd_analyze.go
	}
	analyzeCentralCmd = &cobra.Command{
		Use:   "central",
		Short: "Rank nodes by blended centrality",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCentral,
	}
	analyzeGapsCmd = &cobra.Command{
		Use:   "gaps",
		Short: "Find node pairs that likely should be linked",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeGaps,
	}
	analyzeCommunitiesCmd = &cobra.Command{
		Use:   "communities",
		Short: "List connected communities",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCommunities,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./kgraph-data",
		"directory for the graph database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress log output")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json",
		"output format: json, gexf, or graphml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"output file (default stdout)")

	analyzePageRankCmd.Flags().IntVar(&topN, "top", 10, "number of nodes to show")
	analyzeCentralCmd.Flags().IntVar(&topN, "top", 10, "number of nodes to show")
	analyzeGapsCmd.Flags().Float64Var(&minScore, "min-score", 0,
		"minimum gap score to report")
	analyzeCommunitiesCmd.Flags().IntVar(&minSize, "min-size", 2,
		"smallest community to list")

	analyzeCmd.AddCommand(analyzePageRankCmd, analyzeCentralCmd,
		analyzeGapsCmd, analyzeCommunitiesCmd)
	rootCmd.AddCommand(importCmd, exportCmd, statsCmd, analyzeCmd)
}

// openStore opens the configured database; callers must Close it.
func openStore() (*store.Store, error) {
	cfg := store.DefaultConfig(dbPath)
	// Badger's internals are noisy; only surface them in debug runs.
	if verbose {
		cfg.Logger = logger.Slog()
	}
	return store.Open(cfg)
}
