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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/knowledgegraph/graph"
)

// loadAnalytics loads the stored graph and wraps it for analysis.
func loadAnalytics(cmd *cobra.Command) (*graph.Analytics, func() error, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	g, err := s.Load(cmd.Context())
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("load graph: %w", err)
	}
	if g.NodeCount() == 0 {
		s.Close()
		return nil, nil, fmt.Errorf("no graph stored; run 'kgraph import' first")
	}
	return graph.NewAnalytics(g), s.Close, nil
}

func runAnalyzePageRank(cmd *cobra.Command, args []string) error {
	analytics, closeStore, err := loadAnalytics(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ranked := analytics.PageRankTop(cmd.Context(), topN, nil)

	fmt.Printf("%-4s %-32s %s\n", "RANK", "NODE", "SCORE")
	for _, r := range ranked {
		fmt.Printf("%-4d %-32s %.6f\n", r.Rank, r.Node.UID, r.Score)
	}
	return nil
}

func runAnalyzeCentral(cmd *cobra.Command, args []string) error {
	analytics, closeStore, err := loadAnalytics(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	concepts := analytics.FindCentralConcepts(cmd.Context(), topN)

	fmt.Printf("%-32s %-8s %-8s %-8s %s\n",
		"NODE", "SCORE", "DEGREE", "BETWEEN", "PAGERANK")
	for _, c := range concepts {
		fmt.Printf("%-32s %-8.4f %-8.4f %-8.4f %.4f\n",
			c.UID, c.Score, c.Degree, c.Betweenness, c.PageRank)
	}
	return nil
}

func runAnalyzeGaps(cmd *cobra.Command, args []string) error {
	analytics, closeStore, err := loadAnalytics(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	gaps := analytics.FindKnowledgeGaps(cmd.Context(), minScore)
	if len(gaps) == 0 {
		fmt.Println("No knowledge gaps found.")
		return nil
	}

	fmt.Printf("%-24s %-24s %-8s %s\n", "NODE A", "NODE B", "SCORE", "SHARED")
	for _, gap := range gaps {
		fmt.Printf("%-24s %-24s %-8.4f %d\n",
			gap.NodeA, gap.NodeB, gap.Score, gap.CommonNeighbors)
	}
	return nil
}

func runAnalyzeCommunities(cmd *cobra.Command, args []string) error {
	analytics, closeStore, err := loadAnalytics(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, community := range analytics.FindCommunities(cmd.Context()) {
		if len(community.Members) < minSize {
			continue
		}
		fmt.Printf("community %d (%d members): %s\n",
			community.ID, len(community.Members),
			strings.Join(community.Members, ", "))
	}
	return nil
}
