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
	"sort"

	"github.com/spf13/cobra"
)

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	if stats == nil {
		fmt.Println("No graph stored. Run 'kgraph import' first.")
		return nil
	}

	fmt.Printf("Nodes: %d\n", stats.NodeCount)
	fmt.Printf("Edges: %d\n", stats.EdgeCount)

	fmt.Println("\nNode types:")
	for _, name := range sortedKeys(stats.NodeTypes) {
		fmt.Printf("  %-16s %d\n", name, stats.NodeTypes[name])
	}

	fmt.Println("\nRelationship types:")
	for _, name := range sortedKeys(stats.RelationshipTypes) {
		fmt.Printf("  %-16s %d\n", name, stats.RelationshipTypes[name])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
