// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"slices"
	"testing"
)

func TestFindCommunities(t *testing.T) {
	// Two components: {a, b, c} linked ignoring direction, and {x, y},
	// plus the singleton {lone}.
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		node("x", NodeTypeNote).
		node("y", NodeTypeNote).
		node("lone", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("c", "b", RelReferences, 1.0).
		edge("x", "y", RelReferences, 1.0).
		build()

	communities := NewAnalytics(g).FindCommunities(context.Background())

	if len(communities) != 3 {
		t.Fatalf("communities = %v, want 3", communities)
	}
	// Sorted by size descending.
	if !slices.Equal(communities[0].Members, []string{"a", "b", "c"}) {
		t.Errorf("largest = %v, want [a b c]", communities[0].Members)
	}
	if !slices.Equal(communities[1].Members, []string{"x", "y"}) {
		t.Errorf("second = %v, want [x y]", communities[1].Members)
	}
	if !slices.Equal(communities[2].Members, []string{"lone"}) {
		t.Errorf("singleton = %v, want [lone]", communities[2].Members)
	}
	for i, c := range communities {
		if c.ID != i {
			t.Errorf("community[%d].ID = %d", i, c.ID)
		}
	}
}

func TestFindCommunities_DirectionIgnored(t *testing.T) {
	// c -> b <- a: one community despite no directed a..c path.
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("c", "b", RelReferences, 1.0).
		build()

	communities := NewAnalytics(g).FindCommunities(context.Background())
	if len(communities) != 1 {
		t.Errorf("communities = %v, want one", communities)
	}
}

func TestDetectClusters(t *testing.T) {
	// Fully connected 4-node group plus an isolated node: exactly one
	// cluster with density 1.0.
	b := newTestGraph(t).
		node("k1", NodeTypeKnowledgeItem).
		node("k2", NodeTypeKnowledgeItem).
		node("k3", NodeTypeKnowledgeItem).
		node("k4", NodeTypeKnowledgeItem).
		node("isolated", NodeTypeNote)
	members := []string{"k1", "k2", "k3", "k4"}
	for _, src := range members {
		for _, dst := range members {
			if src != dst {
				b.edge(src, dst, RelRelatedTo, 1.0)
			}
		}
	}
	g := b.build()

	clusters := NewAnalytics(g).DetectClusters(context.Background(), 3)

	if len(clusters) != 1 {
		t.Fatalf("clusters = %v, want exactly one", clusters)
	}
	if !slices.Equal(clusters[0].Nodes, members) {
		t.Errorf("members = %v, want %v", clusters[0].Nodes, members)
	}
	if clusters[0].Density != 1.0 {
		t.Errorf("density = %v, want 1.0", clusters[0].Density)
	}
}

func TestDetectClusters_SparseRejected(t *testing.T) {
	// Star with one-way spokes: 3 internal edges over 4 nodes gives
	// density 3/12 = 0.25, under the 0.3 floor.
	g := newTestGraph(t).
		node("hub", NodeTypeNote).
		node("s1", NodeTypeNote).
		node("s2", NodeTypeNote).
		node("s3", NodeTypeNote).
		edge("hub", "s1", RelReferences, 1.0).
		edge("hub", "s2", RelReferences, 1.0).
		edge("hub", "s3", RelReferences, 1.0).
		build()

	if clusters := NewAnalytics(g).DetectClusters(context.Background(), 2); len(clusters) != 0 {
		t.Errorf("sparse star should yield no clusters, got %v", clusters)
	}
}

func TestDetectClusters_NoOverlap(t *testing.T) {
	// Two disjoint triangles; each node may appear in one cluster at most.
	b := newTestGraph(t)
	for _, group := range [][]string{{"a1", "a2", "a3"}, {"b1", "b2", "b3"}} {
		for _, uid := range group {
			b.node(uid, NodeTypeNote)
		}
		for _, src := range group {
			for _, dst := range group {
				if src != dst {
					b.edge(src, dst, RelRelatedTo, 1.0)
				}
			}
		}
	}
	g := b.build()

	clusters := NewAnalytics(g).DetectClusters(context.Background(), 3)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %v, want 2", clusters)
	}

	seen := make(map[string]int)
	for _, c := range clusters {
		for _, uid := range c.Nodes {
			seen[uid]++
		}
	}
	for uid, count := range seen {
		if count > 1 {
			t.Errorf("node %s appears in %d clusters", uid, count)
		}
	}
}
