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

// chainFixture builds root -> l1a, l1b; l1a -> l2.
func chainFixture(t *testing.T) *Graph {
	t.Helper()
	return newTestGraph(t).
		node("root", NodeTypeNote).
		node("l1a", NodeTypeNote).
		node("l1b", NodeTypeNote).
		node("l2", NodeTypeNote).
		edge("root", "l1a", RelReferences, 1.0).
		edge("root", "l1b", RelReferences, 1.0).
		edge("l1a", "l2", RelReferences, 1.0).
		build()
}

func TestBFS_OrderAndDepths(t *testing.T) {
	tr := NewTraverser(chainFixture(t))

	depths := make(map[string]int)
	order := tr.BFS(context.Background(), "root", func(n *Node, depth int) bool {
		depths[n.UID] = depth
		return true
	})

	if !slices.Equal(order, []string{"root", "l1a", "l1b", "l2"}) {
		t.Errorf("order = %v", order)
	}
	if depths["root"] != 0 || depths["l1a"] != 1 || depths["l2"] != 2 {
		t.Errorf("depths = %v", depths)
	}
}

func TestBFS_VisitorPrunes(t *testing.T) {
	tr := NewTraverser(chainFixture(t))

	// Refusing l1a must prune l2 but leave the l1b branch alone.
	order := tr.BFS(context.Background(), "root", func(n *Node, depth int) bool {
		return n.UID != "l1a"
	})

	if slices.Contains(order, "l2") {
		t.Errorf("pruned subtree visited: %v", order)
	}
	if !slices.Contains(order, "l1b") {
		t.Errorf("sibling branch should survive pruning: %v", order)
	}
	// The pruned node itself is still visited.
	if !slices.Contains(order, "l1a") {
		t.Errorf("pruned node should still appear: %v", order)
	}
}

func TestBFS_UnknownStart(t *testing.T) {
	tr := NewTraverser(chainFixture(t))
	if got := tr.BFS(context.Background(), "ghost", nil); got != nil {
		t.Errorf("unknown start should yield nil, got %v", got)
	}
}

func TestDFS_OrderAndPruning(t *testing.T) {
	tr := NewTraverser(chainFixture(t))
	ctx := context.Background()

	// Pre-order with smallest UID first: root, l1a, l2, l1b.
	order := tr.DFS(ctx, "root", nil)
	if !slices.Equal(order, []string{"root", "l1a", "l2", "l1b"}) {
		t.Errorf("order = %v", order)
	}

	pruned := tr.DFS(ctx, "root", func(n *Node, depth int) bool {
		return n.UID != "l1a"
	})
	if slices.Contains(pruned, "l2") {
		t.Errorf("pruned subtree visited: %v", pruned)
	}
}

func TestConnectedComponent(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		node("island", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("c", "b", RelReferences, 1.0).
		build()
	tr := NewTraverser(g)

	// Direction is ignored; c joins through its edge into b.
	got := tr.ConnectedComponent(context.Background(), "a")
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("component = %v, want [a b c]", got)
	}

	if got := tr.ConnectedComponent(context.Background(), "island"); !slices.Equal(got, []string{"island"}) {
		t.Errorf("island component = %v", got)
	}
}

func TestNeighborhood(t *testing.T) {
	g := newTestGraph(t).
		node("center", NodeTypeNote).
		node("out1", NodeTypeNote).
		node("out2", NodeTypeNote).
		node("in1", NodeTypeNote).
		edge("center", "out1", RelReferences, 1.0).
		edge("out1", "out2", RelReferences, 1.0).
		edge("in1", "center", RelReferences, 1.0).
		build()
	tr := NewTraverser(g)
	ctx := context.Background()

	outgoing := tr.Neighborhood(ctx, "center", 2, false)
	want := map[string]int{"center": 0, "out1": 1, "out2": 2}
	if len(outgoing) != len(want) {
		t.Fatalf("neighborhood = %v, want %v", outgoing, want)
	}
	for uid, d := range want {
		if outgoing[uid] != d {
			t.Errorf("dist[%s] = %d, want %d", uid, outgoing[uid], d)
		}
	}

	withIncoming := tr.Neighborhood(ctx, "center", 1, true)
	if withIncoming["in1"] != 1 {
		t.Errorf("incoming neighbor missing: %v", withIncoming)
	}
	if _, present := withIncoming["out2"]; present {
		t.Errorf("radius 1 should exclude out2: %v", withIncoming)
	}
}

func TestNeighborhood_InvalidInputs(t *testing.T) {
	tr := NewTraverser(chainFixture(t))
	ctx := context.Background()

	if got := tr.Neighborhood(ctx, "ghost", 2, false); got != nil {
		t.Errorf("unknown center should yield nil, got %v", got)
	}
	if got := tr.Neighborhood(ctx, "root", -1, false); got != nil {
		t.Errorf("negative radius should yield nil, got %v", got)
	}
}
