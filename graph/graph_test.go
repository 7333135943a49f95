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
	"slices"
	"testing"
)

// =============================================================================
// Test helpers
// =============================================================================

// testGraphBuilder assembles small fixture graphs for tests.
type testGraphBuilder struct {
	g *Graph
	t *testing.T
}

func newTestGraph(t *testing.T, opts ...GraphOption) *testGraphBuilder {
	t.Helper()
	return &testGraphBuilder{g: NewGraph(opts...), t: t}
}

func (b *testGraphBuilder) node(uid string, nodeType NodeType) *testGraphBuilder {
	b.t.Helper()
	if !b.g.AddNode(&Node{UID: uid, Title: uid, Type: nodeType}) {
		b.t.Fatalf("fixture: AddNode(%q) failed", uid)
	}
	return b
}

func (b *testGraphBuilder) edge(source, target string, rel RelType, weight float64) *testGraphBuilder {
	b.t.Helper()
	if !b.g.AddEdge(&Edge{Source: source, Target: target, Type: rel, Weight: weight}) {
		b.t.Fatalf("fixture: AddEdge(%q -> %q, %s) failed", source, target, rel)
	}
	return b
}

func (b *testGraphBuilder) build() *Graph {
	return b.g
}

// =============================================================================
// Node lifecycle
// =============================================================================

func TestAddNode(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{name: "valid node", node: &Node{UID: "note-1", Type: NodeTypeNote}, want: true},
		{name: "nil node", node: nil, want: false},
		{name: "empty uid", node: &Node{Type: NodeTypeNote}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			if got := g.AddNode(tt.node); got != tt.want {
				t.Errorf("AddNode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddNode_DuplicateUID(t *testing.T) {
	g := NewGraph()
	if !g.AddNode(&Node{UID: "note-1", Type: NodeTypeNote}) {
		t.Fatal("first AddNode failed")
	}
	if g.AddNode(&Node{UID: "note-1", Type: NodeTypeGoal}) {
		t.Error("duplicate UID should be rejected")
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}

	// Original node untouched.
	node, _ := g.GetNode("note-1")
	if node.Type != NodeTypeNote {
		t.Errorf("node type = %s, want %s", node.Type, NodeTypeNote)
	}
}

func TestAddNode_FillsTimestamps(t *testing.T) {
	g := NewGraph()
	node := &Node{UID: "note-1", Type: NodeTypeNote}
	g.AddNode(node)

	if node.Created.IsZero() {
		t.Error("Created not filled")
	}
	if node.Modified.IsZero() {
		t.Error("Modified not filled")
	}
	if node.Properties == nil {
		t.Error("Properties not initialized")
	}
}

func TestAddNode_CapacityLimit(t *testing.T) {
	g := NewGraph(WithMaxNodes(2))
	g.AddNode(&Node{UID: "a", Type: NodeTypeNote})
	g.AddNode(&Node{UID: "b", Type: NodeTypeNote})

	if g.AddNode(&Node{UID: "c", Type: NodeTypeNote}) {
		t.Error("node over capacity should be rejected")
	}
}

func TestRemoveNode_CascadesEdges(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("b", "c", RelReferences, 1.0).
		edge("c", "a", RelReferences, 1.0).
		build()

	if !g.RemoveNode("b") {
		t.Fatal("RemoveNode failed")
	}

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 (only c->a should survive)", g.EdgeCount())
	}
	if g.HasEdgeBetween("a", "b") || g.HasEdgeBetween("b", "c") {
		t.Error("adjacency slots touching removed node not cleared")
	}
	if len(g.Neighbors("a")) != 0 {
		t.Errorf("Neighbors(a) = %v, want empty", g.Neighbors("a"))
	}
}

// =============================================================================
// Edge lifecycle
// =============================================================================

func TestAddEdge_Rejections(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		build()

	tests := []struct {
		name string
		edge *Edge
	}{
		{name: "nil edge", edge: nil},
		{name: "self loop", edge: &Edge{Source: "a", Target: "a", Type: RelRelatedTo}},
		{name: "missing source", edge: &Edge{Source: "ghost", Target: "b", Type: RelRelatedTo}},
		{name: "missing target", edge: &Edge{Source: "a", Target: "ghost", Type: RelRelatedTo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.AddEdge(tt.edge) {
				t.Error("AddEdge should have returned false")
			}
		})
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
}

func TestAddEdge_DuplicateTripleIsNoOp(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		edge("a", "b", RelReferences, 0.5).
		build()

	if g.AddEdge(&Edge{Source: "a", Target: "b", Type: RelReferences, Weight: 0.9}) {
		t.Error("duplicate identity triple should be a no-op")
	}

	// First write wins.
	e, _ := g.GetEdge("a", "b", RelReferences)
	if e.Weight != 0.5 {
		t.Errorf("weight = %v, want 0.5", e.Weight)
	}

	// Same pair, different type is a distinct edge.
	if !g.AddEdge(&Edge{Source: "a", Target: "b", Type: RelCites, Weight: 0.9}) {
		t.Error("distinct type between same pair should be accepted")
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}
}

func TestRemoveEdge_AdjacencySlotSurvivesOtherTypes(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("a", "b", RelCites, 1.0).
		build()

	if !g.RemoveEdge("a", "b", RelReferences) {
		t.Fatal("RemoveEdge failed")
	}
	if !g.HasEdgeBetween("a", "b") {
		t.Error("adjacency slot cleared while another edge type remains")
	}
	if !slices.Equal(g.Neighbors("a"), []string{"b"}) {
		t.Errorf("Neighbors(a) = %v, want [b]", g.Neighbors("a"))
	}

	if !g.RemoveEdge("a", "b", RelCites) {
		t.Fatal("second RemoveEdge failed")
	}
	if g.HasEdgeBetween("a", "b") {
		t.Error("adjacency slot not cleared after last edge removed")
	}
	if len(g.Neighbors("a")) != 0 {
		t.Errorf("Neighbors(a) = %v, want empty", g.Neighbors("a"))
	}
}

func TestRemoveEdge_UnknownTriple(t *testing.T) {
	g := newTestGraph(t).node("a", NodeTypeNote).node("b", NodeTypeNote).build()
	if g.RemoveEdge("a", "b", RelReferences) {
		t.Error("removing a nonexistent edge should return false")
	}
}

// =============================================================================
// Bidirectional mirroring
// =============================================================================

func TestAddEdgeMirrored(t *testing.T) {
	tests := []struct {
		name      string
		rel       RelType
		wantEdges int
	}{
		{name: "bidirectional type mirrors", rel: RelRelatedTo, wantEdges: 2},
		{name: "directed type does not mirror", rel: RelReferences, wantEdges: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t).
				node("a", NodeTypeNote).
				node("b", NodeTypeNote).
				build()

			if !g.AddEdgeMirrored(&Edge{Source: "a", Target: "b", Type: tt.rel, Weight: 0.8}) {
				t.Fatal("AddEdgeMirrored failed")
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if tt.wantEdges == 2 {
				reverse, ok := g.GetEdge("b", "a", tt.rel)
				if !ok {
					t.Fatal("reverse edge missing")
				}
				if reverse.Weight != 0.8 {
					t.Errorf("reverse weight = %v, want 0.8", reverse.Weight)
				}
			}
		})
	}
}

func TestRemoveEdgeMirrored(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		build()
	g.AddEdgeMirrored(&Edge{Source: "a", Target: "b", Type: RelSimilarTo, Weight: 1.0})

	if !g.RemoveEdgeMirrored("a", "b", RelSimilarTo) {
		t.Fatal("RemoveEdgeMirrored failed")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0 (mirror should be removed too)", g.EdgeCount())
	}
}

// =============================================================================
// Neighbors and degrees
// =============================================================================

func TestNeighbors_SortedAndFiltered(t *testing.T) {
	g := newTestGraph(t).
		node("hub", NodeTypeNote).
		node("z", NodeTypeNote).
		node("a", NodeTypeNote).
		node("m", NodeTypeNote).
		edge("hub", "z", RelReferences, 1.0).
		edge("hub", "a", RelCites, 1.0).
		edge("hub", "m", RelReferences, 1.0).
		build()

	if got := g.Neighbors("hub"); !slices.Equal(got, []string{"a", "m", "z"}) {
		t.Errorf("Neighbors = %v, want sorted [a m z]", got)
	}
	if got := g.Neighbors("hub", RelReferences); !slices.Equal(got, []string{"m", "z"}) {
		t.Errorf("filtered Neighbors = %v, want [m z]", got)
	}
	if got := g.IncomingNeighbors("a"); !slices.Equal(got, []string{"hub"}) {
		t.Errorf("IncomingNeighbors = %v, want [hub]", got)
	}
}

func TestDegrees(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("a", "b", RelCites, 1.0).
		edge("c", "a", RelReferences, 1.0).
		build()

	// OutDegree/InDegree count distinct adjacency slots, Degree counts edges.
	if got := g.OutDegree("a"); got != 1 {
		t.Errorf("OutDegree(a) = %d, want 1", got)
	}
	if got := g.InDegree("a"); got != 1 {
		t.Errorf("InDegree(a) = %d, want 1", got)
	}
	if got := g.Degree("a"); got != 3 {
		t.Errorf("Degree(a) = %d, want 3", got)
	}
}

// =============================================================================
// Subgraph and stats
// =============================================================================

func TestSubgraph_Induced(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("b", "c", RelReferences, 1.0).
		build()

	sub := g.Subgraph([]string{"a", "b", "ghost"})

	if sub.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 (b->c crosses the boundary)", sub.EdgeCount())
	}

	// Deep copy: mutating the subgraph's node must not touch the original.
	node, _ := sub.GetNode("a")
	node.Title = "changed"
	original, _ := g.GetNode("a")
	if original.Title == "changed" {
		t.Error("subgraph shares node memory with original")
	}
}

func TestStats(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeConcept).
		edge("a", "b", RelReferences, 1.0).
		edge("a", "c", RelCategorizedAs, 1.0).
		edge("b", "c", RelCategorizedAs, 1.0).
		build()

	stats := g.Stats()
	if stats.NodeCount != 3 || stats.EdgeCount != 3 {
		t.Errorf("counts = (%d, %d), want (3, 3)", stats.NodeCount, stats.EdgeCount)
	}
	if stats.NodeTypes[NodeTypeNote] != 2 {
		t.Errorf("NodeTypes[Note] = %d, want 2", stats.NodeTypes[NodeTypeNote])
	}
	if stats.RelationshipTypes[RelCategorizedAs] != 2 {
		t.Errorf("RelationshipTypes[categorized_as] = %d, want 2", stats.RelationshipTypes[RelCategorizedAs])
	}
}

func TestNodeIDs_Sorted(t *testing.T) {
	g := newTestGraph(t).
		node("zeta", NodeTypeNote).
		node("alpha", NodeTypeNote).
		node("mid", NodeTypeNote).
		build()

	if got := g.NodeIDs(); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("NodeIDs = %v, want sorted", got)
	}
}
