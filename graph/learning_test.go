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

func TestLearningPath_DirectPrerequisite(t *testing.T) {
	g := newTestGraph(t).
		node("ki-1", NodeTypeKnowledgeItem).
		node("ki-2", NodeTypeKnowledgeItem).
		edge("ki-1", "ki-2", RelPrerequisiteOf, 0.9).
		build()

	path := NewTraverser(g).LearningPath(context.Background(), "ki-1", "ki-2")
	if !slices.Equal(path, []string{"ki-1", "ki-2"}) {
		t.Errorf("path = %v, want [ki-1 ki-2]", path)
	}
}

func TestLearningPath_PicksBestScore(t *testing.T) {
	// Two routes basics -> advanced: direct weak edge (0.2/2 = 0.1)
	// versus strong two-hop route ((0.9+0.9)/3 = 0.6).
	g := newTestGraph(t).
		node("basics", NodeTypeKnowledgeItem).
		node("middle", NodeTypeKnowledgeItem).
		node("advanced", NodeTypeKnowledgeItem).
		edge("basics", "advanced", RelPrerequisiteOf, 0.2).
		edge("basics", "middle", RelPrerequisiteOf, 0.9).
		edge("middle", "advanced", RelBuildsOn, 0.9).
		build()

	path := NewTraverser(g).LearningPath(context.Background(), "basics", "advanced")
	if !slices.Equal(path, []string{"basics", "middle", "advanced"}) {
		t.Errorf("path = %v, want the strong two-hop route", path)
	}
}

func TestLearningPath_IgnoresOtherEdgeTypes(t *testing.T) {
	g := newTestGraph(t).
		node("a", NodeTypeKnowledgeItem).
		node("b", NodeTypeKnowledgeItem).
		edge("a", "b", RelReferences, 1.0).
		build()

	if path := NewTraverser(g).LearningPath(context.Background(), "a", "b"); path != nil {
		t.Errorf("references edge should not form a learning path, got %v", path)
	}
}

func TestLearningPath_UnknownEndpoint(t *testing.T) {
	g := newTestGraph(t).node("a", NodeTypeKnowledgeItem).build()
	if path := NewTraverser(g).LearningPath(context.Background(), "a", "ghost"); path != nil {
		t.Errorf("unknown goal should yield nil, got %v", path)
	}
}

func TestExploreTopic(t *testing.T) {
	g := newTestGraph(t).
		node("topic", NodeTypeConcept).
		node("near", NodeTypeNote).
		node("far", NodeTypeNote).
		node("deep", NodeTypeNote).
		node("deeper", NodeTypeNote).
		edge("topic", "near", RelRelatedTo, 1.0).
		edge("near", "far", RelRelatedTo, 1.0).
		edge("far", "deep", RelRelatedTo, 1.0).
		edge("deep", "deeper", RelRelatedTo, 1.0).
		build()

	results := NewTraverser(g).ExploreTopic(context.Background(), "topic", 10)

	byUID := make(map[string]TopicNode, len(results))
	for _, r := range results {
		byUID[r.UID] = r
	}

	// Relevance decays 0.7 per hop with unit edge weights.
	if !almostEqual(byUID["near"].Relevance, 0.7) {
		t.Errorf("near = %v, want 0.7", byUID["near"].Relevance)
	}
	if !almostEqual(byUID["far"].Relevance, 0.49) {
		t.Errorf("far = %v, want 0.49", byUID["far"].Relevance)
	}
	// Depth cap 3: deeper (depth 4) is out of range.
	if _, present := byUID["deeper"]; present {
		t.Errorf("depth-4 node should be excluded: %v", results)
	}

	// Sorted by relevance descending.
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Fatalf("results not sorted: %v", results)
		}
	}
}

func TestExploreTopic_EdgeWeightScalesRelevance(t *testing.T) {
	g := newTestGraph(t).
		node("topic", NodeTypeConcept).
		node("strong", NodeTypeNote).
		node("weak", NodeTypeNote).
		edge("topic", "strong", RelRelatedTo, 1.0).
		edge("topic", "weak", RelRelatedTo, 0.3).
		build()

	results := NewTraverser(g).ExploreTopic(context.Background(), "topic", 5)
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if results[0].UID != "strong" {
		t.Errorf("top = %s, want strong", results[0].UID)
	}
	if !almostEqual(results[1].Relevance, 0.7*0.3) {
		t.Errorf("weak = %v, want 0.21", results[1].Relevance)
	}
}

func TestExploreTopic_MaxNodesTruncates(t *testing.T) {
	b := newTestGraph(t).node("topic", NodeTypeConcept)
	for _, uid := range []string{"n1", "n2", "n3", "n4", "n5"} {
		b.node(uid, NodeTypeNote)
		b.edge("topic", uid, RelRelatedTo, 1.0)
	}
	g := b.build()

	results := NewTraverser(g).ExploreTopic(context.Background(), "topic", 2)
	if len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
}

func TestBreadcrumbPath_ExplicitRoot(t *testing.T) {
	g := newTestGraph(t).
		node("root", NodeTypeNote).
		node("mid", NodeTypeNote).
		node("leaf", NodeTypeNote).
		edge("root", "mid", RelContains, 1.0).
		edge("mid", "leaf", RelContains, 1.0).
		build()

	path := NewTraverser(g).BreadcrumbPath(context.Background(), "leaf", "root")
	if !slices.Equal(path, []string{"root", "mid", "leaf"}) {
		t.Errorf("path = %v", path)
	}
}

func TestBreadcrumbPath_InfersRoot(t *testing.T) {
	// Two zero-incoming ancestors; big-root has more outgoing connections
	// and must win the inference.
	g := newTestGraph(t).
		node("big-root", NodeTypeNote).
		node("small-root", NodeTypeNote).
		node("mid", NodeTypeNote).
		node("leaf", NodeTypeNote).
		node("extra", NodeTypeNote).
		edge("big-root", "mid", RelContains, 1.0).
		edge("big-root", "extra", RelContains, 1.0).
		edge("small-root", "mid", RelContains, 1.0).
		edge("mid", "leaf", RelContains, 1.0).
		build()

	path := NewTraverser(g).BreadcrumbPath(context.Background(), "leaf", "")
	if !slices.Equal(path, []string{"big-root", "mid", "leaf"}) {
		t.Errorf("path = %v, want via big-root", path)
	}
}

func TestBreadcrumbPath_NoAncestors(t *testing.T) {
	// A pure cycle has no zero-incoming ancestor; fall back to the target.
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("b", "a", RelReferences, 1.0).
		build()

	path := NewTraverser(g).BreadcrumbPath(context.Background(), "a", "")
	if !slices.Equal(path, []string{"a"}) {
		t.Errorf("path = %v, want [a]", path)
	}
}

func TestSuggestNextNodes(t *testing.T) {
	// Equal weights: builds_on (×1.5) must outrank prerequisite_of
	// (×1.3) and related_to (×1.0).
	g := newTestGraph(t).
		node("current", NodeTypeKnowledgeItem).
		node("builds", NodeTypeKnowledgeItem).
		node("prereq", NodeTypeKnowledgeItem).
		node("related", NodeTypeKnowledgeItem).
		node("seen", NodeTypeKnowledgeItem).
		edge("current", "builds", RelBuildsOn, 0.8).
		edge("current", "prereq", RelPrerequisiteOf, 0.8).
		edge("current", "related", RelRelatedTo, 0.8).
		edge("current", "seen", RelBuildsOn, 0.8).
		build()

	next := NewTraverser(g).SuggestNextNodes(context.Background(), "current", []string{"seen"}, 10)

	if len(next) != 3 {
		t.Fatalf("next = %v, want 3 (seen excluded)", next)
	}
	if next[0].UID != "builds" || next[1].UID != "prereq" || next[2].UID != "related" {
		t.Errorf("order = [%s %s %s], want [builds prereq related]",
			next[0].UID, next[1].UID, next[2].UID)
	}
	if !almostEqual(next[0].Score, 0.8*1.5) {
		t.Errorf("builds score = %v, want 1.2", next[0].Score)
	}
	if next[0].Reason == "" {
		t.Error("suggestions should carry a reason")
	}
}

func TestSuggestNextNodes_Limit(t *testing.T) {
	g := newTestGraph(t).
		node("current", NodeTypeNote).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		edge("current", "a", RelRelatedTo, 0.9).
		edge("current", "b", RelRelatedTo, 0.5).
		build()

	next := NewTraverser(g).SuggestNextNodes(context.Background(), "current", nil, 1)
	if len(next) != 1 || next[0].UID != "a" {
		t.Errorf("next = %v, want just [a]", next)
	}
}

func TestFindKnowledgeClusters(t *testing.T) {
	// Triangle {a, b, c} and pair {x, y}; minSize 2 excludes singletons.
	g := newTestGraph(t).
		node("a", NodeTypeNote).
		node("b", NodeTypeNote).
		node("c", NodeTypeNote).
		node("x", NodeTypeNote).
		node("y", NodeTypeNote).
		node("lone", NodeTypeNote).
		edge("a", "b", RelReferences, 1.0).
		edge("b", "c", RelReferences, 1.0).
		edge("c", "a", RelReferences, 1.0).
		edge("a", "c", RelCites, 1.0).
		edge("x", "y", RelReferences, 1.0).
		build()

	clusters := NewTraverser(g).FindKnowledgeClusters(context.Background(), 2)

	if len(clusters) != 2 {
		t.Fatalf("clusters = %v, want 2", clusters)
	}
	first := clusters[0]
	if !slices.Equal(first.Members, []string{"a", "b", "c"}) {
		t.Errorf("largest = %v, want [a b c]", first.Members)
	}
	// Central node is the highest total-degree member: a (2 out + 1 in).
	if first.CentralNode != "a" {
		t.Errorf("central = %s, want a", first.CentralNode)
	}
	// 4 distinct directed adjacency slots over 3·2 ordered pairs.
	if !almostEqual(first.Density, 4.0/6) {
		t.Errorf("density = %v, want 4/6", first.Density)
	}
	if !slices.Equal(clusters[1].Members, []string{"x", "y"}) {
		t.Errorf("second = %v, want [x y]", clusters[1].Members)
	}
}
