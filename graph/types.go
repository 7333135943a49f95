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

import "time"

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 10_000_000

	// DefaultEdgeWeight is the weight Operations assigns when a caller
	// does not specify one. Weights are semantic strength, conventionally
	// in 0..1; a zero weight makes an edge untraversable for weighted
	// path algorithms.
	DefaultEdgeWeight = 1.0
)

// NodeType classifies what a node represents.
//
// The set covers the content kinds of the surrounding curation system plus
// abstract entities. It is a string type rather than an int enum so callers
// can introduce additional kinds without a registry change.
type NodeType string

// Standard node types.
const (
	NodeTypeNote          NodeType = "Note"
	NodeTypeGoal          NodeType = "Goal"
	NodeTypeLogEntry      NodeType = "LogEntry"
	NodeTypeBookmark      NodeType = "Bookmark"
	NodeTypeKnowledgeItem NodeType = "KnowledgeItem"
	NodeTypeConcept       NodeType = "Concept"
	NodeTypeTag           NodeType = "Tag"
	NodeTypePerson        NodeType = "Person"
	NodeTypeOrganization  NodeType = "Organization"
)

// IsConceptual reports whether the node type is an abstract entity rather
// than a piece of content. Conceptual nodes survive catalog reconciliation
// even when no backing content exists.
func (t NodeType) IsConceptual() bool {
	return t == NodeTypeConcept || t == NodeTypeTag
}

// Node is an addressable vertex in the knowledge graph.
//
// The UID is externally assigned and is the node's identity: two nodes are
// the same node iff their UIDs are equal. Nodes are mutable; property
// updates bump the Modified timestamp.
type Node struct {
	// UID is the stable external identifier.
	UID string

	// Title is the human-readable name.
	Title string

	// Type classifies the node.
	Type NodeType

	// Properties is the typed key/value bag.
	Properties Properties

	// Created is when the node was first added.
	Created time.Time

	// Modified is bumped on every property update.
	Modified time.Time
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	out := *n
	out.Properties = n.Properties.Clone()
	return &out
}

// Edge is a directed, typed, weighted relationship between two node UIDs.
//
// Edge identity is the (Source, Target, Type) triple: at most one edge may
// exist per triple, and adding a second is a silent no-op. Bidirectional
// relationship types are represented as two mirrored edges of the same
// type, created together by AddEdgeMirrored.
type Edge struct {
	// Source is the UID of the origin node.
	Source string

	// Target is the UID of the destination node.
	Target string

	// Type is the relationship kind.
	Type RelType

	// Weight is the semantic strength, conventionally in 0..1.
	Weight float64

	// Properties is the typed key/value bag.
	Properties Properties

	// Created is when the edge was added.
	Created time.Time
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	out := *e
	out.Properties = e.Properties.Clone()
	return &out
}

// edgeKey is the identity triple used for O(1) exact edge lookup.
type edgeKey struct {
	source string
	target string
	rel    RelType
}

// pairKey is an ordered node pair, used to reference-count adjacency slots.
type pairKey struct {
	source string
	target string
}

// GraphStats summarizes the graph contents.
type GraphStats struct {
	// NodeCount is the total number of nodes.
	NodeCount int

	// EdgeCount is the total number of edges.
	EdgeCount int

	// NodeTypes maps each node type to its count.
	NodeTypes map[NodeType]int

	// RelationshipTypes maps each relationship type to its count.
	RelationshipTypes map[RelType]int
}
