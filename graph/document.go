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
	"fmt"
	"sort"
	"time"
)

// NodeRecord is the serialized form of a Node.
type NodeRecord struct {
	UID        string     `json:"uid"`
	Title      string     `json:"title"`
	Type       string     `json:"type"`
	Created    time.Time  `json:"created"`
	Modified   time.Time  `json:"modified"`
	Properties Properties `json:"properties,omitempty"`
}

// EdgeRecord is the serialized form of an Edge. The Type string is carried
// byte-for-byte so custom relationship names survive a round-trip.
type EdgeRecord struct {
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       string     `json:"type"`
	Weight     float64    `json:"weight"`
	Created    time.Time  `json:"created"`
	Properties Properties `json:"properties,omitempty"`
}

// DocumentStats summarizes a serialized graph.
type DocumentStats struct {
	NodeCount         int            `json:"node_count"`
	EdgeCount         int            `json:"edge_count"`
	NodeTypes         map[string]int `json:"node_types"`
	RelationshipTypes map[string]int `json:"relationship_types"`
}

// Document is the serializable snapshot of a graph.
//
// Nodes and edges are emitted in deterministic order (UID, then edge
// identity triple) so that two snapshots of the same graph are
// byte-identical.
type Document struct {
	Nodes []NodeRecord  `json:"nodes"`
	Edges []EdgeRecord  `json:"edges"`
	Stats DocumentStats `json:"stats"`
}

// NewNodeRecord converts a Node to its serialized form.
func NewNodeRecord(n *Node) NodeRecord {
	return NodeRecord{
		UID:        n.UID,
		Title:      n.Title,
		Type:       string(n.Type),
		Created:    n.Created,
		Modified:   n.Modified,
		Properties: n.Properties.Clone(),
	}
}

// NewEdgeRecord converts an Edge to its serialized form.
func NewEdgeRecord(e *Edge) EdgeRecord {
	return EdgeRecord{
		Source:     e.Source,
		Target:     e.Target,
		Type:       string(e.Type),
		Weight:     e.Weight,
		Created:    e.Created,
		Properties: e.Properties.Clone(),
	}
}

// Snapshot produces a serializable document covering the full graph.
//
// The document round-trips: FromDocument(g.Snapshot()) reconstructs an
// equivalent node/edge multiset, including weights, properties and
// byte-exact relationship-type strings.
func (g *Graph) Snapshot() *Document {
	doc := &Document{
		Nodes: make([]NodeRecord, 0, len(g.nodes)),
		Edges: make([]EdgeRecord, 0, len(g.edges)),
	}

	for _, uid := range g.NodeIDs() {
		doc.Nodes = append(doc.Nodes, NewNodeRecord(g.nodes[uid]))
	}

	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, NewEdgeRecord(e))
	}
	sort.Slice(doc.Edges, func(i, j int) bool {
		a, b := doc.Edges[i], doc.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Type < b.Type
	})

	stats := g.Stats()
	doc.Stats = DocumentStats{
		NodeCount:         stats.NodeCount,
		EdgeCount:         stats.EdgeCount,
		NodeTypes:         make(map[string]int, len(stats.NodeTypes)),
		RelationshipTypes: make(map[string]int, len(stats.RelationshipTypes)),
	}
	for t, c := range stats.NodeTypes {
		doc.Stats.NodeTypes[string(t)] = c
	}
	for t, c := range stats.RelationshipTypes {
		doc.Stats.RelationshipTypes[string(t)] = c
	}
	return doc
}

// FromDocument reconstructs a graph from a serialized document.
//
// Returns ErrMalformedDocument when an edge references a node absent from
// the document, or when the document carries a duplicate node UID.
func FromDocument(doc *Document, opts ...GraphOption) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrMalformedDocument)
	}

	g := NewGraph(opts...)
	for i := range doc.Nodes {
		rec := &doc.Nodes[i]
		node := &Node{
			UID:        rec.UID,
			Title:      rec.Title,
			Type:       NodeType(rec.Type),
			Properties: rec.Properties.Clone(),
			Created:    rec.Created,
			Modified:   rec.Modified,
		}
		if !g.AddNode(node) {
			return nil, fmt.Errorf("%w: duplicate or invalid node %q", ErrMalformedDocument, rec.UID)
		}
	}

	for i := range doc.Edges {
		rec := &doc.Edges[i]
		edge := &Edge{
			Source:     rec.Source,
			Target:     rec.Target,
			Type:       RelType(rec.Type),
			Weight:     rec.Weight,
			Properties: rec.Properties.Clone(),
			Created:    rec.Created,
		}
		if !g.AddEdge(edge) {
			return nil, fmt.Errorf("%w: edge %s -> %s (%s)", ErrMalformedDocument, rec.Source, rec.Target, rec.Type)
		}
	}
	return g, nil
}
