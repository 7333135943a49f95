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
	"time"
)

// GraphOptions configures Graph behavior and limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 10,000,000
	MaxEdges int

	// Registry supplies relationship-type metadata and constraints.
	// Default: NewRegistry() with the standard vocabulary.
	Registry *Registry
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
func WithMaxEdges(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxEdges = n
	}
}

// WithRegistry sets the relationship registry the graph consults for
// symmetry metadata. Sharing one registry across graph and operations
// keeps custom types visible everywhere.
func WithRegistry(r *Registry) GraphOption {
	return func(o *GraphOptions) {
		o.Registry = r
	}
}

// Graph is a directed multigraph over typed knowledge nodes.
//
// Structure:
//
//   - nodes: UID → *Node, O(1) lookup
//   - edges: insertion-ordered edge list
//   - outgoing/incoming: type-agnostic adjacency sets for generic traversal
//   - byTriple: (source, target, type) → *Edge for O(1) exact lookup
//   - pairCount: ordered-pair edge counts, so an adjacency slot is cleared
//     only when no edge of any type remains between that pair
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent mutation. Read-only consumers
//	(Analytics, Traverser) may run concurrently with each other as long
//	as no mutation happens at the same time.
type Graph struct {
	registry *Registry

	nodes     map[string]*Node
	edges     []*Edge
	outgoing  map[string]map[string]struct{}
	incoming  map[string]map[string]struct{}
	byTriple  map[edgeKey]*Edge
	pairCount map[pairKey]int

	options GraphOptions
}

// NewGraph creates an empty graph.
//
// Example:
//
//	g := graph.NewGraph()
//	g.AddNode(&graph.Node{UID: "note-1", Title: "Zettelkasten", Type: graph.NodeTypeNote})
func NewGraph(opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Registry == nil {
		options.Registry = NewRegistry()
	}
	_ = initMetrics()

	return &Graph{
		registry:  options.Registry,
		nodes:     make(map[string]*Node),
		edges:     make([]*Edge, 0),
		outgoing:  make(map[string]map[string]struct{}),
		incoming:  make(map[string]map[string]struct{}),
		byTriple:  make(map[edgeKey]*Edge),
		pairCount: make(map[pairKey]int),
		options:   options,
	}
}

// Registry returns the relationship registry the graph consults.
func (g *Graph) Registry() *Registry {
	return g.registry
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AddNode adds a node to the graph.
//
// Returns false without mutation when the node is nil, has an empty UID,
// the UID already exists, or the graph is at node capacity. Created and
// Modified timestamps are filled in when zero.
func (g *Graph) AddNode(node *Node) bool {
	if node == nil || node.UID == "" {
		return false
	}
	if _, exists := g.nodes[node.UID]; exists {
		return false
	}
	if len(g.nodes) >= g.options.MaxNodes {
		return false
	}

	now := time.Now().UTC()
	if node.Created.IsZero() {
		node.Created = now
	}
	if node.Modified.IsZero() {
		node.Modified = node.Created
	}
	if node.Properties == nil {
		node.Properties = make(Properties)
	}

	g.nodes[node.UID] = node
	nodesAdded.Add(1)
	return true
}

// GetNode retrieves a node by UID. O(1).
func (g *Graph) GetNode(uid string) (*Node, bool) {
	node, ok := g.nodes[uid]
	return node, ok
}

// HasNode reports whether a node with the given UID exists.
func (g *Graph) HasNode(uid string) bool {
	_, ok := g.nodes[uid]
	return ok
}

// RemoveNode removes a node and every edge touching it.
//
// Returns false when the UID is unknown. All adjacency slots referencing
// the node are cleared as part of the cascade.
func (g *Graph) RemoveNode(uid string) bool {
	if _, ok := g.nodes[uid]; !ok {
		return false
	}

	// Cascade: drop every edge touching the node.
	kept := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.Source == uid || e.Target == uid {
			g.dropEdgeIndexes(e)
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	delete(g.outgoing, uid)
	delete(g.incoming, uid)
	delete(g.nodes, uid)
	nodesRemoved.Add(1)
	return true
}

// AddEdge adds a directed edge.
//
// Returns false without mutation when the edge is nil, either endpoint is
// missing, an edge with the same (source, target, type) triple already
// exists, or the graph is at edge capacity. Self-loops are rejected.
// A zero Created timestamp is filled in. Weight is stored as given; a
// zero weight means "no usable strength" and renders the edge
// untraversable for weighted path algorithms.
func (g *Graph) AddEdge(edge *Edge) bool {
	if edge == nil || edge.Source == edge.Target {
		return false
	}
	if _, ok := g.nodes[edge.Source]; !ok {
		return false
	}
	if _, ok := g.nodes[edge.Target]; !ok {
		return false
	}

	key := edgeKey{source: edge.Source, target: edge.Target, rel: edge.Type}
	if _, dup := g.byTriple[key]; dup {
		// Duplicate identity triple: silent no-op.
		return false
	}
	if len(g.edges) >= g.options.MaxEdges {
		return false
	}

	if edge.Created.IsZero() {
		edge.Created = time.Now().UTC()
	}
	if edge.Properties == nil {
		edge.Properties = make(Properties)
	}

	g.edges = append(g.edges, edge)
	g.byTriple[key] = edge

	pair := pairKey{source: edge.Source, target: edge.Target}
	g.pairCount[pair]++
	addToSet(g.outgoing, edge.Source, edge.Target)
	addToSet(g.incoming, edge.Target, edge.Source)
	edgesAdded.Add(1)
	return true
}

// AddEdgeMirrored adds an edge respecting the symmetry metadata of its type.
//
// The forward edge is always attempted. When the registry marks the type
// bidirectional, the identical-type reverse edge is also added (a reverse
// duplicate is ignored). This is the single place where the mirroring
// invariant lives; callers must not hand-roll reverse edges.
//
// Returns false iff the forward edge was not added.
func (g *Graph) AddEdgeMirrored(edge *Edge) bool {
	if edge == nil {
		return false
	}
	if !g.AddEdge(edge) {
		return false
	}

	meta, ok := g.registry.Metadata(edge.Type)
	if ok && meta.Bidirectional {
		reverse := &Edge{
			Source:     edge.Target,
			Target:     edge.Source,
			Type:       edge.Type,
			Weight:     edge.Weight,
			Properties: edge.Properties.Clone(),
			Created:    edge.Created,
		}
		g.AddEdge(reverse)
	}
	return true
}

// GetEdge retrieves an edge by its identity triple. O(1).
func (g *Graph) GetEdge(source, target string, rel RelType) (*Edge, bool) {
	e, ok := g.byTriple[edgeKey{source: source, target: target, rel: rel}]
	return e, ok
}

// RemoveEdge removes the edge with the given identity triple.
//
// The adjacency slot between the ordered pair is cleared only when no
// edge of any type remains between that pair. Returns false when the
// triple is unknown.
func (g *Graph) RemoveEdge(source, target string, rel RelType) bool {
	key := edgeKey{source: source, target: target, rel: rel}
	edge, ok := g.byTriple[key]
	if !ok {
		return false
	}

	g.dropEdgeIndexes(edge)
	for i, e := range g.edges {
		if e == edge {
			g.edges = slices.Delete(g.edges, i, i+1)
			break
		}
	}
	return true
}

// RemoveEdgeMirrored removes an edge and, for bidirectional types, its
// identical-type reverse edge. Returns false iff the forward edge was
// not found.
func (g *Graph) RemoveEdgeMirrored(source, target string, rel RelType) bool {
	if !g.RemoveEdge(source, target, rel) {
		return false
	}
	meta, ok := g.registry.Metadata(rel)
	if ok && meta.Bidirectional {
		g.RemoveEdge(target, source, rel)
	}
	return true
}

// dropEdgeIndexes removes an edge from the triple index, pair counts and
// adjacency sets. The edge slice itself is the caller's responsibility.
func (g *Graph) dropEdgeIndexes(edge *Edge) {
	delete(g.byTriple, edgeKey{source: edge.Source, target: edge.Target, rel: edge.Type})

	pair := pairKey{source: edge.Source, target: edge.Target}
	g.pairCount[pair]--
	if g.pairCount[pair] <= 0 {
		delete(g.pairCount, pair)
		removeFromSet(g.outgoing, edge.Source, edge.Target)
		removeFromSet(g.incoming, edge.Target, edge.Source)
	}
	edgesRemoved.Add(1)
}

// HasEdgeBetween reports whether any edge exists from source to target.
func (g *Graph) HasEdgeBetween(source, target string) bool {
	return g.pairCount[pairKey{source: source, target: target}] > 0
}

// Neighbors returns the UIDs reachable over outgoing edges, sorted.
//
// Unfiltered lookup reads the adjacency set directly; filtering by
// relationship type scans the node's outgoing edges.
func (g *Graph) Neighbors(uid string, types ...RelType) []string {
	if len(types) == 0 {
		return sortedSetKeys(g.outgoing[uid])
	}

	seen := make(map[string]struct{})
	for _, e := range g.EdgesFrom(uid, types...) {
		seen[e.Target] = struct{}{}
	}
	return sortedSetKeys(seen)
}

// IncomingNeighbors returns the UIDs with an edge pointing at uid, sorted.
func (g *Graph) IncomingNeighbors(uid string, types ...RelType) []string {
	if len(types) == 0 {
		return sortedSetKeys(g.incoming[uid])
	}

	seen := make(map[string]struct{})
	for _, e := range g.EdgesTo(uid, types...) {
		seen[e.Source] = struct{}{}
	}
	return sortedSetKeys(seen)
}

// EdgesFrom returns the edges originating at uid, optionally filtered by
// relationship type. O(E).
func (g *Graph) EdgesFrom(uid string, types ...RelType) []*Edge {
	out := make([]*Edge, 0)
	for _, e := range g.edges {
		if e.Source != uid {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EdgesTo returns the edges terminating at uid, optionally filtered by
// relationship type. O(E).
func (g *Graph) EdgesTo(uid string, types ...RelType) []*Edge {
	out := make([]*Edge, 0)
	for _, e := range g.edges {
		if e.Target != uid {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Degree returns the total number of edges touching uid (in + out).
func (g *Graph) Degree(uid string) int {
	total := 0
	for _, e := range g.edges {
		if e.Source == uid || e.Target == uid {
			total++
		}
	}
	return total
}

// OutDegree returns the number of distinct outgoing adjacency slots.
func (g *Graph) OutDegree(uid string) int {
	return len(g.outgoing[uid])
}

// InDegree returns the number of distinct incoming adjacency slots.
func (g *Graph) InDegree(uid string) int {
	return len(g.incoming[uid])
}

// Subgraph returns the induced subgraph over the given UIDs.
//
// Unknown UIDs are skipped; an edge is kept only when both endpoints are
// in the set. Nodes and edges are deep-copied so mutating the subgraph
// does not affect the original. The registry is shared.
func (g *Graph) Subgraph(uids []string) *Graph {
	sub := NewGraph(WithRegistry(g.registry),
		WithMaxNodes(g.options.MaxNodes),
		WithMaxEdges(g.options.MaxEdges),
	)

	member := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		node, ok := g.nodes[uid]
		if !ok {
			continue
		}
		if _, dup := member[uid]; dup {
			continue
		}
		member[uid] = struct{}{}
		sub.AddNode(node.Clone())
	}

	for _, e := range g.edges {
		if _, ok := member[e.Source]; !ok {
			continue
		}
		if _, ok := member[e.Target]; !ok {
			continue
		}
		sub.AddEdge(e.Clone())
	}
	return sub
}

// Nodes returns an iterator over all nodes, usable with range.
//
// Iteration order is the map order and therefore unspecified; use
// NodeIDs for deterministic order.
func (g *Graph) Nodes() func(yield func(string, *Node) bool) {
	return func(yield func(string, *Node) bool) {
		for uid, node := range g.nodes {
			if !yield(uid, node) {
				return
			}
		}
	}
}

// NodeIDs returns all node UIDs in sorted order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, 0, len(g.nodes))
	for uid := range g.nodes {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}

// Edges returns the internal edge slice. Callers must not modify it.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Stats returns node/edge counts broken down by type.
func (g *Graph) Stats() GraphStats {
	nodeTypes := make(map[NodeType]int)
	for _, n := range g.nodes {
		nodeTypes[n.Type]++
	}
	relTypes := make(map[RelType]int)
	for _, e := range g.edges {
		relTypes[e.Type]++
	}
	return GraphStats{
		NodeCount:         len(g.nodes),
		EdgeCount:         len(g.edges),
		NodeTypes:         nodeTypes,
		RelationshipTypes: relTypes,
	}
}

// addToSet inserts member into the set stored under key, allocating the
// set on first use.
func addToSet(sets map[string]map[string]struct{}, key, member string) {
	set, ok := sets[key]
	if !ok {
		set = make(map[string]struct{})
		sets[key] = set
	}
	set[member] = struct{}{}
}

// removeFromSet deletes member from the set under key, dropping the set
// entirely once empty.
func removeFromSet(sets map[string]map[string]struct{}, key, member string) {
	set, ok := sets[key]
	if !ok {
		return
	}
	delete(set, member)
	if len(set) == 0 {
		delete(sets, key)
	}
}

// sortedSetKeys returns the keys of a set in sorted order.
func sortedSetKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
