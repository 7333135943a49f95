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
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cap applied to connection-suggestion scores.
const maxSuggestionScore = 0.9

// Resolver supplies metadata for externally managed content.
//
// The surrounding application owns content; the graph only mirrors it.
// Resolve returns false when no content exists for the UID.
type Resolver interface {
	Resolve(uid string) (*ResolvedContent, bool)
}

// ResolvedContent is the metadata a Resolver reports for a content UID.
type ResolvedContent struct {
	Title      string
	Type       NodeType
	Properties Properties
}

// RelationshipSpec is one edge request in a batch insertion.
type RelationshipSpec struct {
	Source string
	Target string
	Type   RelType
	Weight float64
}

// ConnectionSuggestion is a scored not-yet-linked candidate neighbor.
type ConnectionSuggestion struct {
	// UID is the suggested counterpart.
	UID string

	// Score is min(0.9, shared/10 × best type confidence).
	Score float64

	// SharedNeighbors counts direct neighbors common to both nodes.
	SharedNeighbors int

	// SuggestedType is the top-ranked relationship type for the pair.
	SuggestedType RelType
}

// Operations is the mutation layer over a Graph.
//
// It consults the relationship registry before every edge mutation,
// resolves content UIDs through the external Resolver, and records each
// completed mutation in an OperationLog.
//
// Thread Safety: NOT safe for concurrent use; callers serialize access.
type Operations struct {
	graph    *Graph
	resolver Resolver
	log      *OperationLog
}

// NewOperations creates the mutation layer for a graph.
//
// The resolver may be nil, in which case AddContentNode and relationship
// endpoint resolution only consider nodes already present in the graph.
func NewOperations(g *Graph, resolver Resolver) *Operations {
	return &Operations{
		graph:    g,
		resolver: resolver,
		log:      NewOperationLog(DefaultOperationLogCapacity),
	}
}

// Graph returns the underlying graph.
func (o *Operations) Graph() *Graph {
	return o.graph
}

// Log returns the operation history.
func (o *Operations) Log() *OperationLog {
	return o.log
}

// Slugify normalizes a name into a uid-safe slug: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, trimmed.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ConceptUID returns the deterministic UID for a concept name.
func ConceptUID(name string) string {
	return "concept-" + Slugify(name)
}

// TagUID returns the deterministic UID for a tag name.
func TagUID(name string) string {
	return "tag-" + Slugify(name)
}

// AddContentNode mirrors an externally managed content item into the graph.
//
// The UID is resolved through the Resolver; returns nil when the resolver
// is absent, the content does not exist, or a node with the UID is already
// present (the existing node is returned in that case).
func (o *Operations) AddContentNode(uid string) *Node {
	if existing, ok := o.graph.GetNode(uid); ok {
		return existing
	}
	if o.resolver == nil {
		return nil
	}
	content, ok := o.resolver.Resolve(uid)
	if !ok {
		return nil
	}

	node := &Node{
		UID:        uid,
		Title:      content.Title,
		Type:       content.Type,
		Properties: content.Properties.Clone(),
	}
	if !o.graph.AddNode(node) {
		return nil
	}
	o.log.Record("add_content_node", map[string]string{"uid": uid, "type": string(content.Type)})
	return node
}

// AddConceptNode adds (or returns) the concept node for a name.
//
// The UID is slug-derived from the name, so re-adding the same concept is
// idempotent.
func (o *Operations) AddConceptNode(name string) *Node {
	return o.addDerivedNode(ConceptUID(name), name, NodeTypeConcept, "add_concept_node")
}

// AddTagNode adds (or returns) the tag node for a name. Idempotent like
// AddConceptNode.
func (o *Operations) AddTagNode(name string) *Node {
	return o.addDerivedNode(TagUID(name), name, NodeTypeTag, "add_tag_node")
}

func (o *Operations) addDerivedNode(uid, title string, t NodeType, op string) *Node {
	if existing, ok := o.graph.GetNode(uid); ok {
		return existing
	}
	node := &Node{UID: uid, Title: title, Type: t}
	if !o.graph.AddNode(node) {
		return nil
	}
	o.log.Record(op, map[string]string{"uid": uid})
	return node
}

// CreateRelationship adds a typed edge between two nodes.
//
// Description:
//
//	Resolves both endpoints (adding content nodes on demand via the
//	Resolver), checks the registry's type-pair constraints, and adds the
//	edge through the graph's mirroring primitive so bidirectional types
//	get their reverse edge automatically.
//
// Outputs:
//
//	bool - false when either endpoint is unresolvable, the type pair is
//	       rejected by the registry, or the edge already exists. Callers
//	       needing the reason re-run Registry.ValidateRelationship.
func (o *Operations) CreateRelationship(source, target string, rel RelType, weight float64) bool {
	src := o.AddContentNode(source)
	if src == nil {
		return false
	}
	dst := o.AddContentNode(target)
	if dst == nil {
		return false
	}

	if !o.graph.Registry().ValidateRelationship(src.Type, dst.Type, rel) {
		slog.Debug("relationship rejected by registry",
			slog.String("source_type", string(src.Type)),
			slog.String("target_type", string(dst.Type)),
			slog.String("rel", string(rel)),
		)
		return false
	}

	if weight == 0 {
		weight = DefaultEdgeWeight
	}
	edge := &Edge{Source: source, Target: target, Type: rel, Weight: weight}
	if !o.graph.AddEdgeMirrored(edge) {
		return false
	}

	o.log.Record("create_relationship", map[string]string{
		"source": source,
		"target": target,
		"rel":    string(rel),
		"weight": strconv.FormatFloat(weight, 'f', -1, 64),
	})
	return true
}

// RemoveRelationship removes an edge and, for bidirectional types, its
// mirror. Returns false when the forward edge does not exist.
func (o *Operations) RemoveRelationship(source, target string, rel RelType) bool {
	if !o.graph.RemoveEdgeMirrored(source, target, rel) {
		return false
	}
	o.log.Record("remove_relationship", map[string]string{
		"source": source,
		"target": target,
		"rel":    string(rel),
	})
	return true
}

// UpdateNodeProperties merges the given entries into a node's property bag
// and bumps its Modified timestamp. Returns false for unknown UIDs.
func (o *Operations) UpdateNodeProperties(uid string, updates Properties) bool {
	node, ok := o.graph.GetNode(uid)
	if !ok {
		return false
	}

	before := node.Properties.Clone()
	node.Properties.Merge(updates)
	node.Modified = nowUTC()

	o.log.Record("update_node_properties", map[string]string{
		"uid":          uid,
		"keys_before":  strconv.Itoa(len(before)),
		"keys_after":   strconv.Itoa(len(node.Properties)),
		"keys_updated": strconv.Itoa(len(updates)),
	})
	return true
}

// MergeNodes folds secondary into primary.
//
// Description:
//
//	Every edge touching secondary is redirected to primary, skipping
//	edges that would become self-loops and edges whose redirected
//	identity triple already exists. Property bags are merged with
//	primary winning on conflict; secondary is then removed.
//
//	Partial effects are not rolled back: when an individual redirect is
//	skipped the earlier redirects stay in place.
//
// Outputs:
//
//	bool - false when either UID is unknown or both name the same node.
func (o *Operations) MergeNodes(primary, secondary string) bool {
	if primary == secondary {
		return false
	}
	primaryNode, ok := o.graph.GetNode(primary)
	if !ok {
		return false
	}
	secondaryNode, ok := o.graph.GetNode(secondary)
	if !ok {
		return false
	}

	// Redirect outgoing edges of secondary.
	for _, e := range o.graph.EdgesFrom(secondary) {
		if e.Target == primary {
			continue // would self-loop
		}
		o.graph.AddEdge(&Edge{
			Source:     primary,
			Target:     e.Target,
			Type:       e.Type,
			Weight:     e.Weight,
			Properties: e.Properties.Clone(),
			Created:    e.Created,
		})
	}

	// Redirect incoming edges of secondary.
	for _, e := range o.graph.EdgesTo(secondary) {
		if e.Source == primary {
			continue // would self-loop
		}
		o.graph.AddEdge(&Edge{
			Source:     e.Source,
			Target:     primary,
			Type:       e.Type,
			Weight:     e.Weight,
			Properties: e.Properties.Clone(),
			Created:    e.Created,
		})
	}

	// Primary wins on property conflicts.
	merged := secondaryNode.Properties.Clone()
	if merged == nil {
		merged = make(Properties)
	}
	merged.Merge(primaryNode.Properties)
	primaryNode.Properties = merged
	primaryNode.Modified = nowUTC()

	o.graph.RemoveNode(secondary)

	o.log.Record("merge_nodes", map[string]string{
		"primary":   primary,
		"secondary": secondary,
	})
	return true
}

// CloneSubgraph returns the induced subgraph reachable from root within
// maxDepth hops over outgoing edges, optionally restricted to the given
// relationship types. Returns nil for an unknown root.
func (o *Operations) CloneSubgraph(root string, maxDepth int, types ...RelType) *Graph {
	if !o.graph.HasNode(root) {
		return nil
	}

	reached := map[string]int{root: 0}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := reached[cur]
		if depth >= maxDepth {
			continue
		}
		for _, next := range o.graph.Neighbors(cur, types...) {
			if _, seen := reached[next]; seen {
				continue
			}
			reached[next] = depth + 1
			queue = append(queue, next)
		}
	}

	uids := make([]string, 0, len(reached))
	for uid := range reached {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return o.graph.Subgraph(uids)
}

// BatchAddRelationships applies CreateRelationship per spec, best-effort.
//
// Partial failure does not roll back earlier successes. Returns the number
// of relationships actually created.
func (o *Operations) BatchAddRelationships(specs []RelationshipSpec) int {
	created := 0
	for _, s := range specs {
		if o.CreateRelationship(s.Source, s.Target, s.Type, s.Weight) {
			created++
		}
	}
	o.log.Record("batch_add_relationships", map[string]string{
		"requested": strconv.Itoa(len(specs)),
		"created":   strconv.Itoa(created),
	})
	return created
}

// FindOrphanNodes returns the UIDs of nodes with zero incident edges in
// either direction, sorted.
func (o *Operations) FindOrphanNodes() []string {
	out := make([]string, 0)
	for uid := range o.graph.Nodes() {
		if o.graph.OutDegree(uid) == 0 && o.graph.InDegree(uid) == 0 {
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out
}

// PruneOrphanNodes removes every orphan node and returns how many were
// removed.
func (o *Operations) PruneOrphanNodes() int {
	orphans := o.FindOrphanNodes()
	for _, uid := range orphans {
		o.graph.RemoveNode(uid)
	}
	if len(orphans) > 0 {
		o.log.Record("prune_orphan_nodes", map[string]string{
			"removed": strconv.Itoa(len(orphans)),
		})
	}
	return len(orphans)
}

// SuggestConnections ranks 2-hop neighbors that are not yet directly
// connected to the given node.
//
// Description:
//
//	Candidates are nodes reachable in exactly two outgoing hops with no
//	direct edge from uid. Each is scored
//
//	    min(0.9, sharedNeighbors/10 × best type confidence)
//
//	where sharedNeighbors counts direct neighbors common to both nodes
//	and the type confidence comes from the registry's suggestion table.
//	Results are sorted by score descending (UID tie-break) and truncated
//	to limit.
func (o *Operations) SuggestConnections(uid string, limit int) []ConnectionSuggestion {
	node, ok := o.graph.GetNode(uid)
	if !ok || limit <= 0 {
		return nil
	}

	direct := make(map[string]struct{})
	for _, n := range o.graph.Neighbors(uid) {
		direct[n] = struct{}{}
	}

	candidates := make(map[string]struct{})
	for n := range direct {
		for _, hop2 := range o.graph.Neighbors(n) {
			if hop2 == uid {
				continue
			}
			if _, linked := direct[hop2]; linked {
				continue
			}
			candidates[hop2] = struct{}{}
		}
	}

	out := make([]ConnectionSuggestion, 0, len(candidates))
	for cand := range candidates {
		candNode, ok := o.graph.GetNode(cand)
		if !ok {
			continue
		}

		shared := 0
		for _, n := range o.graph.Neighbors(cand) {
			if _, both := direct[n]; both {
				shared++
			}
		}

		suggestions := o.graph.Registry().SuggestRelType(node.Type, candNode.Type)
		if len(suggestions) == 0 {
			continue
		}
		best := suggestions[0]

		score := float64(shared) / 10 * best.Confidence
		if score > maxSuggestionScore {
			score = maxSuggestionScore
		}
		out = append(out, ConnectionSuggestion{
			UID:             cand,
			Score:           score,
			SharedNeighbors: shared,
			SuggestedType:   best.Type,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UID < out[j].UID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// nowUTC returns the current time in UTC.
func nowUTC() time.Time {
	return time.Now().UTC()
}
