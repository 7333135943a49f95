// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/knowledgegraph/graph"
)

// Catalog enumerates the externally managed content the graph mirrors.
//
// The surrounding application owns content lifecycle; the graph only
// reflects it. List must return every live content item.
type Catalog interface {
	List(ctx context.Context) ([]CatalogEntry, error)
}

// CatalogEntry describes one live content item.
type CatalogEntry struct {
	// UID is the content's stable identifier, used as the node UID.
	UID string

	// Title is the display name.
	Title string

	// Type is the content's node type.
	Type graph.NodeType

	// Properties carries content metadata onto the node.
	Properties graph.Properties

	// Tags are free-form tag names; each becomes a tag node plus a
	// tagged_with edge.
	Tags []string

	// References are typed outbound links to other content UIDs.
	References []Reference
}

// Reference is a typed link from a catalog entry to another content UID.
type Reference struct {
	Target string
	Type   graph.RelType

	// Weight of 0 takes the default edge weight.
	Weight float64
}

// SyncReport summarizes one reconciliation pass.
type SyncReport struct {
	NodesAdded   int
	NodesUpdated int
	NodesRemoved int
	EdgesCreated int

	// EdgesSkipped counts references the registry rejected or whose
	// target resolved to nothing.
	EdgesSkipped int
}

// SyncWithCatalog reconciles the graph against live content and persists
// the result.
//
// Description:
//
//	Three phases over the operations layer, so every mutation passes
//	registry checks and lands in the operation history:
//
//	 1. Upsert: a node is created for each catalog entry, or its title,
//	    type, and properties are refreshed when it already exists.
//	 2. Link: tags become tag nodes plus tagged_with edges; references
//	    become typed edges. Existing edges are silent no-ops, not
//	    counted as created.
//	 3. Prune: content nodes absent from the catalog are removed along
//	    with their edges. Conceptual nodes (concepts, tags) have no
//	    backing content and always survive.
//
//	The reconciled graph is saved before returning, so a crash after
//	SyncWithCatalog never loses the pass.
//
// Outputs:
//
//	*SyncReport - mutation counts for the pass.
//	error - non-nil when the catalog listing or the save fails; the
//	in-memory graph may already be reconciled in the save-failure case.
// hasAllProperties reports whether every entry in want is present and
// equal in got.
func hasAllProperties(got, want graph.Properties) bool {
	for name, value := range want {
		existing, ok := got[name]
		if !ok || !existing.Equal(value) {
			return false
		}
	}
	return true
}

func (s *Store) SyncWithCatalog(ctx context.Context, ops *graph.Operations, catalog Catalog) (*SyncReport, error) {
	ctx, span := storeTracer.Start(ctx, "Store.SyncWithCatalog")
	defer span.End()

	entries, err := catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	g := ops.Graph()
	report := &SyncReport{}
	live := make(map[string]struct{}, len(entries))

	// Phase 1: upsert nodes so every reference target exists before any
	// edge is attempted.
	for _, entry := range entries {
		if entry.UID == "" {
			continue
		}
		live[entry.UID] = struct{}{}

		node, ok := g.GetNode(entry.UID)
		if !ok {
			if g.AddNode(&graph.Node{
				UID:        entry.UID,
				Title:      entry.Title,
				Type:       entry.Type,
				Properties: entry.Properties.Clone(),
			}) {
				report.NodesAdded++
			}
			continue
		}

		// Property updates merge, so the node may legitimately carry keys
		// the catalog no longer reports; only missing or differing catalog
		// keys count as drift.
		if node.Title != entry.Title || node.Type != entry.Type ||
			!hasAllProperties(node.Properties, entry.Properties) {
			node.Title = entry.Title
			node.Type = entry.Type
			ops.UpdateNodeProperties(entry.UID, entry.Properties)
			report.NodesUpdated++
		}
	}

	// Phase 2: tags and references.
	for _, entry := range entries {
		if entry.UID == "" {
			continue
		}
		for _, tag := range entry.Tags {
			tagNode := ops.AddTagNode(tag)
			if tagNode == nil {
				report.EdgesSkipped++
				continue
			}
			if _, exists := g.GetEdge(entry.UID, tagNode.UID, graph.RelTaggedWith); exists {
				continue
			}
			if ops.CreateRelationship(entry.UID, tagNode.UID, graph.RelTaggedWith, 0) {
				report.EdgesCreated++
			} else {
				report.EdgesSkipped++
			}
		}
		for _, ref := range entry.References {
			if _, exists := g.GetEdge(entry.UID, ref.Target, ref.Type); exists {
				continue
			}
			if ops.CreateRelationship(entry.UID, ref.Target, ref.Type, ref.Weight) {
				report.EdgesCreated++
			} else {
				report.EdgesSkipped++
			}
		}
	}

	// Phase 3: prune content nodes whose backing content is gone.
	for _, uid := range g.NodeIDs() {
		if _, ok := live[uid]; ok {
			continue
		}
		node, ok := g.GetNode(uid)
		if !ok || node.Type.IsConceptual() {
			continue
		}
		if g.RemoveNode(uid) {
			report.NodesRemoved++
		}
	}

	if err := s.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("persist reconciled graph: %w", err)
	}

	slog.Debug("catalog sync completed",
		slog.Int("added", report.NodesAdded),
		slog.Int("updated", report.NodesUpdated),
		slog.Int("removed", report.NodesRemoved),
		slog.Int("edges_created", report.EdgesCreated),
	)
	span.SetAttributes(
		attribute.Int("nodes_added", report.NodesAdded),
		attribute.Int("nodes_removed", report.NodesRemoved),
		attribute.Int("edges_created", report.EdgesCreated),
	)
	return report, nil
}
