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
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/knowledgegraph/graph"
)

// NodeFilter selects stored nodes. Zero-value fields match everything.
type NodeFilter struct {
	// Type restricts results to one node type when non-empty.
	Type string

	// Properties must all be present and equal on a matching node.
	Properties graph.Properties
}

// RelFilter selects stored edges. Zero-value fields match everything.
type RelFilter struct {
	Type   string
	Source string
	Target string
}

// QueryNodes returns stored node records matching the filter.
//
// Description:
//
//	Full prefix scan over the node keyspace; there is no secondary
//	index, so cost is O(stored nodes) regardless of selectivity.
//
// Outputs:
//
//	[]graph.NodeRecord - sorted by UID.
func (s *Store) QueryNodes(ctx context.Context, filter NodeFilter) ([]graph.NodeRecord, error) {
	_, span := storeTracer.Start(ctx, "Store.QueryNodes",
		trace.WithAttributes(attribute.String("type", filter.Type)),
	)
	defer span.End()

	var results []graph.NodeRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, nodePrefix, func(key string, value []byte) error {
			var rec graph.NodeRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
			}
			if filter.Type != "" && rec.Type != filter.Type {
				return nil
			}
			for name, want := range filter.Properties {
				got, ok := rec.Properties[name]
				if !ok || !got.Equal(want) {
					return nil
				}
			}
			results = append(results, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("matched", len(results)))
	return results, nil
}

// QueryRelationships returns stored edge records matching the filter.
//
// Description:
//
//	When Source is set the scan narrows to that source's key range;
//	otherwise the full edge keyspace is scanned.
//
// Outputs:
//
//	[]graph.EdgeRecord - sorted by (source, target, type).
func (s *Store) QueryRelationships(ctx context.Context, filter RelFilter) ([]graph.EdgeRecord, error) {
	_, span := storeTracer.Start(ctx, "Store.QueryRelationships",
		trace.WithAttributes(
			attribute.String("type", filter.Type),
			attribute.String("source", filter.Source),
		),
	)
	defer span.End()

	prefix := edgePrefix
	if filter.Source != "" {
		prefix = edgePrefix + filter.Source + edgeKeySep
	}

	var results []graph.EdgeRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefix, func(key string, value []byte) error {
			var rec graph.EdgeRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
			}
			if filter.Type != "" && rec.Type != filter.Type {
				return nil
			}
			if filter.Target != "" && rec.Target != filter.Target {
				return nil
			}
			results = append(results, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("matched", len(results)))
	return results, nil
}

// NodesByTag returns the nodes carrying a tag.
//
// Description:
//
//	Resolves the tag name to its deterministic tag-node UID, collects
//	every stored tagged_with edge pointing at it, and fetches those
//	source nodes. An unknown tag yields an empty result, not an error.
//
// Outputs:
//
//	[]graph.NodeRecord - sorted by UID.
func (s *Store) NodesByTag(ctx context.Context, tag string) ([]graph.NodeRecord, error) {
	ctx, span := storeTracer.Start(ctx, "Store.NodesByTag",
		trace.WithAttributes(attribute.String("tag", tag)),
	)
	defer span.End()

	tagUID := graph.TagUID(tag)
	edges, err := s.QueryRelationships(ctx, RelFilter{
		Type:   string(graph.RelTaggedWith),
		Target: tagUID,
	})
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	uids := make([]string, 0, len(edges))
	for _, e := range edges {
		uids = append(uids, e.Source)
	}
	sort.Strings(uids)

	results := make([]graph.NodeRecord, 0, len(uids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, uid := range uids {
			item, err := txn.Get(nodeKey(uid))
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling edge record; skip rather than fail the query.
				continue
			}
			if err != nil {
				return fmt.Errorf("read node %s: %w", uid, err)
			}
			if err := item.Value(func(value []byte) error {
				var rec graph.NodeRecord
				if err := json.Unmarshal(value, &rec); err != nil {
					return fmt.Errorf("%w: node %s: %v", ErrCorruptRecord, uid, err)
				}
				results = append(results, rec)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("matched", len(results)))
	return results, nil
}
