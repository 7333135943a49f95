// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists knowledge graphs in BadgerDB.
//
// BadgerDB gives local embedded storage with low-latency access and no
// external process. The key layout is flat and prefix-scannable:
//
//	node:<uid>              -> graph.NodeRecord (JSON)
//	edge:<src>|<dst>|<type> -> graph.EdgeRecord (JSON)
//	meta:stats              -> graph.DocumentStats (JSON)
//
// Relationship-type strings are stored byte-for-byte, so custom types
// registered at runtime survive a save/load cycle unchanged.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/knowledgegraph/graph"
)

var storeTracer = otel.Tracer("knowledgegraph/store")

const (
	nodePrefix = "node:"
	edgePrefix = "edge:"
	statsKey   = "meta:stats"

	// edgeKeySep joins the edge identity triple inside a key. Node UIDs
	// are slugs and relationship names are snake_case, so "|" never
	// appears in either.
	edgeKeySep = "|"
)

// ErrCorruptRecord reports a stored value that no longer unmarshals.
var ErrCorruptRecord = errors.New("store: corrupt record")

// Config holds configuration for a graph store.
type Config struct {
	// Path is the directory for BadgerDB files. Required unless InMemory
	// is true. Created if it doesn't exist.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for
	// testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil, that
	// output is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns durable on-disk defaults for the given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// Store is a BadgerDB-backed graph repository.
//
// Thread Safety: safe for concurrent use; Badger serializes conflicting
// writes internally.
type Store struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens a graph store with the given configuration.
//
// Outputs:
//
//	*Store - the opened store. Caller must call Close when done.
//	error - non-nil if the path is invalid or the database cannot open.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store for testing. Data is lost on Close.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nodeKey(uid string) []byte {
	return []byte(nodePrefix + uid)
}

func edgeKey(source, target, relType string) []byte {
	return []byte(edgePrefix + source + edgeKeySep + target + edgeKeySep + relType)
}

// Save writes a full snapshot of the graph, replacing any previous one.
//
// Description:
//
//	Drops the existing node and edge keyspaces, then bulk-writes every
//	node and edge record plus the stats summary. Uses Badger's write
//	batch, so graphs larger than a single transaction persist fine;
//	concurrent readers may briefly observe the store mid-replace.
//
// Outputs:
//
//	error - non-nil on marshal or database failure.
func (s *Store) Save(ctx context.Context, g *graph.Graph) error {
	ctx, span := storeTracer.Start(ctx, "Store.Save",
		trace.WithAttributes(
			attribute.Int("node_count", g.NodeCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cancelled: %w", err)
	}

	doc := g.Snapshot()

	if err := s.db.DropPrefix([]byte(nodePrefix), []byte(edgePrefix)); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for i := range doc.Nodes {
		rec := &doc.Nodes[i]
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal node %s: %w", rec.UID, err)
		}
		if err := batch.Set(nodeKey(rec.UID), value); err != nil {
			return fmt.Errorf("write node %s: %w", rec.UID, err)
		}
	}

	for i := range doc.Edges {
		rec := &doc.Edges[i]
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal edge %s->%s: %w", rec.Source, rec.Target, err)
		}
		if err := batch.Set(edgeKey(rec.Source, rec.Target, rec.Type), value); err != nil {
			return fmt.Errorf("write edge %s->%s: %w", rec.Source, rec.Target, err)
		}
	}

	stats, err := json.Marshal(doc.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := batch.Set([]byte(statsKey), stats); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	if err := batch.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	slog.Debug("graph snapshot saved",
		slog.Int("nodes", len(doc.Nodes)),
		slog.Int("edges", len(doc.Edges)),
	)
	return nil
}

// Load reconstructs the stored graph.
//
// Description:
//
//	Scans the node and edge keyspaces and rebuilds the graph through the
//	document codec, so load validates the same way an import does: edges
//	referencing missing nodes make the whole load fail.
//
// Outputs:
//
//	*graph.Graph - empty (not nil) when the store holds no snapshot.
//	error - non-nil on database failure or corrupt records.
func (s *Store) Load(ctx context.Context, opts ...graph.GraphOption) (*graph.Graph, error) {
	ctx, span := storeTracer.Start(ctx, "Store.Load")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	doc := &graph.Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := scanPrefix(txn, nodePrefix, func(key string, value []byte) error {
			var rec graph.NodeRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
			}
			doc.Nodes = append(doc.Nodes, rec)
			return nil
		}); err != nil {
			return err
		}
		return scanPrefix(txn, edgePrefix, func(key string, value []byte) error {
			var rec graph.EdgeRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
			}
			doc.Edges = append(doc.Edges, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}

	span.SetAttributes(
		attribute.Int("node_count", g.NodeCount()),
		attribute.Int("edge_count", g.EdgeCount()),
	)
	return g, nil
}

// Stats returns the stored snapshot summary without loading the graph.
//
// Outputs:
//
//	*graph.DocumentStats - nil with nil error when no snapshot exists.
func (s *Store) Stats(ctx context.Context) (*graph.DocumentStats, error) {
	_, span := storeTracer.Start(ctx, "Store.Stats")
	defer span.End()

	var stats *graph.DocumentStats
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(statsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}
		return item.Value(func(value []byte) error {
			stats = &graph.DocumentStats{}
			if err := json.Unmarshal(value, stats); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, statsKey, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// scanPrefix iterates every key under prefix, passing the key (prefix
// stripped) and value to fn. Keys arrive in lexicographic order, which
// keeps scan results deterministic.
func scanPrefix(txn *badger.Txn, prefix string, fn func(key string, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := strings.TrimPrefix(string(item.Key()), prefix)
		if err := item.Value(func(value []byte) error {
			return fn(key, value)
		}); err != nil {
			return err
		}
	}
	return nil
}
