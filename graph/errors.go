// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph implements an in-memory knowledge graph engine: a typed,
// directed multigraph over content, concept and tag nodes, together with a
// relationship-type registry, mutation operations, analytics and traversal.
//
// # Error Model
//
// Expected data-shape failures (missing node, duplicate edge, rejected
// type pair) are reported through boolean or nil returns so that bulk
// operations can proceed past individual item failures. True errors are
// reserved for programmer mistakes, such as registering a custom
// relationship type with incomplete metadata.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent mutation. It is designed for a single
// writer; analytics and traversal are read-only and may run concurrently
// with each other provided no mutation occurs at the same time. Callers
// that need multi-writer access must serialize externally.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with NewGraph()
//  2. Populate via Operations (node factories, CreateRelationship, ...)
//  3. Query with Analytics and Traverser
//  4. Persist and reload through the store package
package graph

import "errors"

// Sentinel errors for programmer-error paths.
var (
	// ErrInvalidMetadata is returned when registering a custom relationship
	// type whose metadata is missing required fields.
	ErrInvalidMetadata = errors.New("invalid relationship metadata")

	// ErrDuplicateType is returned when registering a custom relationship
	// type whose name collides with a standard or already-registered type.
	ErrDuplicateType = errors.New("duplicate relationship type")

	// ErrReservedType is returned when a custom registration uses an empty
	// name.
	ErrReservedType = errors.New("relationship type name is empty")

	// ErrMalformedDocument is returned when reconstructing a graph from a
	// serialized document that references missing endpoints or carries an
	// unknown property kind.
	ErrMalformedDocument = errors.New("malformed graph document")
)
