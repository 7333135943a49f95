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
	"time"

	"github.com/google/uuid"
)

// DefaultOperationLogCapacity bounds the in-memory operation history.
const DefaultOperationLogCapacity = 1000

// OperationEntry records one completed mutation for observability.
// Entries are observational only; the log is not a replayable journal.
type OperationEntry struct {
	// ID is a random identifier for correlation in logs.
	ID string `json:"id"`

	// Op names the mutation (e.g. "create_relationship").
	Op string `json:"op"`

	// Details carries operation-specific key/value context.
	Details map[string]string `json:"details,omitempty"`

	// At is when the operation completed.
	At time.Time `json:"at"`
}

// OperationLog is an append-only ring buffer of operation history.
//
// When the capacity is reached the oldest entry is dropped. The log is an
// explicit instance owned by an Operations value, not process-global, so
// lifecycle and tests stay contained.
//
// Thread Safety: not safe for concurrent use; shares the single-writer
// contract of the Graph it observes.
type OperationLog struct {
	entries  []OperationEntry
	capacity int
}

// NewOperationLog creates a log with the given capacity.
// Non-positive capacities fall back to DefaultOperationLogCapacity.
func NewOperationLog(capacity int) *OperationLog {
	if capacity <= 0 {
		capacity = DefaultOperationLogCapacity
	}
	return &OperationLog{
		entries:  make([]OperationEntry, 0, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, evicting the oldest once full.
func (l *OperationLog) Record(op string, details map[string]string) {
	entry := OperationEntry{
		ID:      uuid.NewString(),
		Op:      op,
		Details: details,
		At:      time.Now().UTC(),
	}
	if len(l.entries) >= l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = entry
		return
	}
	l.entries = append(l.entries, entry)
}

// Len returns the number of retained entries.
func (l *OperationLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the retained history, oldest first.
func (l *OperationLog) Entries() []OperationEntry {
	out := make([]OperationEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
