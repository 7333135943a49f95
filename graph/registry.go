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
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Flat fallback confidence for allowed types without a table entry.
const defaultSuggestionConfidence = 0.5

// TypePair is an ordered (source, target) node-type combination.
type TypePair struct {
	Source NodeType `yaml:"source"`
	Target NodeType `yaml:"target"`
}

// RelSuggestion is a candidate relationship type with a confidence score.
type RelSuggestion struct {
	Type       RelType
	Confidence float64
}

// TransitiveCandidate is a missing-edge report from transitive inference:
// Target is reachable from Source over edges of the inferred type, but no
// direct edge exists.
type TransitiveCandidate struct {
	Source string
	Target string
	Type   RelType
}

// Registry is the relationship-type vocabulary: standard kinds, runtime
// custom kinds, type-pair legality constraints, and the deterministic
// suggestion table.
//
// Constraint semantics are open-world: a type with no constraint entry is
// legal between any node-type pair; a type with an entry is legal only for
// the declared pairs.
//
// Thread Safety: Registry is read-mostly. Registration and constraint
// changes are expected at startup, before concurrent readers exist.
type Registry struct {
	custom      map[RelType]RelMetadata
	constraints map[RelType][]TypePair
	suggestions map[TypePair][]RelSuggestion

	validate *validator.Validate
}

// NewRegistry creates a registry with the standard vocabulary, the default
// type-pair constraints and the default suggestion table.
func NewRegistry() *Registry {
	r := &Registry{
		custom:      make(map[RelType]RelMetadata),
		constraints: make(map[RelType][]TypePair),
		suggestions: make(map[TypePair][]RelSuggestion),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
	r.installDefaultConstraints()
	r.installDefaultSuggestions()
	return r
}

// installDefaultConstraints declares legality constraints for the types
// whose semantics only make sense for particular node-type pairs. Types
// absent from this table remain allow-all.
func (r *Registry) installDefaultConstraints() {
	contentTypes := []NodeType{
		NodeTypeNote, NodeTypeGoal, NodeTypeLogEntry,
		NodeTypeBookmark, NodeTypeKnowledgeItem,
	}

	tagPairs := make([]TypePair, 0, len(contentTypes)+1)
	for _, t := range contentTypes {
		tagPairs = append(tagPairs, TypePair{Source: t, Target: NodeTypeTag})
	}
	tagPairs = append(tagPairs, TypePair{Source: NodeTypeConcept, Target: NodeTypeTag})
	r.constraints[RelTaggedWith] = tagPairs

	catPairs := make([]TypePair, 0, len(contentTypes))
	for _, t := range contentTypes {
		catPairs = append(catPairs, TypePair{Source: t, Target: NodeTypeConcept})
	}
	r.constraints[RelCategorizedAs] = catPairs

	actorTargets := []NodeType{NodeTypePerson, NodeTypeOrganization}
	authorship := make([]TypePair, 0, len(contentTypes)*len(actorTargets))
	for _, src := range contentTypes {
		for _, dst := range actorTargets {
			authorship = append(authorship, TypePair{Source: src, Target: dst})
		}
	}
	r.constraints[RelCreatedBy] = authorship
	r.constraints[RelMaintainedBy] = authorship
	r.constraints[RelReviewedBy] = authorship
}

// installDefaultSuggestions seeds the fixed scoring table used by
// SuggestRelType. Confidences are hand-tuned, not learned.
func (r *Registry) installDefaultSuggestions() {
	set := func(src, dst NodeType, entries ...RelSuggestion) {
		r.suggestions[TypePair{Source: src, Target: dst}] = entries
	}

	set(NodeTypeKnowledgeItem, NodeTypeKnowledgeItem,
		RelSuggestion{Type: RelPrerequisiteOf, Confidence: 0.8},
		RelSuggestion{Type: RelBuildsOn, Confidence: 0.75},
		RelSuggestion{Type: RelRelatedTo, Confidence: 0.6},
	)
	set(NodeTypeNote, NodeTypeNote,
		RelSuggestion{Type: RelRelatedTo, Confidence: 0.7},
		RelSuggestion{Type: RelReferences, Confidence: 0.6},
	)
	set(NodeTypeNote, NodeTypeConcept,
		RelSuggestion{Type: RelReferences, Confidence: 0.8},
		RelSuggestion{Type: RelCategorizedAs, Confidence: 0.6},
	)
	set(NodeTypeConcept, NodeTypeConcept,
		RelSuggestion{Type: RelRelatedTo, Confidence: 0.75},
		RelSuggestion{Type: RelPartOf, Confidence: 0.6},
	)
	set(NodeTypeGoal, NodeTypeGoal,
		RelSuggestion{Type: RelDependsOn, Confidence: 0.8},
		RelSuggestion{Type: RelMilestoneOf, Confidence: 0.65},
	)
	set(NodeTypeLogEntry, NodeTypeGoal,
		RelSuggestion{Type: RelContributesTo, Confidence: 0.85},
	)
	set(NodeTypeBookmark, NodeTypeConcept,
		RelSuggestion{Type: RelReferences, Confidence: 0.75},
	)
	set(NodeTypeNote, NodeTypeBookmark,
		RelSuggestion{Type: RelCites, Confidence: 0.7},
		RelSuggestion{Type: RelAnnotates, Confidence: 0.6},
	)
}

// Metadata returns the metadata for a relationship type, consulting the
// standard table first and then runtime registrations.
func (r *Registry) Metadata(t RelType) (RelMetadata, bool) {
	if meta, ok := standardRelMetadata[t]; ok {
		return meta, true
	}
	meta, ok := r.custom[t]
	return meta, ok
}

// IsKnown reports whether the type is standard or registered.
func (r *Registry) IsKnown(t RelType) bool {
	_, ok := r.Metadata(t)
	return ok
}

// Types returns every known relationship type (standard + custom), sorted.
func (r *Registry) Types() []RelType {
	out := StandardRelTypes()
	for t := range r.custom {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RegisterCustom adds a runtime relationship type.
//
// This is the one place where a true error is returned rather than a
// silent boolean: incomplete metadata is a programmer mistake, not a
// data-shape condition.
//
// Errors:
//
//	ErrReservedType - empty name
//	ErrDuplicateType - name collides with a standard or custom type
//	ErrInvalidMetadata - metadata fails validation (missing description,
//	                     inverted weight range)
func (r *Registry) RegisterCustom(name RelType, meta RelMetadata) error {
	if name == "" {
		return ErrReservedType
	}
	if _, exists := r.Metadata(name); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	if err := r.validate.Struct(meta); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, name, err)
	}
	r.custom[name] = meta
	return nil
}

// SetConstraint declares the legal (source, target) node-type pairs for a
// relationship type. An empty pair list removes the entry, returning the
// type to allow-all.
func (r *Registry) SetConstraint(t RelType, pairs []TypePair) {
	if len(pairs) == 0 {
		delete(r.constraints, t)
		return
	}
	r.constraints[t] = pairs
}

// ValidateRelationship reports whether the relationship type is legal
// between the given node types.
//
// Open-world: a type with no constraint entry is always legal.
func (r *Registry) ValidateRelationship(source, target NodeType, t RelType) bool {
	pairs, constrained := r.constraints[t]
	if !constrained {
		return true
	}
	for _, p := range pairs {
		if p.Source == source && p.Target == target {
			return true
		}
	}
	return false
}

// AllowedRelationships returns every known type legal between the given
// node types, sorted.
func (r *Registry) AllowedRelationships(source, target NodeType) []RelType {
	out := make([]RelType, 0)
	for _, t := range r.Types() {
		if r.ValidateRelationship(source, target, t) {
			out = append(out, t)
		}
	}
	return out
}

// SuggestRelType ranks candidate relationship types between two node types.
//
// Description:
//
//	The fixed scoring table supplies confidences for known type-pair
//	combinations; every other allowed type receives a flat 0.5. Results
//	are sorted by confidence descending with a lexicographic tie-break,
//	so the ranking is fully deterministic.
func (r *Registry) SuggestRelType(source, target NodeType) []RelSuggestion {
	tabled := make(map[RelType]float64)
	for _, s := range r.suggestions[TypePair{Source: source, Target: target}] {
		if r.ValidateRelationship(source, target, s.Type) {
			tabled[s.Type] = s.Confidence
		}
	}

	out := make([]RelSuggestion, 0)
	for _, t := range r.AllowedRelationships(source, target) {
		conf, ok := tabled[t]
		if !ok {
			conf = defaultSuggestionConfidence
		}
		out = append(out, RelSuggestion{Type: t, Confidence: conf})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// BestConfidence returns the confidence of the top-ranked suggestion for
// the pair, or zero when nothing is allowed.
func (r *Registry) BestConfidence(source, target NodeType) float64 {
	suggestions := r.SuggestRelType(source, target)
	if len(suggestions) == 0 {
		return 0
	}
	return suggestions[0].Confidence
}

// InferTransitive reports missing-edge candidates for a transitive type.
//
// Description:
//
//	For every node, walks the subgraph restricted to edges of the given
//	type with an iterative DFS and reports each node that is reachable
//	but not directly connected. Inference only: the graph is never
//	mutated, and non-transitive types yield nothing.
//
// Complexity: O(V · (V + E)) worst case; intended for moderate graphs.
func (r *Registry) InferTransitive(g *Graph, t RelType) []TransitiveCandidate {
	meta, ok := r.Metadata(t)
	if !ok || !meta.Transitive {
		return nil
	}

	// Type-restricted adjacency, built once.
	next := make(map[string][]string)
	for _, e := range g.Edges() {
		if e.Type == t {
			next[e.Source] = append(next[e.Source], e.Target)
		}
	}

	var out []TransitiveCandidate
	for _, start := range g.NodeIDs() {
		if len(next[start]) == 0 {
			continue
		}

		direct := make(map[string]struct{}, len(next[start]))
		for _, n := range next[start] {
			direct[n] = struct{}{}
		}

		visited := map[string]struct{}{start: {}}
		stack := append([]string(nil), next[start]...)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := visited[cur]; seen {
				continue
			}
			visited[cur] = struct{}{}

			if _, isDirect := direct[cur]; !isDirect && cur != start {
				out = append(out, TransitiveCandidate{Source: start, Target: cur, Type: t})
			}
			stack = append(stack, next[cur]...)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// registryFile is the YAML shape for custom types and constraints.
type registryFile struct {
	CustomTypes map[string]RelMetadata `yaml:"custom_types"`
	Constraints map[string][]TypePair  `yaml:"constraints"`
}

// LoadYAML registers custom types and constraints from a YAML document.
//
// Example document:
//
//	custom_types:
//	  inspired_by:
//	    bidirectional: false
//	    description: source drew inspiration from target
//	    max_weight: 1.0
//	constraints:
//	  inspired_by:
//	    - {source: Note, target: Bookmark}
//
// Registration stops at the first invalid custom type.
func (r *Registry) LoadYAML(reader io.Reader) error {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse registry config: %w", err)
	}

	names := make([]string, 0, len(file.CustomTypes))
	for name := range file.CustomTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.RegisterCustom(RelType(name), file.CustomTypes[name]); err != nil {
			return err
		}
	}

	for name, pairs := range file.Constraints {
		r.SetConstraint(RelType(name), pairs)
	}
	return nil
}
