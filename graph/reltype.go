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

import "slices"

// RelType is the enumerated kind of an edge.
//
// The standard vocabulary below is closed; additional kinds are registered
// at runtime through Registry.RegisterCustom and carry metadata of the
// same shape. Values are the byte-exact strings used on the wire.
type RelType string

// Knowledge relationships.
const (
	RelRelatedTo   RelType = "related_to"
	RelSimilarTo   RelType = "similar_to"
	RelContradicts RelType = "contradicts"
	RelSupports    RelType = "supports"
	RelDerivedFrom RelType = "derived_from"
	RelReferences  RelType = "references"
)

// Hierarchical relationships.
const (
	RelParentOf RelType = "parent_of"
	RelChildOf  RelType = "child_of"
	RelPartOf   RelType = "part_of"
	RelContains RelType = "contains"
)

// Temporal relationships.
const (
	RelPrecedes       RelType = "precedes"
	RelFollows        RelType = "follows"
	RelConcurrentWith RelType = "concurrent_with"
)

// Learning relationships.
const (
	RelPrerequisiteOf RelType = "prerequisite_of"
	RelBuildsOn       RelType = "builds_on"
	RelPractices      RelType = "practices"
	RelTeaches        RelType = "teaches"
	RelAssesses       RelType = "assesses"
)

// Project relationships.
const (
	RelDependsOn     RelType = "depends_on"
	RelBlocks        RelType = "blocks"
	RelContributesTo RelType = "contributes_to"
	RelMilestoneOf   RelType = "milestone_of"
)

// Reference relationships.
const (
	RelCites      RelType = "cites"
	RelQuotes     RelType = "quotes"
	RelSummarizes RelType = "summarizes"
	RelAnnotates  RelType = "annotates"
)

// Tagging relationships.
const (
	RelTaggedWith    RelType = "tagged_with"
	RelCategorizedAs RelType = "categorized_as"
)

// Authorship relationships.
const (
	RelCreatedBy    RelType = "created_by"
	RelMaintainedBy RelType = "maintained_by"
	RelReviewedBy   RelType = "reviewed_by"
)

// RelMetadata describes the semantics of a relationship type.
type RelMetadata struct {
	// Bidirectional marks symmetric types. Creating such an edge through
	// AddEdgeMirrored also creates the identical-type reverse edge.
	Bidirectional bool `yaml:"bidirectional"`

	// Transitive marks types where A→B and B→C implies a candidate A→C.
	// Transitive candidates are only ever inferred, never auto-created.
	Transitive bool `yaml:"transitive"`

	// MinWeight and MaxWeight bound the conventional weight range.
	MinWeight float64 `yaml:"min_weight"`
	MaxWeight float64 `yaml:"max_weight" validate:"gtefield=MinWeight"`

	// Description is a short human-readable explanation.
	Description string `yaml:"description" validate:"required"`

	// Reverse names the complementary type for asymmetric pairs
	// (e.g. parent_of / child_of). Empty when no complement exists.
	Reverse RelType `yaml:"reverse"`
}

// standardRelMetadata is the fixed metadata table for the standard vocabulary.
var standardRelMetadata = map[RelType]RelMetadata{
	RelRelatedTo:   {Bidirectional: true, MinWeight: 0, MaxWeight: 1, Description: "general association between two items"},
	RelSimilarTo:   {Bidirectional: true, MinWeight: 0, MaxWeight: 1, Description: "items cover overlapping material"},
	RelContradicts: {Bidirectional: true, MinWeight: 0, MaxWeight: 1, Description: "items make conflicting claims"},
	RelSupports:    {MinWeight: 0, MaxWeight: 1, Description: "source provides evidence for target"},
	RelDerivedFrom: {MinWeight: 0, MaxWeight: 1, Description: "source was produced from target"},
	RelReferences:  {MinWeight: 0, MaxWeight: 1, Description: "source mentions target"},

	RelParentOf: {MinWeight: 0, MaxWeight: 1, Description: "source is the hierarchical parent of target", Reverse: RelChildOf},
	RelChildOf:  {MinWeight: 0, MaxWeight: 1, Description: "source is a hierarchical child of target", Reverse: RelParentOf},
	RelPartOf:   {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source is a component of target", Reverse: RelContains},
	RelContains: {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source contains target", Reverse: RelPartOf},

	RelPrecedes:       {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source happens before target", Reverse: RelFollows},
	RelFollows:        {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source happens after target", Reverse: RelPrecedes},
	RelConcurrentWith: {Bidirectional: true, MinWeight: 0, MaxWeight: 1, Description: "items happen in the same period"},

	RelPrerequisiteOf: {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source must be learned before target"},
	RelBuildsOn:       {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source extends knowledge from target"},
	RelPractices:      {MinWeight: 0, MaxWeight: 1, Description: "source exercises the skill in target"},
	RelTeaches:        {MinWeight: 0, MaxWeight: 1, Description: "source explains the material in target"},
	RelAssesses:       {MinWeight: 0, MaxWeight: 1, Description: "source tests understanding of target"},

	RelDependsOn:     {Transitive: true, MinWeight: 0, MaxWeight: 1, Description: "source cannot proceed without target"},
	RelBlocks:        {MinWeight: 0, MaxWeight: 1, Description: "source prevents progress on target"},
	RelContributesTo: {MinWeight: 0, MaxWeight: 1, Description: "source advances target"},
	RelMilestoneOf:   {MinWeight: 0, MaxWeight: 1, Description: "source is a checkpoint within target"},

	RelCites:      {MinWeight: 0, MaxWeight: 1, Description: "source formally cites target"},
	RelQuotes:     {MinWeight: 0, MaxWeight: 1, Description: "source reproduces text from target"},
	RelSummarizes: {MinWeight: 0, MaxWeight: 1, Description: "source condenses target"},
	RelAnnotates:  {MinWeight: 0, MaxWeight: 1, Description: "source adds commentary to target"},

	RelTaggedWith:    {MinWeight: 0, MaxWeight: 1, Description: "source carries the tag target"},
	RelCategorizedAs: {MinWeight: 0, MaxWeight: 1, Description: "source belongs to the category target"},

	RelCreatedBy:    {MinWeight: 0, MaxWeight: 1, Description: "source was authored by target"},
	RelMaintainedBy: {MinWeight: 0, MaxWeight: 1, Description: "source is kept current by target"},
	RelReviewedBy:   {MinWeight: 0, MaxWeight: 1, Description: "source was reviewed by target"},
}

// StandardRelTypes returns the standard vocabulary in sorted order.
func StandardRelTypes() []RelType {
	out := make([]RelType, 0, len(standardRelMetadata))
	for t := range standardRelMetadata {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
