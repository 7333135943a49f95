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
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// PropertyKind identifies the value kind held by a PropertyValue.
//
// Properties are deliberately a closed union rather than interface{} so
// that serialized documents round-trip across languages without loss.
type PropertyKind int

const (
	// KindString holds a UTF-8 string.
	KindString PropertyKind = iota

	// KindNumber holds a float64.
	KindNumber

	// KindBool holds a boolean.
	KindBool

	// KindTime holds a timestamp (serialized as RFC 3339).
	KindTime

	// KindStringList holds an ordered list of strings.
	KindStringList
)

// propertyKindNames maps PropertyKind values to their wire names.
var propertyKindNames = map[PropertyKind]string{
	KindString:     "string",
	KindNumber:     "number",
	KindBool:       "bool",
	KindTime:       "timestamp",
	KindStringList: "string_list",
}

// String returns the wire name of the PropertyKind.
func (k PropertyKind) String() string {
	if name, ok := propertyKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// PropertyValue is a tagged value in a node or edge property bag.
//
// Exactly one of the payload fields is meaningful, selected by Kind.
// Use the constructor functions rather than building the struct directly.
type PropertyValue struct {
	Kind PropertyKind

	Str  string
	Num  float64
	Bool bool
	Time time.Time
	List []string
}

// StringValue returns a PropertyValue holding a string.
func StringValue(s string) PropertyValue {
	return PropertyValue{Kind: KindString, Str: s}
}

// NumberValue returns a PropertyValue holding a float64.
func NumberValue(n float64) PropertyValue {
	return PropertyValue{Kind: KindNumber, Num: n}
}

// BoolValue returns a PropertyValue holding a boolean.
func BoolValue(b bool) PropertyValue {
	return PropertyValue{Kind: KindBool, Bool: b}
}

// TimeValue returns a PropertyValue holding a timestamp.
func TimeValue(t time.Time) PropertyValue {
	return PropertyValue{Kind: KindTime, Time: t}
}

// ListValue returns a PropertyValue holding a string list.
// The slice is copied so later caller mutation cannot leak in.
func ListValue(items []string) PropertyValue {
	return PropertyValue{Kind: KindStringList, List: slices.Clone(items)}
}

// Equal reports whether two property values have the same kind and payload.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindNumber:
		return v.Num == other.Num
	case KindBool:
		return v.Bool == other.Bool
	case KindTime:
		return v.Time.Equal(other.Time)
	case KindStringList:
		return slices.Equal(v.List, other.List)
	default:
		return false
	}
}

// propertyWire is the serialized form of a PropertyValue.
type propertyWire struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON serializes the value as {"kind": ..., "value": ...}.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind {
	case KindString:
		payload = v.Str
	case KindNumber:
		payload = v.Num
	case KindBool:
		payload = v.Bool
	case KindTime:
		payload = v.Time.Format(time.RFC3339Nano)
	case KindStringList:
		payload = v.List
	default:
		return nil, fmt.Errorf("%w: property kind %d", ErrMalformedDocument, v.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(propertyWire{Kind: v.Kind.String(), Value: raw})
}

// UnmarshalJSON reverses MarshalJSON.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var wire propertyWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch wire.Kind {
	case "string":
		v.Kind = KindString
		return json.Unmarshal(wire.Value, &v.Str)
	case "number":
		v.Kind = KindNumber
		return json.Unmarshal(wire.Value, &v.Num)
	case "bool":
		v.Kind = KindBool
		return json.Unmarshal(wire.Value, &v.Bool)
	case "timestamp":
		v.Kind = KindTime
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		v.Time = t
		return nil
	case "string_list":
		v.Kind = KindStringList
		return json.Unmarshal(wire.Value, &v.List)
	default:
		return fmt.Errorf("%w: property kind %q", ErrMalformedDocument, wire.Kind)
	}
}

// Properties is a typed key/value bag attached to nodes and edges.
type Properties map[string]PropertyValue

// Clone returns a deep copy of the property bag.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		if v.Kind == KindStringList {
			v.List = slices.Clone(v.List)
		}
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into p, overwriting existing keys.
func (p Properties) Merge(other Properties) {
	for k, v := range other {
		if v.Kind == KindStringList {
			v.List = slices.Clone(v.List)
		}
		p[k] = v
	}
}

// Equal reports whether two property bags hold the same entries.
func (p Properties) Equal(other Properties) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
