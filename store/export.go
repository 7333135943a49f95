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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/knowledgegraph/graph"
)

// =============================================================================
// Graph Export
// =============================================================================
//
// Three interchange formats:
//
//   - JSON: the native document shape, lossless round-trip.
//   - GEXF 1.2: for Gephi and similar network-visualization tools.
//   - GraphML: for yEd, igraph, NetworkX and the wider graph ecosystem.
//
// The XML formats are lossy: node properties are dropped and only title,
// type, weight, and relationship type survive. Output is deterministic
// because the snapshot orders nodes by UID and edges by identity triple.

// ExportJSON writes the graph's document snapshot as indented JSON.
func ExportJSON(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Snapshot()); err != nil {
		return fmt.Errorf("encode graph document: %w", err)
	}
	return nil
}

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Meta    gexfMeta  `xml:"meta"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	LastModified string `xml:"lastmodifieddate,attr"`
	Creator      string `xml:"creator"`
}

type gexfGraph struct {
	DefaultEdgeType string     `xml:"defaultedgetype,attr"`
	Nodes           []gexfNode `xml:"nodes>node"`
	Edges           []gexfEdge `xml:"edges>edge"`
}

type gexfNode struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr"`
}

type gexfEdge struct {
	ID     int     `xml:"id,attr"`
	Source string  `xml:"source,attr"`
	Target string  `xml:"target,attr"`
	Label  string  `xml:"label,attr"`
	Weight float64 `xml:"weight,attr"`
}

// ExportGEXF writes the graph in GEXF 1.2 for visualization tools.
func ExportGEXF(w io.Writer, g *graph.Graph) error {
	doc := g.Snapshot()

	out := gexfDoc{
		XMLNS:   "http://www.gexf.net/1.2draft",
		Version: "1.2",
		Meta: gexfMeta{
			LastModified: time.Now().UTC().Format("2006-01-02"),
			Creator:      "knowledgegraph",
		},
		Graph: gexfGraph{DefaultEdgeType: "directed"},
	}

	for _, n := range doc.Nodes {
		label := n.Title
		if label == "" {
			label = n.UID
		}
		out.Graph.Nodes = append(out.Graph.Nodes, gexfNode{ID: n.UID, Label: label})
	}
	for i, e := range doc.Edges {
		out.Graph.Edges = append(out.Graph.Edges, gexfEdge{
			ID:     i,
			Source: e.Source,
			Target: e.Target,
			Label:  e.Type,
			Weight: e.Weight,
		})
	}

	return writeXML(w, out)
}

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string         `xml:"id,attr"`
	Data []graphmlValue `xml:"data"`
}

type graphmlEdge struct {
	Source string         `xml:"source,attr"`
	Target string         `xml:"target,attr"`
	Data   []graphmlValue `xml:"data"`
}

type graphmlValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ExportGraphML writes the graph in GraphML.
func ExportGraphML(w io.Writer, g *graph.Graph) error {
	doc := g.Snapshot()

	out := graphmlDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "title", For: "node", AttrName: "title", AttrType: "string"},
			{ID: "type", For: "node", AttrName: "type", AttrType: "string"},
			{ID: "rel", For: "edge", AttrName: "relationship", AttrType: "string"},
			{ID: "weight", For: "edge", AttrName: "weight", AttrType: "double"},
		},
		Graph: graphmlGraph{ID: "G", EdgeDefault: "directed"},
	}

	for _, n := range doc.Nodes {
		out.Graph.Nodes = append(out.Graph.Nodes, graphmlNode{
			ID: n.UID,
			Data: []graphmlValue{
				{Key: "title", Value: n.Title},
				{Key: "type", Value: n.Type},
			},
		})
	}
	for _, e := range doc.Edges {
		out.Graph.Edges = append(out.Graph.Edges, graphmlEdge{
			Source: e.Source,
			Target: e.Target,
			Data: []graphmlValue{
				{Key: "rel", Value: e.Type},
				{Key: "weight", Value: fmt.Sprintf("%g", e.Weight)},
			},
		})
	}

	return writeXML(w, out)
}

func writeXML(w io.Writer, doc any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write XML header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode XML document: %w", err)
	}
	// Encoder output doesn't end with a newline.
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
