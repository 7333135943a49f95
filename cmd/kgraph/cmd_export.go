// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/knowledgegraph/graph"
	"github.com/AleutianAI/knowledgegraph/store"
)

// exporters maps format names to writers.
var exporters = map[string]func(io.Writer, *graph.Graph) error{
	"json":    store.ExportJSON,
	"gexf":    store.ExportGEXF,
	"graphml": store.ExportGraphML,
}

func runExport(cmd *cobra.Command, args []string) error {
	export, ok := exporters[exportFormat]
	if !ok {
		return fmt.Errorf("unknown format %q (want json, gexf, or graphml)", exportFormat)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	out := io.Writer(os.Stdout)
	if exportOutput != "" {
		file, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer file.Close()
		out = file
	}

	if err := export(out, g); err != nil {
		return fmt.Errorf("export %s: %w", exportFormat, err)
	}
	if exportOutput != "" {
		fmt.Printf("Exported %d nodes and %d edges to %s\n",
			g.NodeCount(), g.EdgeCount(), exportOutput)
	}
	return nil
}
