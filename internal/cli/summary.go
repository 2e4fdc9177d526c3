package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// IndexSummary is the machine-readable run summary for `index`, adapted
// from the teacher's RunSummary to this repository's discovery/merge
// terminology.
type IndexSummary struct {
	RootPath     string   `json:"root_path"`
	OutputFile   string   `json:"output_file"`
	Scanned      int      `json:"scanned"`
	Extracted    int      `json:"extracted"`
	Reused       int      `json:"reused"`
	Removed      int      `json:"removed"`
	NodeCount    int      `json:"node_count"`
	EdgeCount    int      `json:"edge_count"`
	Issues       int      `json:"issues"`
	DurationMS   int64    `json:"duration_ms"`
	RemovedFiles []string `json:"removed_files,omitempty"`
}

func printIndexSummary(summary IndexSummary, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	fmt.Printf("index complete in %dms\n", summary.DurationMS)
	fmt.Printf("output: %s\n", summary.OutputFile)
	fmt.Printf("files: scanned=%d extracted=%d reused=%d removed=%d\n",
		summary.Scanned, summary.Extracted, summary.Reused, summary.Removed)
	fmt.Printf("graph: nodes=%d edges=%d issues=%d\n", summary.NodeCount, summary.EdgeCount, summary.Issues)
	if len(summary.RemovedFiles) > 0 {
		fmt.Printf("removed files (%d): %s\n", len(summary.RemovedFiles), summarizePaths(summary.RemovedFiles, 8))
	}
	return nil
}

func summarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
