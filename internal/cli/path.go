package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/codenav/codenav/internal/persistence"
	"github.com/codenav/codenav/internal/traverse"
	"github.com/spf13/cobra"
)

// pathAllTimeout is the wall-clock cap on exhaustive --all exploration,
// per SPEC_FULL.md §9's resolved open question 1.
const pathAllTimeout = 30 * time.Second

func runPath(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	graphPath, _ := optionalStringFlag(cmd, "graph")
	from, _ := optionalStringFlag(cmd, "from")
	to, _ := optionalStringFlag(cmd, "to")
	limit, _ := intFlag(cmd, "limit")
	all, _ := boolFlag(cmd, "all")
	maxDepth, _ := intFlag(cmd, "max-depth")
	asJSON, _ := boolFlag(cmd, "json")

	if from == "" || to == "" {
		return usageError(fmt.Errorf("--from and --to are required"))
	}

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	if all {
		// --all always explores exhaustively regardless of --limit's
		// value (KPaths treats limit<=0 as unlimited).
		ctx, cancel := context.WithTimeout(context.Background(), pathAllTimeout)
		defer cancel()
		paths, status := traverse.KPaths(ctx, s, from, to, maxDepth, 0)
		if status == traverse.Cancelled {
			// Exceeding the wall-clock cap surfaces as a partial,
			// DepthExceeded-shaped result rather than an error.
			status = traverse.DepthExceeded
		}
		return printPathResult(paths, status, asJSON)
	}

	if limit > 1 {
		paths, status := traverse.KPaths(context.Background(), s, from, to, maxDepth, limit)
		return printPathResult(paths, status, asJSON)
	}

	path, status := traverse.ShortestPath(context.Background(), s, from, to, maxDepth)
	return printPathResult([]traverse.Path{path}, status, asJSON)
}

func printPathResult(paths []traverse.Path, status traverse.Status, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{"status": status.String(), "paths": paths})
	}

	fmt.Printf("status: %s\n", status)
	for i, p := range paths {
		if len(p.Edges) == 0 {
			continue
		}
		fmt.Printf("path %d:\n", i+1)
		for _, e := range p.Edges {
			fmt.Printf("  -> %s\n", e.ToName)
		}
	}
	return nil
}
