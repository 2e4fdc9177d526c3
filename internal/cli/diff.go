package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/codenav/codenav/internal/diffgraph"
	"github.com/codenav/codenav/internal/persistence"
	"github.com/spf13/cobra"
)

func runDiff(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	oldPath, newPath := args[0], args[1]
	showAdded, _ := boolFlag(cmd, "show-added")
	showRemoved, _ := boolFlag(cmd, "show-removed")
	showChanged, _ := boolFlag(cmd, "show-changed")
	threshold, _ := intFlag(cmd, "complexity-threshold")
	asJSON, _ := boolFlag(cmd, "json")
	scope, _ := optionalStringFlag(cmd, "scope")
	scopeDepth, _ := intFlag(cmd, "scope-depth")

	oldStore, err := persistence.LoadFast(oldPath)
	if err != nil {
		return ioError(fmt.Errorf("loading %s: %w", oldPath, err))
	}
	newStore, err := persistence.LoadFast(newPath)
	if err != nil {
		return ioError(fmt.Errorf("loading %s: %w", newPath, err))
	}

	if scope != "" {
		// Narrow both sides to the same symbol's call subgraph before
		// diffing, so added/removed/changed nodes outside scope never
		// surface.
		oldStore = scopeToReachable(oldStore, scope, scopeDepth)
		newStore = scopeToReachable(newStore, scope, scopeDepth)
	}

	result := diffgraph.Diff(oldStore, newStore, diffgraph.Options{
		ShowAdded:           showAdded,
		ShowRemoved:         showRemoved,
		ShowChanged:         showChanged,
		ComplexityThreshold: threshold,
	})

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	for _, n := range result.Added {
		fmt.Printf("+ %s\t%s:%d\n", n.Name, n.FilePath, n.Line)
	}
	for _, n := range result.Removed {
		fmt.Printf("- %s\t%s:%d\n", n.Name, n.FilePath, n.Line)
	}
	for _, c := range result.Changed {
		fmt.Printf("~ %s\t%s:%d\t%v\n", c.New.Name, c.New.FilePath, c.New.Line, c.Why)
	}
	return nil
}
