package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/codenav/codenav/internal/persistence"
	"github.com/codenav/codenav/internal/traverse"
	"github.com/spf13/cobra"
)

func runTrace(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	graphPath, _ := optionalStringFlag(cmd, "graph")
	from, _ := optionalStringFlag(cmd, "from")
	depth, _ := intFlag(cmd, "depth")
	outputForm, _ := optionalStringFlag(cmd, "output")
	showLines, _ := boolFlag(cmd, "show-lines")

	if from == "" {
		return usageError(fmt.Errorf("--from is required"))
	}

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	hops, status := traverse.Trace(context.Background(), s, from, depth)
	switch outputForm {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{"status": status.String(), "hops": hops})
	case "dot":
		printTraceDot(from, hops)
	default:
		printTraceTree(from, hops, showLines)
	}
	if status == traverse.NotFound {
		return usageError(fmt.Errorf("symbol %q not found", from))
	}
	return nil
}

func printTraceTree(from string, hops []traverse.Hop, showLines bool) {
	fmt.Printf("%s\n", from)
	for _, h := range hops {
		indent := strings.Repeat("  ", h.Depth+1)
		if showLines {
			fmt.Printf("%s%s (line %d)\n", indent, h.Edge.ToName, h.Edge.CallSiteLine)
		} else {
			fmt.Printf("%s%s\n", indent, h.Edge.ToName)
		}
	}
}

func printTraceDot(from string, hops []traverse.Hop) {
	fmt.Println("digraph trace {")
	for _, h := range hops {
		fmt.Printf("  %q -> %q;\n", h.Edge.FromID, h.Edge.ToName)
	}
	fmt.Println("}")
}

func runCallers(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	name := args[0]
	graphPath, _ := optionalStringFlag(cmd, "graph")
	outputForm, _ := optionalStringFlag(cmd, "output")
	showLines, _ := boolFlag(cmd, "show-lines")

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	edges := traverse.Callers(s, name)

	switch outputForm {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(edges)
	case "table":
		for _, e := range edges {
			if showLines {
				fmt.Printf("%s\tline %d\n", e.FromID, e.CallSiteLine)
			} else {
				fmt.Printf("%s\n", e.FromID)
			}
		}
	default:
		fmt.Printf("%s\n", name)
		for _, e := range edges {
			if showLines {
				fmt.Printf("  %s (line %d)\n", e.FromID, e.CallSiteLine)
			} else {
				fmt.Printf("  %s\n", e.FromID)
			}
		}
	}
	return nil
}
