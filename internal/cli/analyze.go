package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/codenav/codenav/internal/analytics"
	"github.com/codenav/codenav/internal/persistence"
	"github.com/spf13/cobra"
)

func runAnalyze(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	mode := args[0]
	graphPath, _ := optionalStringFlag(cmd, "graph")
	threshold, _ := intFlag(cmd, "threshold")
	minConnections, _ := intFlag(cmd, "min-connections")
	force, _ := boolFlag(cmd, "force")
	topN, _ := intFlag(cmd, "top")
	asJSON, _ := boolFlag(cmd, "json")

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	switch mode {
	case "complexity":
		report := analytics.ComplexityReport(s)
		if threshold > 0 {
			report = filterComplexity(report, threshold)
		}
		return printJSONOrLines(asJSON, report, func() {
			for _, c := range report {
				fmt.Printf("%s\tfan_in=%d\tfan_out=%d\tscore=%d\n", c.Node.Name, c.FanIn, c.FanOut, c.Score)
			}
		})

	case "hotspots":
		report := analytics.Hotspots(s, topN)
		return printJSONOrLines(asJSON, report, func() {
			for _, h := range report {
				fmt.Printf("%s\t%d\n", h.Name, h.Count)
			}
		})

	case "coupling":
		pairs, err := analytics.Coupling(s, minConnections, force || threshold > 0)
		if err != nil {
			return usageError(err)
		}
		return printJSONOrLines(asJSON, pairs, func() {
			for _, p := range pairs {
				fmt.Printf("%s\t%s\t%d\n", p.A.Name, p.B.Name, p.Score)
			}
		})

	case "circular":
		cycles := analytics.CircularDependencies(s)
		return printJSONOrLines(asJSON, cycles, func() {
			for _, c := range cycles {
				names := make([]string, len(c.Nodes))
				for i, n := range c.Nodes {
					names[i] = n.Name
				}
				fmt.Println(joinNames(names))
			}
		})

	default:
		return usageError(fmt.Errorf("unknown analyze mode %q (expected hotspots|coupling|circular|complexity)", mode))
	}
}

func filterComplexity(in []analytics.Complexity, threshold int) []analytics.Complexity {
	var out []analytics.Complexity
	for _, c := range in {
		if c.Score >= threshold {
			out = append(out, c)
		}
	}
	return out
}

func printJSONOrLines(asJSON bool, payload any, printLines func()) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}
	printLines()
	return nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}
