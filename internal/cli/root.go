package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// rootVersion is recorded so index can stamp Metadata.IndexerVersion
// without threading the version string through every handler signature.
var rootVersion string

// NewRootCommand builds the cobra command tree for the SPEC_FULL.md §6
// command surface, grounded on the teacher's NewRootCommand(version)
// explicit-construction style, generalized to also accept a *slog.Logger
// (constructor injection — see SPEC_FULL.md §6.1).
func NewRootCommand(version string, logger *slog.Logger) *cobra.Command {
	rootVersion = version
	rootCmd := &cobra.Command{
		Use:   "codenav",
		Short: "Build and query a persistent call-graph index of a codebase",
		Long: `codenav extracts functions, methods, classes, and call
relationships from a source tree into a persisted, indexed graph, then
answers structural queries against it: name/kind/file lookups, call
traces, shortest paths between symbols, and graph analytics.`,
	}

	indexCmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Extract a source tree into a persisted graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withLogger(logger, runIndex),
	}
	indexCmd.Flags().String("language", "", "Restrict extraction to one language")
	indexCmd.Flags().String("output", DefaultGraphFile, "Path to the persisted graph file")
	indexCmd.Flags().Bool("incremental", false, "Skip unchanged files using the prior manifest")
	indexCmd.Flags().StringSlice("exclude", nil, "Glob pattern to exclude (repeatable)")
	indexCmd.Flags().Bool("include-tests", false, "Include test files in extraction")
	indexCmd.Flags().Bool("force", false, "Re-extract every file, ignoring the prior manifest")
	indexCmd.Flags().Bool("benchmark", false, "Report extract/merge/persist timings")
	indexCmd.Flags().String("benchmark-json", "", "Write the benchmark report to this file as JSON")
	indexCmd.Flags().String("codec", "zstd", "Compression codec: lz4|zstd|gzip|raw")
	indexCmd.Flags().Bool("json", false, "Print a machine-readable run summary")

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Filter nodes by name, kind, file, or package",
		RunE:  withLogger(logger, runQuery),
	}
	queryCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	queryCmd.Flags().String("name", "", "Name filter (exact or glob with * and ?)")
	queryCmd.Flags().String("type", "", "Kind filter: function|method|handler|class|interface|module")
	queryCmd.Flags().String("file", "", "File glob filter")
	queryCmd.Flags().String("package", "", "Package filter")
	queryCmd.Flags().Bool("count", false, "Print only the match count")
	queryCmd.Flags().Bool("json", false, "Print machine-readable results")
	queryCmd.Flags().Bool("fail-on-empty", false, "Exit 4 when the query yields zero results")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace outgoing calls from a symbol up to a depth",
		RunE:  withLogger(logger, runTrace),
	}
	traceCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	traceCmd.Flags().String("from", "", "Symbol name to trace from (required)")
	traceCmd.Flags().Int("depth", 3, "Traversal depth")
	traceCmd.Flags().String("output", "tree", "Output form: tree|json|dot")
	traceCmd.Flags().Bool("show-lines", false, "Include call-site line numbers")

	callersCmd := &cobra.Command{
		Use:   "callers <name>",
		Short: "Show direct callers of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  withLogger(logger, runCallers),
	}
	callersCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	callersCmd.Flags().String("output", "tree", "Output form: tree|json|table")
	callersCmd.Flags().Bool("show-lines", false, "Include call-site line numbers")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Find the shortest call path between two symbols",
		RunE:  withLogger(logger, runPath),
	}
	pathCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	pathCmd.Flags().String("from", "", "Starting symbol name (required)")
	pathCmd.Flags().String("to", "", "Target symbol name (required)")
	pathCmd.Flags().Int("limit", 1, "Maximum number of paths to return")
	pathCmd.Flags().Bool("all", false, "Explore exhaustively for every path up to --max-depth")
	pathCmd.Flags().Int("max-depth", 10, "Maximum traversal depth")
	pathCmd.Flags().Bool("json", false, "Print machine-readable path results")

	analyzeCmd := &cobra.Command{
		Use:   "analyze {hotspots|coupling|circular|complexity}",
		Short: "Run a graph analytic over the persisted graph",
		Args:  cobra.ExactArgs(1),
		RunE:  withLogger(logger, runAnalyze),
	}
	analyzeCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	analyzeCmd.Flags().Int("threshold", 0, "Minimum complexity score to report; for coupling, any positive value lifts the node-count gate")
	analyzeCmd.Flags().Int("min-connections", 1, "Minimum shared callees for coupling")
	analyzeCmd.Flags().Bool("force", false, "Bypass the coupling node-count safety gate")
	analyzeCmd.Flags().Int("top", 10, "Top-N results for hotspots")
	analyzeCmd.Flags().Bool("json", false, "Print machine-readable analytics results")

	diffCmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Diff two persisted graphs",
		Args:  cobra.ExactArgs(2),
		RunE:  withLogger(logger, runDiff),
	}
	diffCmd.Flags().Bool("show-added", true, "Show added nodes")
	diffCmd.Flags().Bool("show-removed", true, "Show removed nodes")
	diffCmd.Flags().Bool("show-changed", true, "Show changed nodes")
	diffCmd.Flags().Int("complexity-threshold", 0, "Only report nodes with fan-in+fan-out at or above this value")
	diffCmd.Flags().Bool("json", false, "Print machine-readable diff results")
	diffCmd.Flags().String("scope", "", "Restrict the diff to the call subgraph reachable from this symbol")
	diffCmd.Flags().Int("scope-depth", 10, "Traversal depth used by --scope")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the persisted graph to an external format",
		RunE:  withLogger(logger, runExport),
	}
	exportCmd.Flags().String("graph", DefaultGraphFile, "Path to the persisted graph file")
	exportCmd.Flags().String("format", "graphml", "Export format: graphml|dot|csv")
	exportCmd.Flags().StringP("output", "o", "", "Output file path (required)")
	exportCmd.Flags().String("scope", "", "Restrict export to the call subgraph reachable from this symbol")
	exportCmd.Flags().Int("scope-depth", 10, "Traversal depth used by --scope")
	exportCmd.Flags().String("package", "", "Only export nodes in this package")
	exportCmd.Flags().String("type", "", "Only export nodes of this kind: function|method|handler|class|interface|module")
	exportCmd.Flags().Bool("exclude-tests", false, "Exclude nodes defined in test files")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codenav %s\n", version)
		},
	}

	rootCmd.AddCommand(
		indexCmd,
		queryCmd,
		traceCmd,
		callersCmd,
		pathCmd,
		analyzeCmd,
		diffCmd,
		exportCmd,
		versionCmd,
	)

	return rootCmd
}

// withLogger closes a command handler over the root logger, matching the
// constructor-injection style the teacher uses for GenerateContext's
// explicit parameters rather than a package-level global.
func withLogger(logger *slog.Logger, fn func(*slog.Logger, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return fn(logger, cmd, args)
	}
}
