package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/codenav/codenav/internal/export"
	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/persistence"
	"github.com/spf13/cobra"
)

func runExport(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	graphPath, _ := optionalStringFlag(cmd, "graph")
	formatStr, _ := optionalStringFlag(cmd, "format")
	outputPath, _ := optionalStringFlag(cmd, "output")
	scope, _ := optionalStringFlag(cmd, "scope")
	scopeDepth, _ := intFlag(cmd, "scope-depth")
	packageFilter, _ := optionalStringFlag(cmd, "package")
	kindFilter, _ := optionalStringFlag(cmd, "type")
	excludeTests, _ := boolFlag(cmd, "exclude-tests")

	if outputPath == "" {
		return usageError(fmt.Errorf("--output is required"))
	}

	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return usageError(err)
	}

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	if scope != "" {
		s = scopeToReachable(s, scope, scopeDepth)
	}

	if packageFilter != "" || kindFilter != "" || excludeTests {
		var kind graphmodel.Kind
		hasKind := false
		if kindFilter != "" {
			kind, err = graphmodel.ParseKind(kindFilter)
			if err != nil {
				return usageError(err)
			}
			hasKind = true
		}
		s = s.Filter(func(n graphmodel.Node) bool {
			if packageFilter != "" && n.Package != packageFilter {
				return false
			}
			if hasKind && n.Kind != kind {
				return false
			}
			if excludeTests && isTestFile(n.FilePath) {
				return false
			}
			return true
		})
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return ioError(err)
	}
	defer f.Close()

	if err := export.Write(f, s, format); err != nil {
		return ioError(err)
	}

	logger.Info("exported graph", "format", format, "output", outputPath, "nodes", s.NodeCount(), "edges", s.EdgeCount())
	return nil
}

// isTestFile mirrors original_source's CodeGraph::filter exclude_tests rule.
func isTestFile(filePath string) bool {
	return strings.Contains(filePath, "_test") || strings.Contains(filePath, ".test.")
}
