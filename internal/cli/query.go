package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/codenav/codenav/internal/persistence"
	"github.com/codenav/codenav/internal/query"
	"github.com/spf13/cobra"
)

func runQuery(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	graphPath, _ := optionalStringFlag(cmd, "graph")
	name, _ := optionalStringFlag(cmd, "name")
	kind, _ := optionalStringFlag(cmd, "type")
	fileGlob, _ := optionalStringFlag(cmd, "file")
	pkg, _ := optionalStringFlag(cmd, "package")
	countOnly, _ := boolFlag(cmd, "count")
	asJSON, _ := boolFlag(cmd, "json")
	failOnEmpty, _ := boolFlag(cmd, "fail-on-empty")

	s, err := persistence.LoadFast(graphPath)
	if err != nil {
		return ioError(err)
	}

	result, err := query.Run(s, query.Filter{
		Name: name, Kind: kind, FileGlob: fileGlob, Package: pkg, CountOnly: countOnly,
	})
	if err != nil {
		return usageError(err)
	}

	if failOnEmpty && result.Count == 0 {
		return emptyResultError(fmt.Errorf("query matched zero nodes"))
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if countOnly {
			return encoder.Encode(map[string]int{"count": result.Count})
		}
		return encoder.Encode(result.Nodes)
	}

	if countOnly {
		fmt.Println(result.Count)
		return nil
	}
	for _, n := range result.Nodes {
		fmt.Printf("%s\t%s\t%s:%d\n", n.Kind, n.Name, n.FilePath, n.Line)
	}
	return nil
}
