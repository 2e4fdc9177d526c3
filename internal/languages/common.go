package languages

import (
	"path/filepath"
	"strings"

	"github.com/codenav/codenav/internal/graphmodel"
)

// rawCall is an intermediate call-site record produced while walking a
// function/method body, before it is lowered into a graphmodel.Edge whose
// FromID points at the enclosing symbol.
type rawCall struct {
	Name      string
	Qualifier string
	Line      int
}

// rawSymbol is an intermediate extraction result, one per definition found
// in a file, before conversion to a graphmodel.Node plus its outgoing edges.
type rawSymbol struct {
	Name      string
	Kind      graphmodel.Kind
	Signature string
	Line      int
	Doc       string
	Calls     []rawCall
}

// lowerSymbols converts the intermediate symbols collected by an extractor
// into the canonical node/edge pair, applying the first-wins duplicate rule
// spec §4.2 requires within one file and routing every id through
// graphmodel.MakeNodeID.
func lowerSymbols(path, pkg string, symbols []rawSymbol) ([]graphmodel.Node, []graphmodel.Edge) {
	seen := make(map[string]bool, len(symbols))
	nodes := make([]graphmodel.Node, 0, len(symbols))
	edges := make([]graphmodel.Edge, 0)

	for _, sym := range symbols {
		id := graphmodel.MakeNodeID(path, sym.Name, sym.Line)
		if seen[id] {
			continue
		}
		seen[id] = true

		nodes = append(nodes, graphmodel.Node{
			ID:        id,
			Name:      sym.Name,
			Kind:      sym.Kind,
			FilePath:  path,
			Line:      sym.Line,
			Signature: sym.Signature,
			Package:   pkg,
			Doc:       sym.Doc,
		})

		for _, call := range sym.Calls {
			kind := graphmodel.EdgeDirect
			if call.Qualifier != "" {
				kind = graphmodel.EdgeVirtual
			}
			edges = append(edges, graphmodel.Edge{
				FromID:       id,
				ToName:       call.Name,
				Kind:         kind,
				CallSiteLine: call.Line,
			})
		}
	}

	return nodes, edges
}

func splitQualifiedName(raw string) (qualifier, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:])
	}
	return "", raw
}

func packageNameFromPath(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
