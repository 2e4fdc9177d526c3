package cli

import (
	"context"

	"github.com/codenav/codenav/internal/store"
	"github.com/codenav/codenav/internal/traverse"
)

// scopeToReachable narrows s to the induced sub-store reachable downstream
// from fromName within maxDepth, via Store.ExtractSubgraph. Used by export
// and diff's --scope flag to bound output to one symbol's call subgraph
// instead of the whole loaded graph (SPEC_FULL.md glossary: "Induced
// sub-store"; grounded on original_source's name+depth extract_subgraph).
func scopeToReachable(s *store.Store, fromName string, maxDepth int) *store.Store {
	ids := make(map[string]bool)
	for _, idx := range s.NodeIndicesByName(fromName) {
		ids[s.NodeAt(idx).ID] = true
	}

	hops, _ := traverse.Trace(context.Background(), s, fromName, maxDepth)
	for _, h := range hops {
		ids[h.Edge.FromID] = true
		for _, idx := range s.NodeIndicesByName(h.Edge.ToName) {
			ids[s.NodeAt(idx).ID] = true
		}
	}

	idList := make([]string, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	return s.ExtractSubgraph(idList)
}
