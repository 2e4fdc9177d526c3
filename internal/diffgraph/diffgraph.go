// Package diffgraph compares two persisted graphs and reports the set of
// added, removed, and changed nodes between them.
package diffgraph

import (
	"sort"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// Change describes a node present in both graphs whose signature, kind,
// or callee set differs between old and new.
type Change struct {
	Old graphmodel.Node `json:"old"`
	New graphmodel.Node `json:"new"`
	Why []string        `json:"why"`
}

// Result is the full diff between an old and new graph.
type Result struct {
	Added   []graphmodel.Node `json:"added"`
	Removed []graphmodel.Node `json:"removed"`
	Changed []Change          `json:"changed"`
}

// Options gates which sections are computed and filters changed/added/removed
// nodes down to ones whose fan-in+fan-out is at or above ComplexityThreshold.
type Options struct {
	ShowAdded            bool
	ShowRemoved          bool
	ShowChanged          bool
	ComplexityThreshold  int
}

// Diff compares old and new, keyed by each node's canonical id. A node id
// that exists in both graphs but whose signature, kind, line or callee set
// differs is reported as Changed (other fields such as doc or package are
// not compared); an id unique to one side is Added or Removed accordingly.
func Diff(oldStore, newStore *store.Store, opts Options) Result {
	var result Result

	oldByID := make(map[string]graphmodel.Node, oldStore.NodeCount())
	for _, n := range oldStore.Nodes() {
		oldByID[n.ID] = n
	}
	newByID := make(map[string]graphmodel.Node, newStore.NodeCount())
	for _, n := range newStore.Nodes() {
		newByID[n.ID] = n
	}

	if opts.ShowAdded {
		for id, n := range newByID {
			if _, ok := oldByID[id]; ok {
				continue
			}
			if passesThreshold(newStore, n, opts.ComplexityThreshold) {
				result.Added = append(result.Added, n)
			}
		}
	}

	if opts.ShowRemoved {
		for id, n := range oldByID {
			if _, ok := newByID[id]; ok {
				continue
			}
			if passesThreshold(oldStore, n, opts.ComplexityThreshold) {
				result.Removed = append(result.Removed, n)
			}
		}
	}

	if opts.ShowChanged {
		for id, oldNode := range oldByID {
			newNode, ok := newByID[id]
			if !ok {
				continue
			}
			why := diffReasons(oldStore, newStore, oldNode, newNode)
			if len(why) == 0 {
				continue
			}
			if !passesThreshold(newStore, newNode, opts.ComplexityThreshold) {
				continue
			}
			result.Changed = append(result.Changed, Change{Old: oldNode, New: newNode, Why: why})
		}
	}

	sort.Slice(result.Added, func(i, j int) bool { return result.Added[i].ID < result.Added[j].ID })
	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i].ID < result.Removed[j].ID })
	sort.Slice(result.Changed, func(i, j int) bool { return result.Changed[i].Old.ID < result.Changed[j].Old.ID })

	return result
}

func diffReasons(oldStore, newStore *store.Store, oldNode, newNode graphmodel.Node) []string {
	var why []string
	if oldNode.Signature != newNode.Signature {
		why = append(why, "signature changed")
	}
	if oldNode.Kind != newNode.Kind {
		why = append(why, "kind changed")
	}
	if oldNode.Line != newNode.Line {
		why = append(why, "line moved")
	}
	if !sameCalleeSet(oldStore, oldNode, newStore, newNode) {
		why = append(why, "callees changed")
	}
	return why
}

func sameCalleeSet(oldStore *store.Store, oldNode graphmodel.Node, newStore *store.Store, newNode graphmodel.Node) bool {
	oldCallees := calleeSet(oldStore, oldNode.ID)
	newCallees := calleeSet(newStore, newNode.ID)
	if len(oldCallees) != len(newCallees) {
		return false
	}
	for name := range oldCallees {
		if !newCallees[name] {
			return false
		}
	}
	return true
}

func calleeSet(s *store.Store, nodeID string) map[string]bool {
	out := make(map[string]bool)
	for _, idx := range s.OutgoingEdgeIndices(nodeID) {
		out[s.EdgeAt(idx).ToName] = true
	}
	return out
}

func passesThreshold(s *store.Store, n graphmodel.Node, threshold int) bool {
	if threshold <= 0 {
		return true
	}
	fanOut := len(s.OutgoingEdgeIndices(n.ID))
	fanIn := len(s.IncomingEdgeIndices(n.Name))
	return fanIn+fanOut >= threshold
}
