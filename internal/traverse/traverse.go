// Package traverse implements the Traversal Engine (SPEC_FULL.md §4.7):
// bounded-depth trace, reverse callers, shortest path, and k-paths, all
// operating on integer node indices with a cooperative cancellation
// state machine.
package traverse

import (
	"context"
	"sort"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// Status is the traversal result-status enum: Idle -> Running ->
// (Found | Exhausted | DepthExceeded | Cancelled) -> Idle. This is a
// result value, not an error type — TraversalLimit/Cancelled outcomes
// are valid, reportable outcomes per SPEC_FULL.md §7.
type Status int

const (
	Idle Status = iota
	Running
	Found
	Exhausted
	DepthExceeded
	Cancelled
	NotFound
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	case DepthExceeded:
		return "depth_exceeded"
	case Cancelled:
		return "cancelled"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Hop is one step recorded by a trace: the edge taken and the depth at
// which it was visited.
type Hop struct {
	Edge  graphmodel.Edge
	Depth int
}

// Trace performs a bounded DFS downstream from every node named `from`,
// recording edges but not recursing past a previously visited index, and
// stopping at maxDepth (SPEC_FULL.md §4.7 Downstream trace).
func Trace(ctx context.Context, s *store.Store, from string, maxDepth int) ([]Hop, Status) {
	starts := s.NodeIndicesByName(from)
	if len(starts) == 0 {
		return nil, NotFound
	}

	var hops []Hop
	visited := make(map[int]bool)
	status := Found

	var walk func(idx, depth int) bool
	walk = func(idx, depth int) bool {
		if ctx.Err() != nil {
			status = Cancelled
			return false
		}
		if depth >= maxDepth {
			status = DepthExceeded
			return true
		}
		node := s.NodeAt(idx)
		for _, edgeIdx := range s.OutgoingEdgeIndices(node.ID) {
			if ctx.Err() != nil {
				status = Cancelled
				return false
			}
			edge := s.EdgeAt(edgeIdx)
			hops = append(hops, Hop{Edge: edge, Depth: depth})

			targets := s.NodeIndicesByName(edge.ToName)
			for _, t := range targets {
				if visited[t] {
					continue // edge recorded, but do not recurse on a re-visit
				}
				visited[t] = true
				if !walk(t, depth+1) {
					return false
				}
			}
		}
		return true
	}

	for _, start := range starts {
		visited[start] = true
		if !walk(start, 0) {
			break
		}
	}

	if status == Found && len(hops) == 0 {
		status = Exhausted
	}
	return hops, status
}

// Callers returns every edge whose to_name is `name`, an O(1) index
// lookup with duplicates preserved (SPEC_FULL.md §4.7 Reverse callers).
func Callers(s *store.Store, name string) []graphmodel.Edge {
	indices := s.IncomingEdgeIndices(name)
	out := make([]graphmodel.Edge, 0, len(indices))
	for _, i := range indices {
		out = append(out, s.EdgeAt(i))
	}
	return out
}

// Path is a resolved shortest-path result: the sequence of edges taken.
type Path struct {
	Edges []graphmodel.Edge
}

type parentEdge struct {
	fromIdx int
	edgeIdx int
}

// ShortestPath performs a level-synchronous BFS over node indices from
// every node named fromName, terminating at the first node named toName
// (or with an outgoing edge naming it), honoring maxDepth and breaking
// ties by lexicographically smallest callee-name sequence (SPEC_FULL.md
// §4.7 Shortest path).
func ShortestPath(ctx context.Context, s *store.Store, fromName, toName string, maxDepth int) (Path, Status) {
	if fromName == toName {
		return Path{}, Found
	}

	starts := s.NodeIndicesByName(fromName)
	if len(starts) == 0 {
		return Path{}, NotFound
	}

	visited := make(map[int]bool)
	parent := make(map[int]parentEdge)

	frontier := make([]int, 0, len(starts))
	for _, s0 := range starts {
		visited[s0] = true
		frontier = append(frontier, s0)
	}

	for depth := 0; depth < maxDepth; depth++ {
		if ctx.Err() != nil {
			return Path{}, Cancelled
		}
		if len(frontier) == 0 {
			break
		}

		// Sort the frontier by node id so next-hop expansion order is
		// deterministic; the actual tie-break among multiple shortest
		// paths happens below, over the full reconstructed callee-name
		// sequence of each candidate.
		sort.Slice(frontier, func(i, j int) bool {
			return s.NodeAt(frontier[i]).ID < s.NodeAt(frontier[j]).ID
		})

		type candidate struct {
			targetIdx int
			edgeIdx   int
			fromIdx   int
		}
		var matches []candidate
		var next []int
		seenNext := make(map[int]bool)

		for _, cur := range frontier {
			node := s.NodeAt(cur)
			for _, edgeIdx := range s.OutgoingEdgeIndices(node.ID) {
				if ctx.Err() != nil {
					return Path{}, Cancelled
				}
				edge := s.EdgeAt(edgeIdx)
				if edge.ToName == toName {
					matches = append(matches, candidate{edgeIdx: edgeIdx, fromIdx: cur})
				}
				for _, t := range s.NodeIndicesByName(edge.ToName) {
					if visited[t] {
						continue
					}
					if !seenNext[t] {
						seenNext[t] = true
						next = append(next, t)
						parent[t] = parentEdge{fromIdx: cur, edgeIdx: edgeIdx}
					}
				}
			}
		}

		if len(matches) > 0 {
			// All matches are at the same depth, so their callee-name
			// sequences are the same length: comparing them lexicographically
			// is equivalent to comparing by the first divergent callee name,
			// per the binding tie-break rule (SPEC_FULL.md §4.7).
			sort.Slice(matches, func(i, j int) bool {
				seqI := calleeNameSequence(s, parent, matches[i].fromIdx, matches[i].edgeIdx)
				seqJ := calleeNameSequence(s, parent, matches[j].fromIdx, matches[j].edgeIdx)
				return lessCalleeSequence(seqI, seqJ)
			})
			best := matches[0]
			edges := reconstructEdges(s, parent, best.fromIdx, best.edgeIdx)
			return Path{Edges: edges}, Found
		}

		for _, n := range next {
			visited[n] = true
		}
		frontier = next
	}

	return Path{}, NotFound
}

// calleeNameSequence walks parent back from fromIdx to a start node,
// returning the full sequence of callee names along that candidate's path,
// in forward order, ending with the final matching edge's callee name.
func calleeNameSequence(s *store.Store, parent map[int]parentEdge, fromIdx, edgeIdx int) []string {
	var reversed []string
	reversed = append(reversed, s.EdgeAt(edgeIdx).ToName)

	cur := fromIdx
	for {
		pe, ok := parent[cur]
		if !ok {
			break
		}
		reversed = append(reversed, s.EdgeAt(pe.edgeIdx).ToName)
		cur = pe.fromIdx
	}

	out := make([]string, len(reversed))
	for i, name := range reversed {
		out[len(reversed)-1-i] = name
	}
	return out
}

// lessCalleeSequence compares two callee-name sequences lexicographically:
// element by element, shorter-is-less on a common prefix.
func lessCalleeSequence(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// reconstructEdges walks parent back from lastFrom to a start node (one
// with no parent entry), then appends the final matching edge, returning
// the edge sequence in forward order.
func reconstructEdges(s *store.Store, parent map[int]parentEdge, lastFrom, lastEdge int) []graphmodel.Edge {
	var reversed []graphmodel.Edge
	reversed = append(reversed, s.EdgeAt(lastEdge))

	cur := lastFrom
	for {
		pe, ok := parent[cur]
		if !ok {
			break
		}
		reversed = append(reversed, s.EdgeAt(pe.edgeIdx))
		cur = pe.fromIdx
	}

	out := make([]graphmodel.Edge, len(reversed))
	for i, e := range reversed {
		out[len(reversed)-1-i] = e
	}
	return out
}
