package traverse

import (
	"context"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// KPaths performs a DFS with a visited set and an explicit path stack from
// every node named fromName, recording a Path whenever an edge reaches a
// node named toName and then backtracking without recursing past that
// match, continuing with the next sibling edge instead (the visited set is
// popped on backtrack so the same node can appear on a later path), and
// early-terminating once limit paths have been found. limit <= 0 means
// explore exhaustively up to maxDepth (SPEC_FULL.md §4.7 K-paths).
func KPaths(ctx context.Context, s *store.Store, fromName, toName string, maxDepth, limit int) ([]Path, Status) {
	starts := s.NodeIndicesByName(fromName)
	if len(starts) == 0 {
		return nil, NotFound
	}

	var paths []Path
	visited := make(map[int]bool)
	var stack []graphmodel.Edge
	status := Exhausted

	exceededDepth := false

	var walk func(idx, depth int) bool // returns false to stop exploring entirely
	walk = func(idx, depth int) bool {
		if ctx.Err() != nil {
			status = Cancelled
			return false
		}
		if limit > 0 && len(paths) >= limit {
			return false
		}
		if depth >= maxDepth {
			exceededDepth = true
			return true
		}

		node := s.NodeAt(idx)
		for _, edgeIdx := range s.OutgoingEdgeIndices(node.ID) {
			if ctx.Err() != nil {
				status = Cancelled
				return false
			}
			if limit > 0 && len(paths) >= limit {
				return false
			}
			edge := s.EdgeAt(edgeIdx)
			stack = append(stack, edge)

			if edge.ToName == toName {
				paths = append(paths, Path{Edges: append([]graphmodel.Edge(nil), stack...)})
				stop := limit > 0 && len(paths) >= limit
				stack = stack[:len(stack)-1]
				if stop {
					return false
				}
				// Don't recurse into the just-matched target: a completed
				// path stops here, exactly like the original algorithm.
				continue
			}

			for _, t := range s.NodeIndicesByName(edge.ToName) {
				if visited[t] {
					continue
				}
				visited[t] = true
				if !walk(t, depth+1) {
					stack = stack[:len(stack)-1]
					return false
				}
				visited[t] = false // pop on backtrack
			}

			stack = stack[:len(stack)-1]
		}
		return true
	}

	for _, start := range starts {
		visited[start] = true
		if !walk(start, 0) {
			break
		}
		visited[start] = false
	}

	if status == Cancelled {
		return paths, Cancelled
	}
	if len(paths) == 0 {
		if exceededDepth {
			return nil, DepthExceeded
		}
		return nil, NotFound
	}
	if limit > 0 && len(paths) >= limit {
		return paths, Found
	}
	return paths, Found
}
