package analytics

import (
	"sort"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// Cycle is one strongly-connected component of size >= 2, reported as a
// circular dependency (SPEC_FULL.md §4.8).
type Cycle struct {
	Nodes []graphmodel.Node
}

// tarjanState holds the bookkeeping for one run of Tarjan's algorithm.
type tarjanState struct {
	s        *store.Store
	nodes    []graphmodel.Node
	index    []int // -1 means unvisited
	lowlink  []int
	onStack  []bool
	stack    []int
	counter  int
	sccs     [][]int
}

// CircularDependencies finds every strongly-connected component of size
// >= 2 over the name-linked graph: an edge from each node to every node
// named by e.to_name, per SPEC_FULL.md §4.8. Authored fresh against that
// section's text — the iterative structure mirrors the index-based
// traversal style of internal/traverse, not a ported algorithm.
func CircularDependencies(s *store.Store) []Cycle {
	nodes := s.Nodes()
	st := &tarjanState{
		s:       s,
		nodes:   nodes,
		index:   make([]int, len(nodes)),
		lowlink: make([]int, len(nodes)),
		onStack: make([]bool, len(nodes)),
	}
	for i := range st.index {
		st.index[i] = -1
	}

	for i := range nodes {
		if st.index[i] == -1 {
			st.strongConnect(i)
		}
	}

	out := make([]Cycle, 0, len(st.sccs))
	for _, sccIndices := range st.sccs {
		if len(sccIndices) < 2 {
			continue
		}
		cycleNodes := make([]graphmodel.Node, 0, len(sccIndices))
		for _, idx := range sccIndices {
			cycleNodes = append(cycleNodes, nodes[idx])
		}
		sort.Slice(cycleNodes, func(i, j int) bool { return cycleNodes[i].ID < cycleNodes[j].ID })
		out = append(out, Cycle{Nodes: cycleNodes})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Nodes) == 0 || len(out[j].Nodes) == 0 {
			return false
		}
		return out[i].Nodes[0].ID < out[j].Nodes[0].ID
	})
	return out
}

// strongConnect runs one iterative DFS from v, using an explicit stack of
// (node, edge-cursor) frames to avoid recursion depth concerns on large
// graphs.
func (st *tarjanState) strongConnect(v int) {
	type frame struct {
		node        int
		edgeCursor  int
		outEdges    []int
	}

	push := func(v int) {
		st.index[v] = st.counter
		st.lowlink[v] = st.counter
		st.counter++
		st.stack = append(st.stack, v)
		st.onStack[v] = true
	}

	push(v)
	callStack := []frame{{node: v, outEdges: st.outgoingTargets(v)}}

	for len(callStack) > 0 {
		top := &callStack[len(callStack)-1]

		if top.edgeCursor < len(top.outEdges) {
			w := top.outEdges[top.edgeCursor]
			top.edgeCursor++

			if st.index[w] == -1 {
				push(w)
				callStack = append(callStack, frame{node: w, outEdges: st.outgoingTargets(w)})
				continue
			}
			if st.onStack[w] {
				if st.index[w] < st.lowlink[top.node] {
					st.lowlink[top.node] = st.index[w]
				}
			}
			continue
		}

		// Done with v's edges: pop the frame, propagate lowlink to parent.
		v := top.node
		callStack = callStack[:len(callStack)-1]

		if st.index[v] == st.lowlink[v] {
			var component []int
			for {
				w := st.stack[len(st.stack)-1]
				st.stack = st.stack[:len(st.stack)-1]
				st.onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			st.sccs = append(st.sccs, component)
		}

		if len(callStack) > 0 {
			parent := &callStack[len(callStack)-1]
			if st.lowlink[v] < st.lowlink[parent.node] {
				st.lowlink[parent.node] = st.lowlink[v]
			}
		}
	}
}

// outgoingTargets resolves node v's outgoing edges to target node indices
// by following the name-linked convention: an edge to every node in
// by_name[e.to_name].
func (st *tarjanState) outgoingTargets(v int) []int {
	node := st.nodes[v]
	var targets []int
	for _, edgeIdx := range st.s.OutgoingEdgeIndices(node.ID) {
		edge := st.s.EdgeAt(edgeIdx)
		targets = append(targets, st.s.NodeIndicesByName(edge.ToName)...)
	}
	return targets
}
