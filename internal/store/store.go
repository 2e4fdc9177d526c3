// Package store implements the Graph & Index Store (SPEC_FULL.md §4.4):
// in-memory node/edge arrays plus the five hash indices, with an
// incremental merge contract and dirty-bit index maintenance.
package store

import (
	"sort"
	"sync"

	"github.com/codenav/codenav/internal/graphmodel"
)

// Store owns the node and edge arrays and all five indices (SPEC_FULL.md
// §3 Ownership). Traversal and analytics borrow read-only views.
type Store struct {
	mu sync.RWMutex

	nodes []graphmodel.Node
	edges []graphmodel.Edge

	nodeByID map[string]int
	byName   map[string][]int
	byType   map[graphmodel.Kind][]int
	outgoing map[string][]int // keyed by from_id (node id), value is edge index
	incoming map[string][]int // keyed by to_name, value is edge index

	dirty bool

	Metadata graphmodel.Metadata
}

// New returns an empty Store.
func New() *Store {
	return NewWithCapacity(0, 0)
}

// NewWithCapacity pre-allocates the backing arrays. Capacity is a
// performance hint only (SPEC_FULL.md §4.4) and never affects correctness.
func NewWithCapacity(nodeCap, edgeCap int) *Store {
	return &Store{
		nodes:    make([]graphmodel.Node, 0, nodeCap),
		edges:    make([]graphmodel.Edge, 0, edgeCap),
		nodeByID: make(map[string]int, nodeCap),
		byName:   make(map[string][]int, nodeCap),
		byType:   make(map[graphmodel.Kind][]int, 8),
		outgoing: make(map[string][]int, nodeCap),
		incoming: make(map[string][]int, edgeCap),
		Metadata: graphmodel.NewMetadata(),
	}
}

// NodeCount returns the number of admitted nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of admitted edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Nodes returns a read-only snapshot of the node array, in index order.
func (s *Store) Nodes() []graphmodel.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graphmodel.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a read-only snapshot of the edge array, in index order.
func (s *Store) Edges() []graphmodel.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graphmodel.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NodeAt returns the node at a stable integer index (SPEC_FULL.md §4.7:
// traversal operates on indices, converting to names only at the output
// boundary).
func (s *Store) NodeAt(i int) graphmodel.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[i]
}

// EdgeAt returns the edge at a stable integer index.
func (s *Store) EdgeAt(i int) graphmodel.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges[i]
}

// GetNode returns a node by its canonical id (invariant 1, P1).
func (s *Store) GetNode(id string) (graphmodel.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.nodeByID[id]
	if !ok {
		return graphmodel.Node{}, false
	}
	return s.nodes[i], true
}

// NodeIndicesByName returns the stable indices of every node sharing a name.
func (s *Store) NodeIndicesByName(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.byName[name]...)
}

// NodeIndicesByKind returns the stable indices of every node of a kind.
func (s *Store) NodeIndicesByKind(kind graphmodel.Kind) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.byType[kind]...)
}

// OutgoingEdgeIndices returns the stable indices of every edge whose
// FromID is id (O(1) lookup, SPEC_FULL.md §4.4).
func (s *Store) OutgoingEdgeIndices(id string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.outgoing[id]...)
}

// IncomingEdgeIndices returns the stable indices of every edge whose
// ToName is name (O(1) lookup, used by reverse callers).
func (s *Store) IncomingEdgeIndices(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.incoming[name]...)
}

// ByNameKeys returns every distinct node name currently indexed, used by
// the query engine's wildcard scan (SPEC_FULL.md §4.6).
func (s *Store) ByNameKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.byName))
	for k := range s.byName {
		keys = append(keys, k)
	}
	return keys
}

// Merge appends a sub-graph's nodes and edges, incrementally updating all
// five indices. This is the single-threaded critical section described in
// SPEC_FULL.md §4.3/§5 — callers must not perform I/O while holding it.
func (s *Store) Merge(nodes []graphmodel.Node, edges []graphmodel.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(nodes, edges)
}

func (s *Store) mergeLocked(nodes []graphmodel.Node, edges []graphmodel.Edge) {
	for _, n := range nodes {
		if _, exists := s.nodeByID[n.ID]; exists {
			// Duplicate admission rule: existing entry wins (SPEC_FULL.md §4.4).
			continue
		}
		idx := len(s.nodes)
		s.nodes = append(s.nodes, n)
		s.nodeByID[n.ID] = idx
		s.byName[n.Name] = append(s.byName[n.Name], idx)
		s.byType[n.Kind] = append(s.byType[n.Kind], idx)
	}

	for _, e := range edges {
		idx := len(s.edges)
		s.edges = append(s.edges, e)
		s.outgoing[e.FromID] = append(s.outgoing[e.FromID], idx)
		s.incoming[e.ToName] = append(s.incoming[e.ToName], idx)
	}
}

// MergeDeferred appends nodes/edges to the arrays and marks the indices
// dirty, updating only node_by_id (needed for the duplicate-id check), per
// the lazy mode SPEC_FULL.md §4.4/§9 describes. EnsureIndices must be
// called before the next read.
func (s *Store) MergeDeferred(nodes []graphmodel.Node, edges []graphmodel.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if _, exists := s.nodeByID[n.ID]; exists {
			continue
		}
		s.nodes = append(s.nodes, n)
		s.nodeByID[n.ID] = len(s.nodes) - 1
	}
	s.edges = append(s.edges, edges...)
	s.dirty = true
}

// EnsureIndices rebuilds all five indices from the current arrays if the
// dirty flag is set; otherwise it is a no-op (SPEC_FULL.md
// §3 invariant 5, §4.4 dirty-bit discipline).
func (s *Store) EnsureIndices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.reindexAllLocked()
	s.dirty = false
}

// ReindexAll rebuilds every index from nodes[]/edges[] from scratch. A full
// rebuild must produce index content structurally equal to the incremental
// merge path (P4).
func (s *Store) ReindexAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reindexAllLocked()
	s.dirty = false
}

func (s *Store) reindexAllLocked() {
	s.nodeByID = make(map[string]int, len(s.nodes))
	s.byName = make(map[string][]int, len(s.nodes))
	s.byType = make(map[graphmodel.Kind][]int, 8)
	s.outgoing = make(map[string][]int, len(s.edges))
	s.incoming = make(map[string][]int, len(s.edges))

	for i, n := range s.nodes {
		if _, exists := s.nodeByID[n.ID]; exists {
			continue
		}
		s.nodeByID[n.ID] = i
		s.byName[n.Name] = append(s.byName[n.Name], i)
		s.byType[n.Kind] = append(s.byType[n.Kind], i)
	}
	for i, e := range s.edges {
		s.outgoing[e.FromID] = append(s.outgoing[e.FromID], i)
		s.incoming[e.ToName] = append(s.incoming[e.ToName], i)
	}
}

// RemoveFile drops every node whose FilePath equals path, and any edges
// whose FromID referenced one of those nodes, then rebuilds indices. Used
// by incremental reconciliation when a file disappears or is renamed
// (SPEC_FULL.md §4.3.1).
func (s *Store) RemoveFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removedIDs := make(map[string]bool)
	keptNodes := make([]graphmodel.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.FilePath == path {
			removedIDs[n.ID] = true
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	s.nodes = keptNodes

	keptEdges := make([]graphmodel.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if removedIDs[e.FromID] {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.edges = keptEdges

	delete(s.Metadata.Files, path)
	s.reindexAllLocked()
}

// ExtractSubgraph returns a new, independent Store containing only the
// given node ids and the edges between them, used by export/diff to scope
// output without mutating the loaded Store (SPEC_FULL.md glossary:
// "Induced sub-store").
func (s *Store) ExtractSubgraph(ids []string) *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var nodes []graphmodel.Node
	for _, n := range s.nodes {
		if wanted[n.ID] {
			nodes = append(nodes, n)
		}
	}

	var edges []graphmodel.Edge
	for _, e := range s.edges {
		if !wanted[e.FromID] {
			continue
		}
		for _, n := range nodes {
			if n.Name == e.ToName {
				edges = append(edges, e)
				break
			}
		}
	}

	out := New()
	out.Metadata = s.Metadata
	out.Merge(nodes, edges)
	return out
}

// Filter returns a new, independent Store containing only the nodes for
// which predicate returns true, plus every edge whose FromID survived the
// filter (SPEC_FULL.md §4.4.1, grounded on original_source's
// CodeGraph::filter — which, despite its comment claiming otherwise, also
// only filters edges by their from-endpoint, not both endpoints).
func (s *Store) Filter(predicate func(graphmodel.Node) bool) *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []graphmodel.Node
	keep := make(map[string]bool)
	for _, n := range s.nodes {
		if predicate(n) {
			nodes = append(nodes, n)
			keep[n.ID] = true
		}
	}

	var edges []graphmodel.Edge
	for _, e := range s.edges {
		if keep[e.FromID] {
			edges = append(edges, e)
		}
	}

	out := New()
	out.Metadata = s.Metadata
	out.Merge(nodes, edges)
	return out
}

// RawIndices is the exported shape of all five indices, used by the
// persistence package to serialize/deserialize the .idx sidecar without
// exposing the Store's internal locking.
type RawIndices struct {
	NodeByID map[string]int
	ByName   map[string][]int
	ByType   map[graphmodel.Kind][]int
	Outgoing map[string][]int
	Incoming map[string][]int
}

// ExportIndices snapshots the current indices for serialization.
func (s *Store) ExportIndices() RawIndices {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RawIndices{
		NodeByID: copyIntMap(s.nodeByID),
		ByName:   copyIntSliceMap(s.byName),
		ByType:   copyKindSliceMap(s.byType),
		Outgoing: copyIntSliceMap(s.outgoing),
		Incoming: copyIntSliceMap(s.incoming),
	}
}

// ImportIndices installs previously-exported indices verbatim, skipping a
// rebuild. Callers are responsible for having validated the sidecar
// against the current nodes[]/edges[] (graph_hash, counts) before calling
// this (SPEC_FULL.md §4.5 sidecar validation contract).
func (s *Store) ImportIndices(idx RawIndices) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeByID = copyIntMap(idx.NodeByID)
	s.byName = copyIntSliceMap(idx.ByName)
	s.byType = copyKindSliceMap(idx.ByType)
	s.outgoing = copyIntSliceMap(idx.Outgoing)
	s.incoming = copyIntSliceMap(idx.Incoming)
	s.dirty = false
}

// LoadRaw installs nodes/edges directly without running Merge's admission
// or indexing logic, for use immediately before ImportIndices.
func (s *Store) LoadRaw(nodes []graphmodel.Node, edges []graphmodel.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nodes
	s.edges = edges
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntSliceMap(m map[string][]int) map[string][]int {
	out := make(map[string][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func copyKindSliceMap(m map[graphmodel.Kind][]int) map[graphmodel.Kind][]int {
	out := make(map[graphmodel.Kind][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// SortedByNameLists returns a copy of by_name with every index list sorted,
// used by P4's structural-equality comparison and by deterministic tests.
func (s *Store) SortedByNameLists() map[string][]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]int, len(s.byName))
	for k, v := range s.byName {
		cp := append([]int(nil), v...)
		sort.Ints(cp)
		out[k] = cp
	}
	return out
}
