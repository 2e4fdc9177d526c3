package store

import (
	"reflect"
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
)

func mkNode(path, name string, line int, kind graphmodel.Kind) graphmodel.Node {
	return graphmodel.Node{
		ID:       graphmodel.MakeNodeID(path, name, line),
		Name:     name,
		Kind:     kind,
		FilePath: path,
		Line:     line,
	}
}

func TestMergeBuildsAllFiveIndices(t *testing.T) {
	s := New()
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	b := mkNode("a.go", "bar", 5, graphmodel.KindFunction)
	s.Merge([]graphmodel.Node{a, b}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "bar", Kind: graphmodel.EdgeDirect, CallSiteLine: 2},
	})

	if s.NodeCount() != 2 || s.EdgeCount() != 1 {
		t.Fatalf("unexpected counts: nodes=%d edges=%d", s.NodeCount(), s.EdgeCount())
	}

	got, ok := s.GetNode(a.ID)
	if !ok || got.Name != "foo" {
		t.Fatalf("node_by_id lookup failed: %+v ok=%v", got, ok)
	}

	byName := s.NodeIndicesByName("bar")
	if len(byName) != 1 {
		t.Fatalf("expected 1 node named bar, got %d", len(byName))
	}

	byKind := s.NodeIndicesByKind(graphmodel.KindFunction)
	if len(byKind) != 2 {
		t.Fatalf("expected 2 function-kind nodes, got %d", len(byKind))
	}

	out := s.OutgoingEdgeIndices(a.ID)
	if len(out) != 1 {
		t.Fatalf("expected 1 outgoing edge from foo, got %d", len(out))
	}

	in := s.IncomingEdgeIndices("bar")
	if len(in) != 1 {
		t.Fatalf("expected 1 incoming edge to bar, got %d", len(in))
	}
}

func TestMergeDuplicateIDExistingWins(t *testing.T) {
	s := New()
	first := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	first.Doc = "first"
	second := first
	second.Doc = "second"

	s.Merge([]graphmodel.Node{first}, nil)
	s.Merge([]graphmodel.Node{second}, nil)

	if s.NodeCount() != 1 {
		t.Fatalf("expected duplicate id to be rejected, got %d nodes", s.NodeCount())
	}
	got, _ := s.GetNode(first.ID)
	if got.Doc != "first" {
		t.Fatalf("expected existing entry to win, got doc=%q", got.Doc)
	}
}

func TestReindexAllMatchesIncrementalMerge(t *testing.T) {
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	b := mkNode("a.go", "bar", 5, graphmodel.KindFunction)
	edges := []graphmodel.Edge{{FromID: a.ID, ToName: "bar", Kind: graphmodel.EdgeDirect, CallSiteLine: 2}}

	incremental := New()
	incremental.Merge([]graphmodel.Node{a}, nil)
	incremental.Merge([]graphmodel.Node{b}, edges)

	rebuilt := New()
	rebuilt.MergeDeferred([]graphmodel.Node{a, b}, edges)
	rebuilt.EnsureIndices()

	if !reflect.DeepEqual(incremental.SortedByNameLists(), rebuilt.SortedByNameLists()) {
		t.Fatalf("incremental and rebuilt by_name indices differ:\n%#v\nvs\n%#v",
			incremental.SortedByNameLists(), rebuilt.SortedByNameLists())
	}
}

func TestEnsureIndicesNoOpWhenClean(t *testing.T) {
	s := New()
	s.Merge([]graphmodel.Node{mkNode("a.go", "foo", 1, graphmodel.KindFunction)}, nil)
	before := s.SortedByNameLists()
	s.EnsureIndices()
	after := s.SortedByNameLists()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("EnsureIndices mutated a clean store")
	}
}

func TestExtractSubgraphScopesNodesAndEdges(t *testing.T) {
	s := New()
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	b := mkNode("a.go", "bar", 5, graphmodel.KindFunction)
	c := mkNode("a.go", "baz", 9, graphmodel.KindFunction)
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "bar", Kind: graphmodel.EdgeDirect},
		{FromID: b.ID, ToName: "baz", Kind: graphmodel.EdgeDirect},
	})

	sub := s.ExtractSubgraph([]string{a.ID, b.ID})
	if sub.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes in subgraph, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Fatalf("expected only the a->bar edge (baz excluded), got %d", sub.EdgeCount())
	}
}

func TestFilterKeepsOnlyMatchingNodesAndTheirOutgoingEdges(t *testing.T) {
	s := New()
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	b := mkNode("b.go", "bar", 1, graphmodel.KindMethod)
	c := mkNode("a.go", "baz", 9, graphmodel.KindFunction)
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "bar", Kind: graphmodel.EdgeDirect},
		{FromID: b.ID, ToName: "baz", Kind: graphmodel.EdgeDirect},
	})

	sub := s.Filter(func(n graphmodel.Node) bool {
		return n.Kind == graphmodel.KindFunction
	})

	if sub.NodeCount() != 2 {
		t.Fatalf("expected 2 function-kind nodes, got %d", sub.NodeCount())
	}
	// a->bar survives because a (the from-endpoint) matched, even though bar
	// itself (a method) did not — Filter only filters edges by from-endpoint,
	// not by to-endpoint, matching the original's actual (not documented)
	// behavior.
	if sub.EdgeCount() != 1 {
		t.Fatalf("expected the a->bar edge to survive on its from-endpoint alone, got %d", sub.EdgeCount())
	}
}

func TestFilterReturnsIndependentStore(t *testing.T) {
	s := New()
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	s.Merge([]graphmodel.Node{a}, nil)

	sub := s.Filter(func(graphmodel.Node) bool { return true })
	sub.Merge([]graphmodel.Node{mkNode("b.go", "bar", 1, graphmodel.KindFunction)}, nil)

	if s.NodeCount() != 1 {
		t.Fatalf("expected original store to be unaffected by mutating the filtered copy, got %d nodes", s.NodeCount())
	}
}

func TestRemoveFileDropsNodesAndOutgoingEdges(t *testing.T) {
	s := New()
	a := mkNode("a.go", "foo", 1, graphmodel.KindFunction)
	b := mkNode("b.go", "bar", 1, graphmodel.KindFunction)
	s.Merge([]graphmodel.Node{a, b}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "bar", Kind: graphmodel.EdgeDirect, CallSiteLine: 2},
	})

	s.RemoveFile("a.go")

	if s.NodeCount() != 1 {
		t.Fatalf("expected 1 node remaining, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 0 {
		t.Fatalf("expected edges from removed file to be dropped, got %d", s.EdgeCount())
	}
	if _, ok := s.GetNode(a.ID); ok {
		t.Fatalf("expected removed node to be gone from node_by_id")
	}
}
