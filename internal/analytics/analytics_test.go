package analytics

import (
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

func smallGraph() *store.Store {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 2), Name: "b", FilePath: "a.go", Line: 2}
	c := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "c", 3), Name: "c", FilePath: "a.go", Line: 3}
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "c", Kind: graphmodel.EdgeDirect},
		{FromID: b.ID, ToName: "c", Kind: graphmodel.EdgeDirect},
	})
	return s
}

func TestComplexityReportRanksByScore(t *testing.T) {
	report := ComplexityReport(smallGraph())
	if len(report) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report))
	}
	if report[0].Node.Name != "c" {
		t.Fatalf("expected c (fan-in 2) to rank highest, got %+v", report[0])
	}
}

func TestHotspotsTopN(t *testing.T) {
	hotspots := Hotspots(smallGraph(), 1)
	if len(hotspots) != 1 || hotspots[0].Name != "c" || hotspots[0].Count != 2 {
		t.Fatalf("unexpected hotspots: %#v", hotspots)
	}
}

func TestCouplingFindsSharedCallee(t *testing.T) {
	pairs, err := Coupling(smallGraph(), 1, false)
	if err != nil {
		t.Fatalf("Coupling: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Score != 1 {
		t.Fatalf("expected one coupled pair sharing callee c, got %#v", pairs)
	}
}

func TestCouplingRefusesAboveThresholdWithoutForce(t *testing.T) {
	s := store.New()
	nodes := make([]graphmodel.Node, CouplingThreshold+1)
	for i := range nodes {
		nodes[i] = graphmodel.Node{
			ID:       graphmodel.MakeNodeID("a.go", "n", i),
			Name:     "n",
			FilePath: "a.go",
			Line:     i,
		}
	}
	s.Merge(nodes, nil)

	_, err := Coupling(s, 0, false)
	if err == nil {
		t.Fatalf("expected ErrTooManyNodes above threshold")
	}

	_, err = Coupling(s, 0, true)
	if err != nil {
		t.Fatalf("expected force=true to bypass the gate, got %v", err)
	}
}

func TestCircularDependenciesFindsTwoNodeCycle(t *testing.T) {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 2), Name: "b", FilePath: "a.go", Line: 2}
	s.Merge([]graphmodel.Node{a, b}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "b", Kind: graphmodel.EdgeDirect},
		{FromID: b.ID, ToName: "a", Kind: graphmodel.EdgeDirect},
	})

	cycles := CircularDependencies(s)
	if len(cycles) != 1 || len(cycles[0].Nodes) != 2 {
		t.Fatalf("expected one 2-node cycle, got %#v", cycles)
	}
}

func TestCircularDependenciesIgnoresAcyclicGraph(t *testing.T) {
	cycles := CircularDependencies(smallGraph())
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles in acyclic graph, got %#v", cycles)
	}
}

func TestCircularDependenciesFindsThreeNodeCycle(t *testing.T) {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 2), Name: "b", FilePath: "a.go", Line: 2}
	c := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "c", 3), Name: "c", FilePath: "a.go", Line: 3}
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "b", Kind: graphmodel.EdgeDirect},
		{FromID: b.ID, ToName: "c", Kind: graphmodel.EdgeDirect},
		{FromID: c.ID, ToName: "a", Kind: graphmodel.EdgeDirect},
	})

	cycles := CircularDependencies(s)
	if len(cycles) != 1 || len(cycles[0].Nodes) != 3 {
		t.Fatalf("expected one 3-node cycle, got %#v", cycles)
	}
}
