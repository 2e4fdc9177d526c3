package traverse

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

func chainStore() *store.Store {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 5), Name: "b", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 5}
	c := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "c", 10), Name: "c", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 10}
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "b", Kind: graphmodel.EdgeDirect, CallSiteLine: 2},
		{FromID: b.ID, ToName: "c", Kind: graphmodel.EdgeDirect, CallSiteLine: 6},
	})
	return s
}

func cyclicStore() *store.Store {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 5), Name: "b", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 5}
	s.Merge([]graphmodel.Node{a, b}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "b", Kind: graphmodel.EdgeDirect, CallSiteLine: 2},
		{FromID: b.ID, ToName: "a", Kind: graphmodel.EdgeDirect, CallSiteLine: 6},
	})
	return s
}

func TestTraceTwoFileChain(t *testing.T) {
	hops, status := Trace(context.Background(), chainStore(), "a", 10)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(hops) != 2 {
		t.Fatalf("expected 2 hops (a->b, b->c), got %#v", hops)
	}
}

func TestTraceDepthExceeded(t *testing.T) {
	_, status := Trace(context.Background(), chainStore(), "a", 1)
	if status != DepthExceeded {
		t.Fatalf("expected DepthExceeded at depth 1, got %v", status)
	}
}

func TestTraceUnknownNameNotFound(t *testing.T) {
	_, status := Trace(context.Background(), chainStore(), "nope", 10)
	if status != NotFound {
		t.Fatalf("expected NotFound, got %v", status)
	}
}

func TestCallersReturnsIncomingEdges(t *testing.T) {
	edges := Callers(chainStore(), "c")
	if len(edges) != 1 || edges[0].ToName != "c" {
		t.Fatalf("expected single edge into c, got %#v", edges)
	}
}

func TestShortestPathChain(t *testing.T) {
	path, status := ShortestPath(context.Background(), chainStore(), "a", "c", 10)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(path.Edges) != 2 || path.Edges[0].ToName != "b" || path.Edges[1].ToName != "c" {
		t.Fatalf("unexpected path: %#v", path.Edges)
	}
}

func TestShortestPathTrivialSameName(t *testing.T) {
	path, status := ShortestPath(context.Background(), chainStore(), "a", "a", 10)
	if status != Found || len(path.Edges) != 0 {
		t.Fatalf("expected trivial zero-edge path, got status=%v edges=%#v", status, path.Edges)
	}
}

func TestShortestPathUnreachableWithinMaxDepth(t *testing.T) {
	_, status := ShortestPath(context.Background(), chainStore(), "a", "c", 1)
	if status != NotFound {
		t.Fatalf("expected NotFound within depth 1, got %v", status)
	}
}

func TestShortestPathHandlesCycleWithoutHanging(t *testing.T) {
	path, status := ShortestPath(context.Background(), cyclicStore(), "a", "b", 10)
	if status != Found || len(path.Edges) != 1 {
		t.Fatalf("expected single-edge path in cycle, got status=%v edges=%#v", status, path.Edges)
	}
}

// TestShortestPathTieBreaksByCalleeNameNotNodeID reproduces a case where
// the winning intermediate node's id sorts after the losing one's, so a
// tie-break that (incorrectly) keyed off node id or off the final,
// always-equal hop name would pick the wrong branch. "a" calls "zeta" then
// "alpha"; both "zeta" and "alpha" call "target". The lexicographically
// smaller callee-name sequence is ["alpha", "target"], even though
// zeta's node id ("0_zeta.go:zeta:1") sorts before alpha's
// ("1_alpha.go:alpha:1").
func TestShortestPathTieBreaksByCalleeNameNotNodeID(t *testing.T) {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	zeta := graphmodel.Node{ID: graphmodel.MakeNodeID("0_zeta.go", "zeta", 1), Name: "zeta", FilePath: "0_zeta.go", Line: 1}
	alpha := graphmodel.Node{ID: graphmodel.MakeNodeID("1_alpha.go", "alpha", 1), Name: "alpha", FilePath: "1_alpha.go", Line: 1}
	target := graphmodel.Node{ID: graphmodel.MakeNodeID("target.go", "target", 1), Name: "target", FilePath: "target.go", Line: 1}

	s.Merge([]graphmodel.Node{a, zeta, alpha, target}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "zeta", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
		{FromID: a.ID, ToName: "alpha", Kind: graphmodel.EdgeDirect, CallSiteLine: 2},
		{FromID: zeta.ID, ToName: "target", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
		{FromID: alpha.ID, ToName: "target", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
	})

	path, status := ShortestPath(context.Background(), s, "a", "target", 10)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(path.Edges) != 2 || path.Edges[0].ToName != "alpha" || path.Edges[1].ToName != "target" {
		t.Fatalf("expected path through alpha (lexicographically smaller), got %#v", path.Edges)
	}
}

func TestKPathsFindsMultiplePaths(t *testing.T) {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	b := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "b", 2), Name: "b", FilePath: "a.go", Line: 2}
	c := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "c", 3), Name: "c", FilePath: "a.go", Line: 3}
	s.Merge([]graphmodel.Node{a, b, c}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "c", Kind: graphmodel.EdgeDirect, CallSiteLine: 1}, // direct a->c
		{FromID: a.ID, ToName: "b", Kind: graphmodel.EdgeDirect, CallSiteLine: 2}, // a->b->c
		{FromID: b.ID, ToName: "c", Kind: graphmodel.EdgeDirect, CallSiteLine: 3},
	})

	paths, status := KPaths(context.Background(), s, "a", "c", 5, 0)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 distinct paths from a to c, got %d: %#v", len(paths), paths)
	}
}

func TestKPathsRespectsLimit(t *testing.T) {
	paths, status := KPaths(context.Background(), cyclicStore(), "a", "b", 10, 1)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 path due to limit, got %d", len(paths))
	}
}

func TestKPathsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, status := KPaths(ctx, chainStore(), "a", "c", 10, 0)
	if status != Cancelled {
		t.Fatalf("expected Cancelled, got %v", status)
	}
}

// TestKPathsStopsAtFirstReachOfTarget builds a->target directly, plus
// target->mid->target looping back through the match itself. A buggy walk
// that recurses past a completed match would find a second, longer path
// (a->target->mid->target); the correct behavior records only the one path
// that reaches target and never explores past it.
func TestKPathsStopsAtFirstReachOfTarget(t *testing.T) {
	s := store.New()
	a := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "a", 1), Name: "a", FilePath: "a.go", Line: 1}
	target := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "target", 2), Name: "target", FilePath: "a.go", Line: 2}
	mid := graphmodel.Node{ID: graphmodel.MakeNodeID("a.go", "mid", 3), Name: "mid", FilePath: "a.go", Line: 3}
	s.Merge([]graphmodel.Node{a, target, mid}, []graphmodel.Edge{
		{FromID: a.ID, ToName: "target", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
		{FromID: target.ID, ToName: "mid", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
		{FromID: mid.ID, ToName: "target", Kind: graphmodel.EdgeDirect, CallSiteLine: 1},
	})

	paths, status := KPaths(context.Background(), s, "a", "target", 10, 0)
	if status != Found {
		t.Fatalf("expected Found, got %v", status)
	}
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 path stopping at the first reach of target, got %d: %#v", len(paths), paths)
	}
	if len(paths[0].Edges) != 1 || paths[0].Edges[0].ToName != "target" {
		t.Fatalf("expected the single direct a->target edge, got %#v", paths[0].Edges)
	}
}

// randomGraph builds n nodes named "n0".."n{n-1}" and wires a random subset
// of directed edges among them (i -> j only when j > i when acyclic is
// true, producing a DAG; otherwise edges may point either direction,
// allowing cycles).
func randomGraph(rng *rand.Rand, n int, edgeChance float64, acyclic bool) *store.Store {
	s := store.New()
	nodes := make([]graphmodel.Node, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("n%d", i)
		nodes[i] = graphmodel.Node{ID: graphmodel.MakeNodeID("g.go", name, i+1), Name: name, FilePath: "g.go", Line: i + 1}
	}
	s.Merge(nodes, nil)

	var edges []graphmodel.Edge
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if acyclic && j <= i {
				continue
			}
			if rng.Float64() < edgeChance {
				edges = append(edges, graphmodel.Edge{FromID: nodes[i].ID, ToName: nodes[j].Name, Kind: graphmodel.EdgeDirect})
			}
		}
	}
	s.Merge(nil, edges)
	return s
}

// TestShortestPathNeverLongerThanAnyKPath is property P8: for random DAGs
// and random connected graphs with cycles, BFS's shortest-path length must
// be less than or equal to the length of every path KPaths finds between
// the same two nodes.
func TestShortestPathNeverLongerThanAnyKPath(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	cases := []struct {
		name    string
		acyclic bool
	}{
		{"dag", true},
		{"cyclic", false},
	}

	for _, c := range cases {
		for trial := 0; trial < 20; trial++ {
			s := randomGraph(rng, 8, 0.35, c.acyclic)
			from := fmt.Sprintf("n%d", rng.Intn(8))
			to := fmt.Sprintf("n%d", rng.Intn(8))

			path, pathStatus := ShortestPath(context.Background(), s, from, to, 10)
			paths, kStatus := KPaths(context.Background(), s, from, to, 10, 0)

			if pathStatus != Found || kStatus != Found {
				continue // both must agree a path exists to compare lengths
			}
			for _, kp := range paths {
				if len(path.Edges) > len(kp.Edges) {
					t.Fatalf("%s trial %d: ShortestPath(%s,%s) length %d exceeds a KPaths result of length %d",
						c.name, trial, from, to, len(path.Edges), len(kp.Edges))
				}
			}
		}
	}
}

// TestShortestPathOutputIsByteStableAcrossRuns is property P9: repeated
// ShortestPath calls against the same store must marshal to identical JSON.
func TestShortestPathOutputIsByteStableAcrossRuns(t *testing.T) {
	s := randomGraph(rand.New(rand.NewSource(7)), 10, 0.4, false)

	first, status1 := ShortestPath(context.Background(), s, "n0", "n5", 10)
	second, status2 := ShortestPath(context.Background(), s, "n0", "n5", 10)

	if status1 != status2 {
		t.Fatalf("status differs across runs: %v vs %v", status1, status2)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("failed to marshal first result: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("failed to marshal second result: %v", err)
	}
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("ShortestPath output not byte-stable across runs:\n%s\nvs\n%s", firstJSON, secondJSON)
	}
}
