// Package analytics implements the Analytics component (SPEC_FULL.md
// §4.8): fan-in/fan-out complexity, hotspots, pairwise coupling, and
// circular-dependency detection via Tarjan's strongly-connected-
// components algorithm.
package analytics

import (
	"fmt"
	"sort"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// Complexity is one node's fan-in/fan-out score.
type Complexity struct {
	Node    graphmodel.Node
	FanIn   int
	FanOut  int
	Score   int
}

// ComplexityReport computes fan-in/fan-out complexity for every node:
// |outgoing[id]| + |incoming[name]| + 1, a linear scan (SPEC_FULL.md §4.8).
func ComplexityReport(s *store.Store) []Complexity {
	nodes := s.Nodes()
	out := make([]Complexity, 0, len(nodes))
	for _, n := range nodes {
		fanOut := len(s.OutgoingEdgeIndices(n.ID))
		fanIn := len(s.IncomingEdgeIndices(n.Name))
		out = append(out, Complexity{
			Node:   n,
			FanIn:  fanIn,
			FanOut: fanOut,
			Score:  fanIn + fanOut + 1,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Node.ID < out[j].Node.ID
	})
	return out
}

// Hotspot is a callee name ranked by how often it is called.
type Hotspot struct {
	Name  string
	Count int
}

// Hotspots aggregates counts of to_name across every edge and returns the
// top-N (SPEC_FULL.md §4.8).
func Hotspots(s *store.Store, topN int) []Hotspot {
	counts := make(map[string]int)
	for _, e := range s.Edges() {
		counts[e.ToName]++
	}

	out := make([]Hotspot, 0, len(counts))
	for name, count := range counts {
		out = append(out, Hotspot{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// ErrTooManyNodes is the QueryError raised when Coupling is asked to run
// over a node count above the safety threshold without --force
// (SPEC_FULL.md §9 open-question decision 2).
type ErrTooManyNodes struct {
	NodeCount int
	Threshold int
}

func (e *ErrTooManyNodes) Error() string {
	return fmt.Sprintf("coupling analysis over %d nodes exceeds the safety threshold of %d; pass --threshold or --force", e.NodeCount, e.Threshold)
}

// CouplingThreshold is the node-count ceiling above which Coupling
// refuses to run without an explicit override (SPEC_FULL.md §9).
const CouplingThreshold = 2000

// CouplingPair is the coupling score between two nodes: the size of the
// intersection of their outgoing callee-name sets.
type CouplingPair struct {
	A, B  graphmodel.Node
	Score int
}

// Coupling computes pairwise coupling for all node pairs, an O(N^2)
// operation. force bypasses the 2,000-node safety gate.
func Coupling(s *store.Store, minConnections int, force bool) ([]CouplingPair, error) {
	nodes := s.Nodes()
	if !force && len(nodes) > CouplingThreshold {
		return nil, &ErrTooManyNodes{NodeCount: len(nodes), Threshold: CouplingThreshold}
	}

	calleeSets := make([]map[string]bool, len(nodes))
	for i, n := range nodes {
		set := make(map[string]bool)
		for _, edgeIdx := range s.OutgoingEdgeIndices(n.ID) {
			set[s.EdgeAt(edgeIdx).ToName] = true
		}
		calleeSets[i] = set
	}

	var out []CouplingPair
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			score := intersectionSize(calleeSets[i], calleeSets[j])
			if score >= minConnections && score > 0 {
				out = append(out, CouplingPair{A: nodes[i], B: nodes[j], Score: score})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].A.ID != out[j].A.ID {
			return out[i].A.ID < out[j].A.ID
		}
		return out[i].B.ID < out[j].B.ID
	})
	return out, nil
}

func intersectionSize(a, b map[string]bool) int {
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	count := 0
	for k := range smaller {
		if larger[k] {
			count++
		}
	}
	return count
}
