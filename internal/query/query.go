// Package query implements the Query Engine (SPEC_FULL.md §4.6): a
// selectivity-ordered filter composition over a loaded Store.
package query

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

// ErrInvalidFilter is the QueryError sentinel for malformed filter input
// (unknown kind string, malformed glob), per SPEC_FULL.md §7.
type ErrInvalidFilter struct {
	Reason string
}

func (e *ErrInvalidFilter) Error() string {
	return fmt.Sprintf("invalid filter: %s", e.Reason)
}

// Filter is the query record accepted by Run: name, kind, file_glob,
// package, and count_only, all optional.
type Filter struct {
	Name      string
	Kind      string // parsed via graphmodel.ParseKind when non-empty
	FileGlob  string
	Package   string
	CountOnly bool
}

// Result is the output of Run: matching node indices (resolved to
// full Node values) or, for CountOnly, just a count.
type Result struct {
	Nodes []graphmodel.Node
	Count int
}

func isWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Run evaluates a Filter against s, intersecting sub-results in ascending
// order of estimated selectivity: name-exact < kind < file-glob <
// name-wildcard (SPEC_FULL.md §4.6 composition rule, binding).
func Run(s *store.Store, f Filter) (Result, error) {
	if f.Kind != "" {
		if _, err := graphmodel.ParseKind(f.Kind); err != nil {
			return Result{}, &ErrInvalidFilter{Reason: err.Error()}
		}
	}
	if f.FileGlob != "" {
		if _, err := filepath.Match(f.FileGlob, "sanity-check"); err != nil {
			return Result{}, &ErrInvalidFilter{Reason: fmt.Sprintf("malformed file glob %q: %v", f.FileGlob, err)}
		}
	}

	var candidates []int
	haveCandidates := false

	narrow := func(next []int) {
		if !haveCandidates {
			candidates = next
			haveCandidates = true
			return
		}
		candidates = sortedIntersect(candidates, next)
	}

	// 1. name-exact (no wildcard): O(1) set lookup.
	if f.Name != "" && !isWildcard(f.Name) {
		narrow(sortInts(s.NodeIndicesByName(f.Name)))
	}

	// 2. kind
	if f.Kind != "" {
		kind, _ := graphmodel.ParseKind(f.Kind)
		narrow(sortInts(s.NodeIndicesByKind(kind)))
	}

	// 3. file glob / package (linear scan, filtered from the smallest
	// prior candidate set rather than the full node array when possible).
	if f.FileGlob != "" || f.Package != "" {
		if haveCandidates {
			var filtered []int
			for _, i := range candidates {
				n := s.NodeAt(i)
				if matchesFileAndPackage(n, f.FileGlob, f.Package) {
					filtered = append(filtered, i)
				}
			}
			candidates = filtered
		} else {
			var filtered []int
			for i, n := range s.Nodes() {
				if matchesFileAndPackage(n, f.FileGlob, f.Package) {
					filtered = append(filtered, i)
				}
			}
			narrow(filtered)
		}
	}

	// 4. name-wildcard: scan by_name keys last, since it is the least
	// selective operation (a full key scan with glob matching).
	if f.Name != "" && isWildcard(f.Name) {
		var matchingIndices []int
		for _, name := range s.ByNameKeys() {
			ok, err := filepath.Match(f.Name, name)
			if err != nil {
				return Result{}, &ErrInvalidFilter{Reason: fmt.Sprintf("malformed name pattern %q: %v", f.Name, err)}
			}
			if ok {
				matchingIndices = append(matchingIndices, s.NodeIndicesByName(name)...)
			}
		}
		narrow(sortInts(matchingIndices))
	}

	if !haveCandidates {
		// No filter fields were set: the full node set matches.
		all := s.Nodes()
		candidates = make([]int, len(all))
		for i := range all {
			candidates[i] = i
		}
	}

	if f.CountOnly {
		return Result{Count: len(candidates)}, nil
	}

	nodes := make([]graphmodel.Node, 0, len(candidates))
	for _, i := range candidates {
		nodes = append(nodes, s.NodeAt(i))
	}
	return Result{Nodes: nodes, Count: len(nodes)}, nil
}

func matchesFileAndPackage(n graphmodel.Node, fileGlob, pkg string) bool {
	if fileGlob != "" {
		if ok, _ := filepath.Match(fileGlob, n.FilePath); !ok {
			return false
		}
	}
	if pkg != "" && n.Package != pkg {
		return false
	}
	return true
}

func sortInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}

// sortedIntersect intersects two already-sorted, duplicate-free index
// slices by a linear sorted merge, per SPEC_FULL.md §4.6's binding
// composition rule.
func sortedIntersect(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
