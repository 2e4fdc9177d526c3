package query

import (
	"fmt"
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

func buildLargeStore(n int) *store.Store {
	s := store.NewWithCapacity(n, 0)
	nodes := make([]graphmodel.Node, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("pkg%d/file.go", i%50)
		name := fmt.Sprintf("Func%d", i)
		nodes = append(nodes, graphmodel.Node{
			ID:       graphmodel.MakeNodeID(path, name, i),
			Name:     name,
			Kind:     graphmodel.Kind(i % 6),
			FilePath: path,
			Package:  fmt.Sprintf("pkg%d", i%50),
		})
	}
	s.Merge(nodes, nil)
	return s
}

// BenchmarkNameExactThenKind and BenchmarkNameWildcardScan measure a query
// led by the most selective filter (name-exact) against one that needs the
// least selective (name-wildcard), so the two costs under the composition
// rule in SPEC_FULL.md §4.6 can be compared; neither asserts a ratio.
func BenchmarkNameExactThenKind(b *testing.B) {
	s := buildLargeStore(20000)
	for i := 0; i < b.N; i++ {
		if _, err := Run(s, Filter{Name: "Func100", Kind: "function"}); err != nil {
			b.Fatalf("Run: %v", err)
		}
	}
}

func BenchmarkNameWildcardScan(b *testing.B) {
	s := buildLargeStore(20000)
	for i := 0; i < b.N; i++ {
		if _, err := Run(s, Filter{Name: "Func1*"}); err != nil {
			b.Fatalf("Run: %v", err)
		}
	}
}
