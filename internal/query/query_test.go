package query

import (
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

func buildStore() *store.Store {
	s := store.New()
	nodes := []graphmodel.Node{
		{ID: graphmodel.MakeNodeID("a.go", "Foo", 1), Name: "Foo", Kind: graphmodel.KindFunction, FilePath: "a.go", Package: "main"},
		{ID: graphmodel.MakeNodeID("a.go", "FooBar", 3), Name: "FooBar", Kind: graphmodel.KindFunction, FilePath: "a.go", Package: "main"},
		{ID: graphmodel.MakeNodeID("b.go", "Bar", 1), Name: "Bar", Kind: graphmodel.KindMethod, FilePath: "b.go", Package: "other"},
	}
	s.Merge(nodes, nil)
	return s
}

func TestRunNameExact(t *testing.T) {
	res, err := Run(buildStore(), Filter{Name: "Foo"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Name != "Foo" {
		t.Fatalf("expected exactly Foo, got %#v", res.Nodes)
	}
}

func TestRunNameWildcard(t *testing.T) {
	res, err := Run(buildStore(), Filter{Name: "Foo*"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected Foo and FooBar, got %#v", res.Nodes)
	}
}

func TestRunKindAndFileGlobIntersection(t *testing.T) {
	res, err := Run(buildStore(), Filter{Kind: "function", FileGlob: "a.*"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 function nodes in a.go, got %#v", res.Nodes)
	}
}

func TestRunPackageFilterExcludesOthers(t *testing.T) {
	res, err := Run(buildStore(), Filter{Package: "other"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Name != "Bar" {
		t.Fatalf("expected only Bar, got %#v", res.Nodes)
	}
}

func TestRunCountOnly(t *testing.T) {
	res, err := Run(buildStore(), Filter{Kind: "function", CountOnly: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Count != 2 || res.Nodes != nil {
		t.Fatalf("expected count 2 with no node payload, got %+v", res)
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	_, err := Run(buildStore(), Filter{Kind: "not-a-kind"})
	if err == nil {
		t.Fatalf("expected ErrInvalidFilter for unknown kind")
	}
}

func TestRunRejectsMalformedGlob(t *testing.T) {
	_, err := Run(buildStore(), Filter{FileGlob: "["})
	if err == nil {
		t.Fatalf("expected ErrInvalidFilter for malformed glob")
	}
}
