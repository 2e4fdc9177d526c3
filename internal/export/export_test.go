package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

func sampleStore() *store.Store {
	s := store.New()
	s.Merge([]graphmodel.Node{
		{ID: "a.go:Foo:1", Name: "Foo", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 1},
		{ID: "a.go:Bar:5", Name: "Bar", Kind: graphmodel.KindFunction, FilePath: "a.go", Line: 5},
	}, []graphmodel.Edge{
		{FromID: "a.go:Foo:1", ToName: "Bar", CallSiteLine: 2},
	})
	return s
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	for _, name := range []string{"graphml", "dot", "csv"} {
		if _, err := ParseFormat(name); err != nil {
			t.Fatalf("expected %q to parse, got %v", name, err)
		}
	}
}

func TestWriteGraphMLContainsNodesAndEdge(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStore(), FormatGraphML); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `id="a.go:Foo:1"`) {
		t.Fatalf("expected Foo node id in output, got:\n%s", out)
	}
	if !strings.Contains(out, `source="a.go:Foo:1"`) {
		t.Fatalf("expected edge source for Foo, got:\n%s", out)
	}
}

func TestWriteDOTContainsEdge(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStore(), FormatDOT); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"a.go:Foo:1" -> "a.go:Bar:5"`) {
		t.Fatalf("expected Foo->Bar edge, got:\n%s", out)
	}
}

func TestWriteCSVHasHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStore(), FormatCSV); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 { // header + 2 nodes + 1 edge
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "record,id,name,kind,file,line,to") {
		t.Fatalf("expected header row, got %q", lines[0])
	}
}
