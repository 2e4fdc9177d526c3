// Package export renders a persisted graph into external interchange
// formats: GraphML for visualization tools, DOT for Graphviz, and CSV for
// spreadsheet/data-analysis consumption.
package export

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"text/template"

	"github.com/codenav/codenav/internal/store"
)

// Format names the export target.
type Format string

const (
	FormatGraphML Format = "graphml"
	FormatDOT     Format = "dot"
	FormatCSV     Format = "csv"
)

// ParseFormat validates a CLI-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatGraphML, FormatDOT, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected graphml|dot|csv)", s)
	}
}

// Write renders s in the given format to w.
func Write(w io.Writer, s *store.Store, format Format) error {
	switch format {
	case FormatGraphML:
		return writeGraphML(w, s)
	case FormatDOT:
		return writeDOT(w, s)
	case FormatCSV:
		return writeCSV(w, s)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

type graphmlDocument struct {
	XMLName xml.Name      `xml:"graphml"`
	Keys    []graphmlKey  `xml:"key"`
	Graph   graphmlGraph  `xml:"graph"`
}

type graphmlKey struct {
	ID     string `xml:"id,attr"`
	For    string `xml:"for,attr"`
	Name   string `xml:"attr.name,attr"`
	Type   string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string          `xml:"id,attr"`
	Data []graphmlData   `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func writeGraphML(w io.Writer, s *store.Store) error {
	doc := graphmlDocument{
		Keys: []graphmlKey{
			{ID: "name", For: "node", Name: "name", Type: "string"},
			{ID: "kind", For: "node", Name: "kind", Type: "string"},
			{ID: "file", For: "node", Name: "file", Type: "string"},
			{ID: "line", For: "node", Name: "line", Type: "int"},
			{ID: "calltype", For: "edge", Name: "calltype", Type: "string"},
		},
		Graph: graphmlGraph{EdgeDefault: "directed"},
	}

	for _, n := range s.Nodes() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: n.ID,
			Data: []graphmlData{
				{Key: "name", Value: n.Name},
				{Key: "kind", Value: n.Kind.String()},
				{Key: "file", Value: n.FilePath},
				{Key: "line", Value: fmt.Sprintf("%d", n.Line)},
			},
		})
	}

	for _, e := range s.Edges() {
		for _, idx := range s.NodeIndicesByName(e.ToName) {
			doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
				Source: e.FromID,
				Target: s.NodeAt(idx).ID,
				Data:   []graphmlData{{Key: "calltype", Value: e.Kind.String()}},
			})
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

var dotTemplate = template.Must(template.New("dot").Parse(
	`digraph codenav {
{{- range .Nodes}}
  "{{.ID}}" [label="{{.Name}}"];
{{- end}}
{{- range .Edges}}
  "{{.From}}" -> "{{.To}}";
{{- end}}
}
`))

type dotNode struct {
	ID   string
	Name string
}

type dotEdge struct {
	From string
	To   string
}

func writeDOT(w io.Writer, s *store.Store) error {
	data := struct {
		Nodes []dotNode
		Edges []dotEdge
	}{}

	for _, n := range s.Nodes() {
		data.Nodes = append(data.Nodes, dotNode{ID: n.ID, Name: n.Name})
	}
	for _, e := range s.Edges() {
		for _, idx := range s.NodeIndicesByName(e.ToName) {
			data.Edges = append(data.Edges, dotEdge{From: e.FromID, To: s.NodeAt(idx).ID})
		}
	}

	return dotTemplate.Execute(w, data)
}

func writeCSV(w io.Writer, s *store.Store) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"record", "id", "name", "kind", "file", "line", "to"}); err != nil {
		return err
	}
	for _, n := range s.Nodes() {
		if err := writer.Write([]string{"node", n.ID, n.Name, n.Kind.String(), n.FilePath, fmt.Sprintf("%d", n.Line), ""}); err != nil {
			return err
		}
	}
	for _, e := range s.Edges() {
		if err := writer.Write([]string{"edge", e.FromID, "", e.Kind.String(), "", "", e.ToName}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
