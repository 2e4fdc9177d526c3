// Package languages implements the concrete Language Extractor contract
// (SPEC_FULL.md §4.2): given a file path and its textual content, produce
// nodes and edges for the call graph, or fail with a *graphmodel.ExtractError.
package languages

import "github.com/codenav/codenav/internal/graphmodel"

// Extractor is implemented once per supported language. Instances hold no
// shared state beyond their tree-sitter parser handle, so one instance per
// worker goroutine is safe (SPEC_FULL.md §4.2).
type Extractor interface {
	Language() string
	Extensions() []string
	Extract(path string, content []byte) ([]graphmodel.Node, []graphmodel.Edge, error)
}

// Registry maps file extensions to the Extractor that handles them.
type Registry struct {
	byExtension map[string]Extractor
	byLanguage  map[string]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]Extractor),
		byLanguage:  make(map[string]Extractor),
	}
}

// Register adds an extractor for all of the extensions it reports.
func (r *Registry) Register(e Extractor) {
	r.byLanguage[e.Language()] = e
	for _, ext := range e.Extensions() {
		r.byExtension[ext] = e
	}
}

// ForExtension returns the extractor registered for a file extension
// (including the leading dot), or nil if none is registered.
func (r *Registry) ForExtension(ext string) Extractor {
	return r.byExtension[ext]
}

// ForLanguage returns the extractor registered under a language name.
func (r *Registry) ForLanguage(name string) Extractor {
	return r.byLanguage[name]
}

// Extensions returns every extension this registry knows how to route.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	return exts
}

// NewDefaultRegistry registers every extractor this repository ships:
// Go, TypeScript/TSX/JavaScript/JSX, and Python. Ruby, present in the
// teacher this was grounded on, is dropped — it is not in SPEC_FULL.md's
// extension map (see DESIGN.md).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoExtractor())
	r.Register(NewTypeScriptExtractor())
	r.Register(NewPythonExtractor())
	return r
}
