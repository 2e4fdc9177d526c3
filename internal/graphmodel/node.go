// Package graphmodel defines the node/edge types that every extractor,
// the store, persistence, and query layers share.
package graphmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a definition node.
type Kind int

const (
	KindFunction Kind = iota
	KindMethod
	KindHandler
	KindClass
	KindInterface
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindHandler:
		return "handler"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// ParseKind parses the string form produced by Kind.String, used by CLI flags.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "func":
		return KindFunction, nil
	case "method":
		return KindMethod, nil
	case "handler":
		return KindHandler, nil
	case "class":
		return KindClass, nil
	case "interface":
		return KindInterface, nil
	case "module":
		return KindModule, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// Node is a definition in source code, identified by the canonical triple
// file_path:name:line.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	FilePath  string `json:"file_path"`
	Line      int    `json:"line"`
	Signature string `json:"signature,omitempty"`
	Package   string `json:"package,omitempty"`
	Module    string `json:"module,omitempty"`
	Doc       string `json:"doc,omitempty"`
}

// EdgeKind classifies how a call was made, informational only.
type EdgeKind int

const (
	EdgeDirect EdgeKind = iota
	EdgeVirtual
	EdgeDynamic
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDirect:
		return "direct"
	case EdgeVirtual:
		return "virtual"
	case EdgeDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Edge is a directed call relationship. ToName is intentionally a textual
// callee name rather than a resolved node id — see the name-linked design
// note in SPEC_FULL.md §9.
type Edge struct {
	FromID       string   `json:"from_id"`
	ToName       string   `json:"to_name"`
	Kind         EdgeKind `json:"kind"`
	CallSiteLine int      `json:"call_site_line"`
}

// MakeNodeID is the only canonicalizer for node ids. Every producer must
// route through it to avoid duplicate admission under slightly different
// formatting of the same location.
func MakeNodeID(filePath, name string, line int) string {
	return filePath + ":" + name + ":" + strconv.Itoa(line)
}

// ParseNodeID is the inverse of MakeNodeID. Names and file paths are not
// permitted to contain ':' followed solely by digits at the very end in a
// way that would be ambiguous with the line suffix; in practice file paths
// are filesystem paths and names are identifiers, so the rightmost ':' is
// always the line separator and the next-to-rightmost is the name
// separator, with FilePath absorbing any remaining colons.
func ParseNodeID(id string) (filePath, name string, line int, ok bool) {
	lastColon := strings.LastIndex(id, ":")
	if lastColon == -1 {
		return "", "", 0, false
	}
	lineStr := id[lastColon+1:]
	parsedLine, err := strconv.Atoi(lineStr)
	if err != nil {
		return "", "", 0, false
	}
	rest := id[:lastColon]
	secondColon := strings.LastIndex(rest, ":")
	if secondColon == -1 {
		return "", "", 0, false
	}
	return rest[:secondColon], rest[secondColon+1:], parsedLine, true
}

// ExtractError is returned by a language extractor when it cannot produce
// nodes/edges for a file. Indexing downgrades this to a per-file warning
// and continues (see SPEC_FULL.md §4.3 and §7).
type ExtractError struct {
	Path   string
	Reason string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Path, e.Reason)
}
