package languages

import (
	"context"
	"strings"

	"github.com/codenav/codenav/internal/graphmodel"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor implements Extractor for Python source files. Grounded on
// the teacher's pkg/languages/python.go, relocated under internal/languages
// to end that package split (see DESIGN.md).
type PythonExtractor struct {
	parser *sitter.Parser
}

// NewPythonExtractor creates a new Python extractor.
func NewPythonExtractor() *PythonExtractor {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: p}
}

func (p *PythonExtractor) Language() string { return "python" }

func (p *PythonExtractor) Extensions() []string { return []string{".py", ".pyw"} }

func (p *PythonExtractor) Extract(path string, content []byte) ([]graphmodel.Node, []graphmodel.Edge, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, nil, &graphmodel.ExtractError{Path: path, Reason: err.Error()}
	}
	defer tree.Close()

	var symbols []rawSymbol
	p.walk(tree.RootNode(), content, &symbols, "")

	nodes, edges := lowerSymbols(path, packageNameFromPath(path), symbols)
	return nodes, edges, nil
}

func (p *PythonExtractor) walk(node *sitter.Node, content []byte, symbols *[]rawSymbol, className string) {
	switch node.Type() {
	case "function_definition":
		if sym := p.extractFunction(node, content, className); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		return

	case "class_definition":
		if sym := p.extractClass(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
			if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
				for i := 0; i < int(bodyNode.ChildCount()); i++ {
					p.walk(bodyNode.Child(i), content, symbols, sym.Name)
				}
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), content, symbols, className)
	}
}

func (p *PythonExtractor) extractFunction(node *sitter.Node, content []byte, className string) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	kind := graphmodel.KindFunction
	if className != "" {
		kind = graphmodel.KindMethod
	}

	bodyNode := node.ChildByFieldName("body")
	return &rawSymbol{
		Name:      name,
		Kind:      kind,
		Signature: p.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Doc:       p.leadingDocstring(bodyNode, content),
		Calls:     p.extractCalls(bodyNode, content),
	}
}

func (p *PythonExtractor) extractClass(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	bodyNode := node.ChildByFieldName("body")
	return &rawSymbol{
		Name:      nameNode.Content(content),
		Kind:      graphmodel.KindClass,
		Signature: p.buildClassSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Doc:       p.leadingDocstring(bodyNode, content),
	}
}

func (p *PythonExtractor) leadingDocstring(bodyNode *sitter.Node, content []byte) string {
	if bodyNode == nil || bodyNode.ChildCount() == 0 {
		return ""
	}
	firstStmt := bodyNode.Child(0)
	if firstStmt.Type() != "expression_statement" || firstStmt.ChildCount() == 0 {
		return ""
	}
	expr := firstStmt.Child(0)
	if expr.Type() != "string" {
		return ""
	}
	return extractDocstring(expr.Content(content))
}

func (p *PythonExtractor) buildFunctionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	sig := "def"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if returnNode != nil {
		sig += " -> " + returnNode.Content(content)
	}
	return sig
}

func (p *PythonExtractor) buildClassSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	superclassNode := node.ChildByFieldName("superclasses")

	sig := "class"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if superclassNode != nil {
		sig += superclassNode.Content(content)
	}
	return sig
}

func (p *PythonExtractor) extractCalls(bodyNode *sitter.Node, content []byte) []rawCall {
	if bodyNode == nil {
		return nil
	}
	var calls []rawCall
	p.collectCalls(bodyNode, content, &calls)
	return calls
}

func (p *PythonExtractor) collectCalls(node *sitter.Node, content []byte, calls *[]rawCall) {
	if node == nil {
		return
	}
	if node.Type() == "call" {
		if call := p.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		p.collectCalls(node.Child(i), content, calls)
	}
}

func (p *PythonExtractor) extractCallSite(callNode *sitter.Node, content []byte) rawCall {
	fnNode := callNode.ChildByFieldName("function")
	name, qualifier := p.extractCallName(fnNode, content)
	return rawCall{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
}

func (p *PythonExtractor) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if attr != nil {
			qualifierValue := ""
			if object != nil {
				qualifierValue = strings.TrimSpace(object.Content(content))
			}
			return attr.Content(content), qualifierValue
		}
		qualifierValue, nameValue := splitQualifiedName(node.Content(content))
		return nameValue, qualifierValue
	case "parenthesized_expression":
		return p.extractCallName(node.ChildByFieldName("expression"), content)
	case "subscript":
		return p.extractCallName(node.ChildByFieldName("value"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	if nameValue != "" {
		return nameValue, qualifierValue
	}
	return strings.TrimSpace(node.Content(content)), ""
}

func extractDocstring(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) {
		s = s[3 : len(s)-3]
	} else if strings.HasPrefix(s, `'''`) && strings.HasSuffix(s, `'''`) {
		s = s[3 : len(s)-3]
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
