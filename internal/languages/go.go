package languages

import (
	"context"
	"strings"

	"github.com/codenav/codenav/internal/graphmodel"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements Extractor for Go source files.
type GoExtractor struct {
	parser *sitter.Parser
}

// NewGoExtractor creates a new Go extractor.
func NewGoExtractor() *GoExtractor {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoExtractor{parser: p}
}

func (g *GoExtractor) Language() string { return "go" }

func (g *GoExtractor) Extensions() []string { return []string{".go"} }

func (g *GoExtractor) Extract(path string, content []byte) ([]graphmodel.Node, []graphmodel.Edge, error) {
	tree, err := g.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, nil, &graphmodel.ExtractError{Path: path, Reason: err.Error()}
	}
	defer tree.Close()

	var symbols []rawSymbol
	pkg := ""
	root := tree.RootNode()
	g.walk(root, content, &symbols, &pkg)

	nodes, edges := lowerSymbols(path, pkg, symbols)
	return nodes, edges, nil
}

func (g *GoExtractor) walk(node *sitter.Node, content []byte, symbols *[]rawSymbol, pkg *string) {
	switch node.Type() {
	case "package_clause":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			*pkg = nameNode.Content(content)
		}
	case "function_declaration":
		if sym := g.extractFunction(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
		}
	case "method_declaration":
		if sym := g.extractMethod(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
		}
	case "type_declaration":
		*symbols = append(*symbols, g.extractTypeDecl(node, content)...)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		g.walk(node.Child(i), content, symbols, pkg)
	}
}

func (g *GoExtractor) extractFunction(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	kind := graphmodel.KindFunction
	if strings.EqualFold(name, "ServeHTTP") || strings.HasSuffix(name, "Handler") {
		kind = graphmodel.KindHandler
	}
	return &rawSymbol{
		Name:      name,
		Kind:      kind,
		Signature: g.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Calls:     g.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (g *GoExtractor) extractMethod(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	receiver := ""
	if recvNode := node.ChildByFieldName("receiver"); recvNode != nil {
		receiver = recvNode.Content(content)
	}
	kind := graphmodel.KindMethod
	if strings.EqualFold(name, "ServeHTTP") {
		kind = graphmodel.KindHandler
	}
	return &rawSymbol{
		Name:      name,
		Kind:      kind,
		Signature: receiver + " " + g.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Calls:     g.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (g *GoExtractor) extractTypeDecl(node *sitter.Node, content []byte) []rawSymbol {
	var symbols []rawSymbol
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "type_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		typeNode := child.ChildByFieldName("type")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(content)
		kind := graphmodel.KindClass
		sig := "type " + name
		if typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = graphmodel.KindClass
				sig += " struct"
			case "interface_type":
				kind = graphmodel.KindInterface
				sig += " interface"
			default:
				sig += " " + typeNode.Content(content)
			}
		}
		symbols = append(symbols, rawSymbol{
			Name:      name,
			Kind:      kind,
			Signature: sig,
			Line:      int(child.StartPoint().Row) + 1,
		})
	}
	return symbols
}

func (g *GoExtractor) buildFunctionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	resultNode := node.ChildByFieldName("result")

	sig := "func"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if resultNode != nil {
		sig += " " + resultNode.Content(content)
	}
	return sig
}

func (g *GoExtractor) extractCalls(bodyNode *sitter.Node, content []byte) []rawCall {
	if bodyNode == nil {
		return nil
	}
	var calls []rawCall
	g.collectCalls(bodyNode, content, &calls)
	return calls
}

func (g *GoExtractor) collectCalls(node *sitter.Node, content []byte, calls *[]rawCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if call := g.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		g.collectCalls(node.Child(i), content, calls)
	}
}

func (g *GoExtractor) extractCallSite(callNode *sitter.Node, content []byte) rawCall {
	fnNode := callNode.ChildByFieldName("function")
	name, qualifier := g.extractCallName(fnNode, content)
	return rawCall{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
}

func (g *GoExtractor) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "selector_expression":
		operandNode := node.ChildByFieldName("operand")
		fieldNode := node.ChildByFieldName("field")
		if fieldNode != nil {
			qualifierValue := ""
			if operandNode != nil {
				qualifierValue = strings.TrimSpace(operandNode.Content(content))
			}
			return fieldNode.Content(content), qualifierValue
		}
		qualifierValue, nameValue := splitQualifiedName(node.Content(content))
		return nameValue, qualifierValue
	case "parenthesized_expression":
		return g.extractCallName(node.ChildByFieldName("expression"), content)
	case "index_expression", "type_instantiation_expression":
		return g.extractCallName(node.ChildByFieldName("operand"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	if nameValue != "" {
		return nameValue, qualifierValue
	}
	return strings.TrimSpace(node.Content(content)), ""
}
