package languages

import (
	"context"
	"strings"

	"github.com/codenav/codenav/internal/graphmodel"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptExtractor implements Extractor for TypeScript/TSX/JavaScript/JSX.
type TypeScriptExtractor struct {
	tsParser *sitter.Parser
	jsParser *sitter.Parser
}

// NewTypeScriptExtractor creates a new combined TS/JS extractor.
func NewTypeScriptExtractor() *TypeScriptExtractor {
	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())
	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())
	return &TypeScriptExtractor{tsParser: ts, jsParser: js}
}

func (t *TypeScriptExtractor) Language() string { return "typescript" }

func (t *TypeScriptExtractor) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
}

func (t *TypeScriptExtractor) Extract(path string, content []byte) ([]graphmodel.Node, []graphmodel.Edge, error) {
	p := t.tsParser
	if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".jsx") ||
		strings.HasSuffix(path, ".mjs") || strings.HasSuffix(path, ".cjs") {
		p = t.jsParser
	}

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, nil, &graphmodel.ExtractError{Path: path, Reason: err.Error()}
	}
	defer tree.Close()

	var symbols []rawSymbol
	t.walk(tree.RootNode(), content, &symbols, "")

	nodes, edges := lowerSymbols(path, packageNameFromPath(path), symbols)
	return nodes, edges, nil
}

func (t *TypeScriptExtractor) walk(node *sitter.Node, content []byte, symbols *[]rawSymbol, className string) {
	switch node.Type() {
	case "function_declaration":
		if sym := t.extractFunction(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		return

	case "method_definition":
		if sym := t.extractMethod(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		return

	case "class_declaration":
		if sym := t.extractClass(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
			if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
				for i := 0; i < int(bodyNode.ChildCount()); i++ {
					t.walk(bodyNode.Child(i), content, symbols, sym.Name)
				}
			}
		}
		return

	case "interface_declaration":
		if sym := t.extractInterface(node, content); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		return

	case "lexical_declaration", "variable_declaration":
		*symbols = append(*symbols, t.extractVariableDeclarations(node, content)...)
		return

	case "export_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			t.walk(node.Child(i), content, symbols, className)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		t.walk(node.Child(i), content, symbols, className)
	}
}

func (t *TypeScriptExtractor) extractFunction(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &rawSymbol{
		Name:      nameNode.Content(content),
		Kind:      graphmodel.KindFunction,
		Signature: t.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Calls:     t.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (t *TypeScriptExtractor) extractMethod(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	kind := graphmodel.KindMethod
	if strings.EqualFold(name, "handle") || strings.HasSuffix(name, "Handler") {
		kind = graphmodel.KindHandler
	}
	return &rawSymbol{
		Name:      name,
		Kind:      kind,
		Signature: t.buildMethodSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		Calls:     t.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (t *TypeScriptExtractor) extractClass(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	sig := "class " + name
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "class_heritage" {
			sig += " " + child.Content(content)
			break
		}
	}
	return &rawSymbol{
		Name:      name,
		Kind:      graphmodel.KindClass,
		Signature: sig,
		Line:      int(node.StartPoint().Row) + 1,
	}
}

func (t *TypeScriptExtractor) extractInterface(node *sitter.Node, content []byte) *rawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	return &rawSymbol{
		Name:      name,
		Kind:      graphmodel.KindInterface,
		Signature: "interface " + name,
		Line:      int(node.StartPoint().Row) + 1,
	}
}

func (t *TypeScriptExtractor) extractVariableDeclarations(node *sitter.Node, content []byte) []rawSymbol {
	var symbols []rawSymbol
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		if valueNode.Type() != "arrow_function" && valueNode.Type() != "function" {
			continue
		}
		name := nameNode.Content(content)
		symbols = append(symbols, rawSymbol{
			Name:      name,
			Kind:      graphmodel.KindFunction,
			Signature: t.buildArrowFunctionSignature(nameNode, valueNode, content),
			Line:      int(child.StartPoint().Row) + 1,
			Calls:     t.extractCalls(valueNode, content),
		})
	}
	return symbols
}

func (t *TypeScriptExtractor) buildFunctionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	sig := "function"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if returnNode != nil {
		sig += formatReturnType(returnNode.Content(content))
	}
	return sig
}

func (t *TypeScriptExtractor) buildMethodSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	sig := ""
	if nameNode != nil {
		sig = nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if returnNode != nil {
		sig += formatReturnType(returnNode.Content(content))
	}
	return sig
}

func (t *TypeScriptExtractor) buildArrowFunctionSignature(nameNode, valueNode *sitter.Node, content []byte) string {
	name := nameNode.Content(content)
	paramsNode := valueNode.ChildByFieldName("parameters")
	returnNode := valueNode.ChildByFieldName("return_type")

	sig := "const " + name + " = "
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	sig += " =>"
	if returnNode != nil {
		sig += " " + returnNode.Content(content)
	}
	return sig
}

func (t *TypeScriptExtractor) extractCalls(node *sitter.Node, content []byte) []rawCall {
	if node == nil {
		return nil
	}
	var calls []rawCall
	t.collectCalls(node, content, &calls)
	return calls
}

func (t *TypeScriptExtractor) collectCalls(node *sitter.Node, content []byte, calls *[]rawCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if call := t.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		t.collectCalls(node.Child(i), content, calls)
	}
}

func (t *TypeScriptExtractor) extractCallSite(callNode *sitter.Node, content []byte) rawCall {
	fnNode := callNode.ChildByFieldName("function")
	name, qualifier := t.extractCallName(fnNode, content)
	return rawCall{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
}

func (t *TypeScriptExtractor) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "member_expression":
		objectNode := node.ChildByFieldName("object")
		property := node.ChildByFieldName("property")
		if property != nil {
			qualifierValue := ""
			if objectNode != nil {
				qualifierValue = strings.TrimSpace(objectNode.Content(content))
			}
			return property.Content(content), qualifierValue
		}
	case "subscript_expression":
		return t.extractCallName(node.ChildByFieldName("object"), content)
	case "parenthesized_expression":
		return t.extractCallName(node.ChildByFieldName("expression"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	if nameValue != "" {
		return nameValue, qualifierValue
	}
	return strings.TrimSpace(node.Content(content)), ""
}

func formatReturnType(raw string) string {
	value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), ":"))
	if value == "" {
		return ""
	}
	return ": " + value
}
