// Package extract recognizes the handler-registration call in an endpoint
// file and recovers its input and output contracts as source text.
//
// Only a handful of node shapes are matched:
//
//	export default <handler><Input, ...>(<fn>, ...)
//
// where <fn> is an arrow function or function expression. Every other node
// kind is ignored.
package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/parser"
)

// DefaultHandlerName is the registration function recognized when none is
// configured.
const DefaultHandlerName = "defineApexHandler"

// Extractor matches default-exported calls to a single handler-registration
// function. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	handlerName string
}

// New creates an Extractor for the given registration function name.
// An empty name selects DefaultHandlerName.
func New(handlerName string) *Extractor {
	if handlerName == "" {
		handlerName = DefaultHandlerName
	}
	return &Extractor{handlerName: handlerName}
}

// HandlerName returns the registration function this extractor matches.
func (e *Extractor) HandlerName() string {
	return e.handlerName
}

// Extract returns the contract fragment for a parsed file. The boolean is
// false when the file's default export is not the registration call; that
// is not an error.
func (e *Extractor) Extract(tree *parser.Tree) (ir.Fragment, bool) {
	return e.ExtractNode(tree.Root(), tree.Source)
}

// ExtractNode is like Extract but works on a raw program node.
func (e *Extractor) ExtractNode(root *sitter.Node, src []byte) (ir.Fragment, bool) {
	value := defaultExportValue(root)
	if value == nil {
		return ir.Fragment{}, false
	}

	call := unwrapParens(value)
	if call.Type() != "call_expression" {
		return ir.Fragment{}, false
	}
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != "identifier" || callee.Content(src) != e.handlerName {
		return ir.Fragment{}, false
	}

	var frag ir.Fragment
	if typeArgs := call.ChildByFieldName("type_arguments"); typeArgs != nil {
		frag.InputType = Print(firstNamed(typeArgs), src)
	}
	if args := call.ChildByFieldName("arguments"); args != nil {
		frag.ReturnType = Print(returnedExpr(firstNamed(args)), src)
	}
	return frag, true
}

// defaultExportValue returns the expression of the first top-level
// `export default <expr>` statement, or nil.
func defaultExportValue(root *sitter.Node) *sitter.Node {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Type() != "export_statement" || !isDefaultExport(stmt) {
			continue
		}
		// Only the first default export is considered. A default-exported
		// declaration (function, class) has no value and yields nil.
		return stmt.ChildByFieldName("value")
	}
	return nil
}

func isDefaultExport(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if c := stmt.Child(i); c != nil && c.Type() == "default" {
			return true
		}
	}
	return false
}

// returnedExpr finds the expression a handler function returns.
func returnedExpr(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	switch fn.Type() {
	case "arrow_function", "function_expression", "function":
	default:
		return nil
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	if body.Type() != "statement_block" {
		// Implicit return: data => ({ ... })
		return unwrapParens(body)
	}

	// First top-level return carrying an expression wins. Returns nested in
	// inner blocks or callbacks are not considered.
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || stmt.Type() != "return_statement" {
			continue
		}
		if expr := firstNamed(stmt); expr != nil {
			return expr
		}
	}
	return nil
}

// firstNamed returns the first named child that is not a comment.
func firstNamed(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() != "comment" {
			return c
		}
	}
	return nil
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		inner := firstNamed(n)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}
