// Package parser wraps tree-sitter for the source dialects endpoint files are
// written in. It selects a grammar from the file extension and rejects trees
// containing syntax errors.
package parser

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the grammar variant used to parse a file.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

var extensions = map[string]Language{
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".jsx": LangJavaScript,
}

// Extensions returns the recognized source file extensions.
func Extensions() []string {
	return []string{".ts", ".mts", ".cts", ".tsx", ".js", ".mjs", ".cjs", ".jsx"}
}

// LanguageForPath picks the grammar for a file path by extension.
func LanguageForPath(p string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(path.Ext(p))]
	return lang, ok
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LangTSX:
		return tsx.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

// SyntaxError reports the first error node found in a parsed tree.
type SyntaxError struct {
	Line   int // 1-based
	Column int // 1-based
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

// Tree is a parsed source file. Close must be called to release the
// underlying tree-sitter allocation.
type Tree struct {
	Path     string
	Language Language
	Source   []byte

	tree *sitter.Tree
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses src with the grammar selected by filePath's extension.
// A new tree-sitter parser is created per call, so Parse is safe for
// concurrent use. Trees containing error or missing nodes are rejected with
// a *SyntaxError.
func Parse(ctx context.Context, filePath string, src []byte) (*Tree, error) {
	lang, ok := LanguageForPath(filePath)
	if !ok {
		return nil, errors.Newf("unsupported source extension %q", path.Ext(filePath))
	}
	return ParseLanguage(ctx, lang, filePath, src)
}

// ParseLanguage parses src with an explicit grammar.
func ParseLanguage(ctx context.Context, lang Language, filePath string, src []byte) (*Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang.grammar())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filePath)
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, errors.Newf("parse %s: empty tree", filePath)
	}
	if root.HasError() {
		serr := firstError(root, src)
		tree.Close()
		return nil, serr
	}

	return &Tree{
		Path:     filePath,
		Language: lang,
		Source:   src,
		tree:     tree,
	}, nil
}

// firstError locates the earliest ERROR or MISSING node in document order.
func firstError(n *sitter.Node, src []byte) *SyntaxError {
	if n.IsMissing() || n.Type() == "ERROR" {
		pt := n.StartPoint()
		near := n.Content(src)
		if n.IsMissing() {
			near = n.Type()
		}
		if len(near) > 40 {
			near = near[:40]
		}
		return &SyntaxError{
			Line:   int(pt.Row) + 1,
			Column: int(pt.Column) + 1,
			Near:   strings.TrimSpace(near),
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if e := firstError(child, src); e != nil {
			return e
		}
	}
	// HasError was true on n but no descendant matched; report n itself.
	pt := n.StartPoint()
	return &SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
}
