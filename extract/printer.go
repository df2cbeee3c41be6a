package extract

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// verbatimKinds are copied byte for byte instead of being re-tokenized,
// because whitespace inside them is significant.
var verbatimKinds = map[string]bool{
	"string":          true,
	"template_string": true,
	"regex":           true,
	"jsx_text":        true,
}

// Print reconstructs the source text of a single subtree.
//
// Tokens are emitted in document order and comments are dropped. A gap
// between two tokens that spans a line break becomes a newline followed by
// the indentation of the next token's line; any other gap becomes a single
// space. Line breaks separate members of TypeScript object types, so they
// must survive. String-like literals are copied verbatim.
func Print(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	p := &printer{src: src}
	p.node(n)
	return p.buf.String()
}

type printer struct {
	src     []byte
	buf     strings.Builder
	last    uint32
	started bool
}

func (p *printer) node(n *sitter.Node) {
	if n.Type() == "comment" {
		return
	}
	if n.ChildCount() == 0 || verbatimKinds[n.Type()] {
		p.token(n)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			p.node(child)
		}
	}
}

func (p *printer) token(n *sitter.Node) {
	start, end := n.StartByte(), n.EndByte()
	if start >= end || int(end) > len(p.src) {
		return
	}
	if p.started && start > p.last {
		p.gap(p.src[p.last:start])
	}
	p.buf.Write(p.src[start:end])
	p.last = end
	p.started = true
}

// gap writes the separator for the bytes between two tokens.
func (p *printer) gap(b []byte) {
	nl := bytes.LastIndexByte(b, '\n')
	if nl < 0 {
		p.buf.WriteByte(' ')
		return
	}
	p.buf.WriteByte('\n')
	indent := b[nl+1:]
	n := 0
	for n < len(indent) && (indent[n] == ' ' || indent[n] == '\t') {
		n++
	}
	p.buf.Write(indent[:n])
}
