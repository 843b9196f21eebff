/*
Package ptb provides a parser for trees serialized in
Penn Treebank bracketed notation, such as

	(S (NP (DT the) (NN dog)) (VP (VBZ barks)))

A node holding a single word is a leaf whose value is
the word. A top-level node without label, as found in
treebank .mrg files, is parsed as a root with an empty
label.
*/
package ptb

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pbanos/treekernel/tree"
)

// ParseError is returned when a serialized tree is malformed.
type ParseError struct {
	// The serialized tree that failed to parse
	Input string
	// The byte offset in Input where the problem was found
	Offset int
	// A description of the problem
	Msg string
}

func (pe *ParseError) Error() string {
	input := pe.Input
	if len(input) > 60 {
		input = input[:57] + "..."
	}
	return fmt.Sprintf("malformed tree %q at offset %d: %s", input, pe.Offset, pe.Msg)
}

// Parser is a tree.Parser for Penn Treebank bracketed notation.
var Parser tree.Parser = tree.ParserFunc(Parse)

type tokenKind int

const (
	tokenOpen tokenKind = iota
	tokenClose
	tokenWord
	tokenEOF
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type parser struct {
	input string
	pos   int
	tok   token
}

// Parse takes a tree in bracketed notation and returns
// the tree.Tree it represents or a *ParseError.
func Parse(s string) (*tree.Tree, error) {
	p := &parser{input: s}
	p.next()
	if p.tok.kind == tokenEOF {
		return nil, p.errorf("empty input")
	}
	root, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, p.errorf("unexpected %q after end of tree", p.tok.text)
	}
	return tree.New(root)
}

func (p *parser) node() (*tree.Node, error) {
	if p.tok.kind != tokenOpen {
		return nil, p.errorf("expected '(' but found %q", p.tok.text)
	}
	p.next()
	n := &tree.Node{}
	if p.tok.kind == tokenWord {
		n.Label = p.tok.text
		p.next()
	}
	switch p.tok.kind {
	case tokenWord:
		n.Value = p.tok.text
		p.next()
		if p.tok.kind != tokenClose {
			return nil, p.errorf("expected ')' closing leaf %q but found %q", n.Label, p.tok.text)
		}
	case tokenOpen:
		for p.tok.kind == tokenOpen {
			c, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
		if p.tok.kind != tokenClose {
			if p.tok.kind == tokenWord {
				return nil, p.errorf("word %q mixed with subtrees under %q", p.tok.text, n.Label)
			}
			return nil, p.errorf("missing ')' closing %q", n.Label)
		}
	case tokenClose:
		return nil, p.errorf("node %q has neither children nor word", n.Label)
	default:
		return nil, p.errorf("missing ')' closing %q", n.Label)
	}
	p.next()
	return n, nil
}

func (p *parser) next() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokenEOF, text: "EOF", offset: p.pos}
		return
	}
	start := p.pos
	switch p.input[p.pos] {
	case '(':
		p.pos++
		p.tok = token{tokenOpen, "(", start}
		return
	case ')':
		p.pos++
		p.tok = token{tokenClose, ")", start}
		return
	}
	for p.pos < len(p.input) && !isSpace(p.input[p.pos]) && p.input[p.pos] != '(' && p.input[p.pos] != ')' {
		p.pos++
	}
	p.tok = token{tokenWord, p.input[start:p.pos], start}
}

func (p *parser) errorf(format string, a ...interface{}) error {
	return &ParseError{Input: p.input, Offset: p.tok.offset, Msg: fmt.Sprintf(format, a...)}
}

func isSpace(b byte) bool {
	return b < 0x80 && unicode.IsSpace(rune(b))
}

// Normalize returns s with every run of whitespace collapsed
// into a single space and surrounding whitespace removed, so
// that trees differing only in layout serialize the same way.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
