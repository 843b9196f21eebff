package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilRoot is returned when building a tree without a root node
	ErrNilRoot = errors.New("tree has no root node")
	// ErrNilChild is returned when building a tree with a nil child
	ErrNilChild = errors.New("tree has a nil child node")
	// ErrSharedNode is returned when building a tree in which a node
	// can be reached through more than one path
	ErrSharedNode = errors.New("tree has a node reachable through more than one parent")
)

// Tree represents a parsed constituency tree. It is
// composed of its root node and the preorder list of
// all its nodes. Trees are not modified once built and
// can be read concurrently.
type Tree struct {
	Root  *Node
	nodes []*Node
}

// Parser is an interface for objects that turn a
// serialized tree into a Tree.
type Parser interface {
	// Parse takes a serialized tree and returns the Tree
	// it represents or an error if it is malformed.
	Parse(string) (*Tree, error)
}

// ParserFunc is an adapter to use ordinary functions as Parsers.
type ParserFunc func(string) (*Tree, error)

// Parse calls f(s).
func (f ParserFunc) Parse(s string) (*Tree, error) {
	return f(s)
}

// New takes the root Node of a tree and returns the Tree
// composed of it and all the nodes under it, or an error if
// the structure is not a tree. The tree takes ownership of
// the nodes: their preorder indexes are set and New returns
// ErrSharedNode if any of them already belongs to another
// tree. Nodes are only claimed when New succeeds.
func New(root *Node) (*Tree, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	t := &Tree{Root: root}
	seen := make(map[*Node]bool)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] || n.owner != nil {
			return nil, ErrSharedNode
		}
		seen[n] = true
		t.nodes = append(t.nodes, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			if c == nil {
				return nil, fmt.Errorf("%w: child %d of %q", ErrNilChild, i, n.Label)
			}
			stack = append(stack, c)
		}
	}
	for i, n := range t.nodes {
		n.index = i
		n.owner = t
	}
	return t, nil
}

// Nodes returns all nodes of the tree in preorder. The
// returned slice must not be modified.
func (t *Tree) Nodes() []*Node {
	return t.nodes
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Traverse takes a bottomup boolean and an error-returning
// function that takes a node as parameter, and goes through
// the tree running the function with every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the call to the function returns an error, the traversing
// is aborted and the error is returned.
func (t *Tree) Traverse(bottomup bool, f func(*Node) error) error {
	return traverse(t.Root, bottomup, f)
}

func traverse(n *Node, bottomup bool, f func(*Node) error) error {
	var err error
	if !bottomup {
		err = f(n)
	}
	if err != nil {
		return err
	}
	for _, c := range n.Children {
		err = traverse(c, bottomup, f)
		if err != nil {
			return err
		}
	}
	if bottomup {
		err = f(n)
	}
	return err
}

// String returns the tree in bracketed treebank notation.
func (t *Tree) String() string {
	var b strings.Builder
	writeBracketed(&b, t.Root)
	return b.String()
}

func writeBracketed(b *strings.Builder, n *Node) {
	b.WriteByte('(')
	b.WriteString(n.Label)
	if n.IsLeaf() {
		if n.Label != "" {
			b.WriteByte(' ')
		}
		b.WriteString(n.Value)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		writeBracketed(b, c)
	}
	b.WriteByte(')')
}

// Sketch returns a multiline drawing of the tree, one node
// per line.
func (t *Tree) Sketch() string {
	return subtreeSketch(t.Root)
}

func subtreeSketch(n *Node) string {
	label := n.Label
	if label == "" {
		label = "ROOT"
	}
	result := fmt.Sprintf("[%s]", label)
	if n.IsLeaf() {
		return fmt.Sprintf("%s %s\n", result, n.Value)
	}
	result = fmt.Sprintf("%s\n", result)
	for i, c := range n.Children {
		for j, line := range strings.Split(subtreeSketch(c), "\n") {
			if len(line) == 0 {
				continue
			}
			if j == 0 {
				result = fmt.Sprintf("%s|__%s\n", result, line)
			} else if i == len(n.Children)-1 {
				result = fmt.Sprintf("%s   %s\n", result, line)
			} else {
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
