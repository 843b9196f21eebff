package tree

/*
Node is a node of a parsed constituency tree
*/
type Node struct {
	// The syntactic category or production symbol of the node
	Label string
	// The terminal word under the node. It is only meaningful
	// for leaves.
	Value string
	// The nodes directly under this node, in order. It is
	// empty for leaves.
	Children []*Node

	index int
	owner *Tree
}

// NewLeaf returns a leaf node with the given label and terminal value.
func NewLeaf(label, value string) *Node {
	return &Node{Label: label, Value: value}
}

// NewNode returns an internal node with the given label and children.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// IsLeaf returns whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Index returns the position of the node in the preorder
// enumeration of the tree it belongs to.
func (n *Node) Index() int {
	return n.index
}

// SameProduction returns whether both nodes have the same
// sequence of children labels.
func (n *Node) SameProduction(o *Node) bool {
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i, c := range n.Children {
		if c.Label != o.Children[i].Label {
			return false
		}
	}
	return true
}
