/*
Package json provides methods to serialize parsed trees as JSON
documents listing their nodes, and to read them back. It is meant
for tools consuming trees that have no bracketed notation parser.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pbanos/treekernel/tree"
)

type node struct {
	ID         string   `json:"id"`
	ParentID   string   `json:"pId,omitempty"`
	SubtreeIDs []string `json:"stIds,omitempty"`
	Label      string   `json:"label"`
	Value      string   `json:"value,omitempty"`
}

/*
WriteJSONTree takes a pointer to a tree.Tree and an io.Writer and
serializes the given tree as JSON onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
  - "rootID": a string with the ID of the node at the root of the tree
  - "nodes": an array with the nodes of the tree in preorder, each with
    its "id", "label", the "pId" of its parent, the "stIds" of its
    children and, for leaves, its "value".

Node IDs are the preorder indexes of the nodes. An error is returned
if the tree cannot be serialized or written onto the io.Writer.
*/
func WriteJSONTree(t *tree.Tree, w io.Writer) error {
	err := writeJSONTreeHeader(t, w)
	if err != nil {
		return err
	}
	parents := make(map[*tree.Node]*tree.Node)
	var i int
	err = t.Traverse(false, func(n *tree.Node) error {
		jn := &node{
			ID:    nodeID(n),
			Label: n.Label,
			Value: n.Value,
		}
		if p, ok := parents[n]; ok {
			jn.ParentID = nodeID(p)
		}
		for _, c := range n.Children {
			parents[c] = n
			jn.SubtreeIDs = append(jn.SubtreeIDs, nodeID(c))
		}
		err := writeNode(i, jn, w)
		i++
		return err
	})
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(`]}`))
	return err
}

/*
ReadJSONTree takes an io.Reader and unmarshals its contents into
a tree.Tree, expecting the JSON document written by WriteJSONTree.
An error is returned if the JSON cannot be read from the io.Reader,
a node references an unknown node or the nodes do not form a tree.
*/
func ReadJSONTree(r io.Reader) (*tree.Tree, error) {
	jt := &struct {
		RootID string  `json:"rootID"`
		Nodes  []*node `json:"nodes"`
	}{}
	err := json.NewDecoder(r).Decode(jt)
	if err != nil {
		return nil, err
	}
	if jt.RootID == "" {
		return nil, fmt.Errorf("no root node id available")
	}
	nodes := make(map[string]*tree.Node, len(jt.Nodes))
	for _, jn := range jt.Nodes {
		if _, ok := nodes[jn.ID]; ok {
			return nil, fmt.Errorf("duplicated node id %q", jn.ID)
		}
		nodes[jn.ID] = &tree.Node{Label: jn.Label, Value: jn.Value}
	}
	for _, jn := range jt.Nodes {
		n := nodes[jn.ID]
		for _, id := range jn.SubtreeIDs {
			c, ok := nodes[id]
			if !ok {
				return nil, fmt.Errorf("node %q has unknown subtree %q", jn.ID, id)
			}
			n.Children = append(n.Children, c)
		}
		if len(n.Children) > 0 && n.Value != "" {
			return nil, fmt.Errorf("node %q has both a value and subtrees", jn.ID)
		}
	}
	root, ok := nodes[jt.RootID]
	if !ok {
		return nil, fmt.Errorf("unknown root node id %q", jt.RootID)
	}
	t, err := tree.New(root)
	if err != nil {
		return nil, err
	}
	if t.Size() != len(nodes) {
		return nil, fmt.Errorf("%d of %d nodes are not reachable from the root", len(nodes)-t.Size(), len(nodes))
	}
	return t, nil
}

func writeJSONTreeHeader(t *tree.Tree, w io.Writer) error {
	jrootID, err := json.Marshal(nodeID(t.Root))
	if err != nil {
		return err
	}
	header := fmt.Sprintf(`{"rootID":%s,"nodes":[`, jrootID)
	_, err = w.Write([]byte(header))
	return err
}

func writeNode(i int, jn *node, w io.Writer) error {
	if i != 0 {
		_, err := w.Write([]byte(","))
		if err != nil {
			return err
		}
	}
	data, err := json.Marshal(jn)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func nodeID(n *tree.Node) string {
	return strconv.Itoa(n.Index())
}
