package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentence() *Node {
	return NewNode("S",
		NewNode("NP", NewLeaf("DT", "the"), NewLeaf("NN", "dog")),
		NewNode("VP", NewLeaf("VBZ", "barks")),
	)
}

func TestNewNumbersNodesInPreorder(t *testing.T) {
	tr, err := New(sentence())
	require.NoError(t, err)
	require.Equal(t, 6, tr.Size())
	labels := []string{}
	for i, n := range tr.Nodes() {
		assert.Equal(t, i, n.Index())
		labels = append(labels, n.Label)
	}
	assert.Equal(t, []string{"S", "NP", "DT", "NN", "VP", "VBZ"}, labels)
}

func TestNewRejectsMalformedStructures(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilRoot)

	_, err = New(NewNode("S", NewLeaf("NN", "dog"), nil))
	assert.ErrorIs(t, err, ErrNilChild)

	shared := NewLeaf("NN", "dog")
	_, err = New(NewNode("S", shared, shared))
	assert.ErrorIs(t, err, ErrSharedNode)
}

func TestNewRejectsNodesOfAnotherTree(t *testing.T) {
	dog := NewLeaf("NN", "dog")
	np, err := New(NewNode("NP", dog))
	require.NoError(t, err)

	_, err = New(NewNode("S", NewLeaf("DT", "the"), dog))
	assert.ErrorIs(t, err, ErrSharedNode)
	_, err = New(np.Root)
	assert.ErrorIs(t, err, ErrSharedNode)
	assert.Equal(t, 1, dog.Index())
	assert.Equal(t, []*Node{np.Root, dog}, np.Nodes())
}

func TestNewLeavesNodesUnclaimedOnError(t *testing.T) {
	dog := NewLeaf("NN", "dog")
	_, err := New(NewNode("S", dog, nil))
	require.ErrorIs(t, err, ErrNilChild)

	tr, err := New(NewNode("NP", NewLeaf("DT", "the"), dog))
	require.NoError(t, err)
	assert.Equal(t, 2, dog.Index())
	assert.Equal(t, 3, tr.Size())
}

func TestTraverse(t *testing.T) {
	tr, err := New(sentence())
	require.NoError(t, err)

	var topdown, bottomup []string
	require.NoError(t, tr.Traverse(false, func(n *Node) error {
		topdown = append(topdown, n.Label)
		return nil
	}))
	require.NoError(t, tr.Traverse(true, func(n *Node) error {
		bottomup = append(bottomup, n.Label)
		return nil
	}))
	assert.Equal(t, []string{"S", "NP", "DT", "NN", "VP", "VBZ"}, topdown)
	assert.Equal(t, []string{"DT", "NN", "NP", "VBZ", "VP", "S"}, bottomup)

	stop := errors.New("stop")
	visited := 0
	err = tr.Traverse(false, func(n *Node) error {
		visited++
		if n.Label == "NP" {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 2, visited)
}

func TestSameProduction(t *testing.T) {
	a := NewNode("NP", NewLeaf("DT", "the"), NewLeaf("NN", "dog"))
	b := NewNode("NP", NewLeaf("DT", "a"), NewLeaf("NN", "cat"))
	c := NewNode("NP", NewLeaf("DT", "a"), NewLeaf("NNS", "cats"))
	d := NewNode("NP", NewLeaf("NN", "dogs"))
	assert.True(t, a.SameProduction(b))
	assert.False(t, a.SameProduction(c))
	assert.False(t, a.SameProduction(d))
}

func TestStringAndSketch(t *testing.T) {
	tr, err := New(sentence())
	require.NoError(t, err)
	assert.Equal(t, "(S (NP (DT the) (NN dog)) (VP (VBZ barks)))", tr.String())
	expected := "[S]\n" +
		"|__[NP]\n" +
		"|  |__[DT] the\n" +
		"|  |__[NN] dog\n" +
		"|__[VP]\n" +
		"   |__[VBZ] barks\n"
	assert.Equal(t, expected, tr.Sketch())
}
