package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pbanos/treekernel/tree/ptb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONTree(t *testing.T) {
	tr, err := ptb.Parse("(NP (DT the) (NN dog))")
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, WriteJSONTree(tr, &b))
	expected := `{"rootID":"0","nodes":[` +
		`{"id":"0","stIds":["1","2"],"label":"NP"},` +
		`{"id":"1","pId":"0","label":"DT","value":"the"},` +
		`{"id":"2","pId":"0","label":"NN","value":"dog"}]}`
	assert.Equal(t, expected, b.String())
}

func TestReadJSONTreeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"(NN dog)",
		"(S (NP (DT the) (NN dog)) (VP (VBZ barks)))",
		"( (S (NP (PRP it)) (VP (VBZ rains)) (. .)) )",
	} {
		tr, err := ptb.Parse(s)
		require.NoError(t, err)
		var b bytes.Buffer
		require.NoError(t, WriteJSONTree(tr, &b))
		read, err := ReadJSONTree(&b)
		require.NoError(t, err, s)
		assert.Equal(t, tr.String(), read.String())
		assert.Equal(t, tr.Size(), read.Size())
	}
}

func TestReadJSONTreeErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"malformed":       `{"rootID":`,
		"no root":         `{"nodes":[{"id":"0","label":"NN","value":"dog"}]}`,
		"unknown root":    `{"rootID":"1","nodes":[{"id":"0","label":"NN","value":"dog"}]}`,
		"unknown subtree": `{"rootID":"0","nodes":[{"id":"0","label":"NP","stIds":["1"]}]}`,
		"duplicated id":   `{"rootID":"0","nodes":[{"id":"0","label":"NN","value":"a"},{"id":"0","label":"NN","value":"b"}]}`,
		"value and subtrees": `{"rootID":"0","nodes":[{"id":"0","label":"NP","value":"x","stIds":["1"]},` +
			`{"id":"1","label":"NN","value":"dog"}]}`,
		"unreachable": `{"rootID":"0","nodes":[{"id":"0","label":"NN","value":"a"},{"id":"1","label":"NN","value":"b"}]}`,
		"shared node": `{"rootID":"0","nodes":[{"id":"0","label":"NP","stIds":["1","1"]},{"id":"1","label":"NN","value":"b"}]}`,
	} {
		_, err := ReadJSONTree(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}
