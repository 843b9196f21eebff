package yaml

import (
	"bytes"
	"context"
	"testing"

	"github.com/pbanos/treekernel/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
instances:
- id: s1
  label: "+1"
  trees:
  - name: parse
    tree: |
      (S (NP (NN dogs))
         (VP (VBP bark)))
  - name: path
    tree: (NP (NN dogs))
- label: "-1"
  trees:
  - tree: (S (NP (NN cats)) (VP (VBP sleep)))
  - tree: (NP (NN cats))
`

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	d, err := ReadDataset([]byte(doc))
	require.NoError(t, err)
	instances, err := d.Instances(ctx)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.Equal(t, "s1", instances[0].ID)
	assert.Equal(t, "+1", instances[0].Label)
	assert.Equal(t, []feature.Field{
		{Name: "parse", Tree: "(S (NP (NN dogs)) (VP (VBP bark)))"},
		{Name: "path", Tree: "(NP (NN dogs))"},
	}, instances[0].Vector.Fields())

	assert.Equal(t, "2", instances[1].ID)
	assert.Equal(t, []string{"tree0", "tree1"}, []string{instances[1].Vector.Fields()[0].Name, instances[1].Vector.Fields()[1].Name})
}

func TestReadDatasetErrors(t *testing.T) {
	_, err := ReadDataset([]byte("instances: {"))
	assert.Error(t, err)
	_, err = ReadDataset([]byte("instances:\n- id: a\n  trees: [{tree: (NN a)}]\n- id: a\n  trees: [{tree: (NN b)}]\n"))
	assert.Error(t, err)
	_, err = ReadDataset([]byte("instances:\n- trees: [{tree: (NN a)}]\n- trees: [{tree: (NN b)}, {tree: (NN c)}]\n"))
	assert.Error(t, err)
}

func TestWriteDataset(t *testing.T) {
	ctx := context.Background()
	d, err := ReadDataset([]byte(doc))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteDataset(ctx, &buf, d))

	reread, err := ReadDatasetFrom(&buf)
	require.NoError(t, err)
	expected, err := d.Instances(ctx)
	require.NoError(t, err)
	got, err := reread.Instances(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
