package csv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDataset(t *testing.T) {
	data := "id,label,parse,np\n" +
		"s1,+1,\"(S (NP (NN dogs))\n  (VP (VBP bark)))\",(NP (NN dogs))\n" +
		",-1,(S (NP (NN cats)) (VP (VBP purr))),(NP (NN cats))\n"
	d, err := ReadDataset(strings.NewReader(data))
	require.NoError(t, err)
	instances, err := d.Instances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "s1", instances[0].ID)
	assert.Equal(t, "+1", instances[0].Label)
	assert.Equal(t, []string{"(S (NP (NN dogs)) (VP (VBP bark)))", "(NP (NN dogs))"}, instances[0].Vector.Trees())
	assert.Equal(t, "2", instances[1].ID)
	tr, ok := instances[1].Vector.Tree("np")
	assert.True(t, ok)
	assert.Equal(t, "(NP (NN cats))", tr)
}

func TestReadDatasetByInstanceStops(t *testing.T) {
	data := "id,label,parse\na,,(NN a)\nb,,(NN b)\nc,,(NN c)\n"
	var ids []string
	err := ReadDatasetByInstance(strings.NewReader(data), func(i int, in dataset.Instance) (bool, error) {
		ids = append(ids, in.ID)
		return i < 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestReadDatasetErrors(t *testing.T) {
	for name, data := range map[string]string{
		"empty":            "",
		"bad header":       "label,id,parse\n",
		"unnamed field":    "id,label,\n",
		"duplicated field": "id,label,parse,parse\n",
		"short row":        "id,label,parse\na,b\n",
		"duplicated id":    "id,label,parse\na,,(NN a)\na,,(NN b)\n",
	} {
		_, err := ReadDataset(strings.NewReader(data))
		assert.Error(t, err, name)
	}
}

func TestWriter(t *testing.T) {
	var b bytes.Buffer
	w, err := NewWriter(&b, []string{"parse", "np"})
	require.NoError(t, err)
	n, err := w.Write(context.Background(), []dataset.Instance{
		{ID: "a", Label: "1", Vector: feature.New(feature.Field{Name: "parse", Tree: "(S (NN a))"}, feature.Field{Name: "np", Tree: "(NP (NN a))"})},
		{ID: "b", Vector: feature.New(feature.Field{Name: "np", Tree: "(NP (NN b))"}, feature.Field{Name: "parse", Tree: "(S (NN b))"})},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Flush())
	assert.Equal(t, "id,label,parse,np\na,1,(S (NN a)),(NP (NN a))\nb,,(S (NN b)),(NP (NN b))\n", b.String())

	n, err = w.Write(context.Background(), []dataset.Instance{{ID: "c", Vector: feature.FromTrees("(NN c)")}})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}
