package json

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndWriteDataset(t *testing.T) {
	ctx := context.Background()
	d, err := ReadDataset(strings.NewReader(`{"instances": [
		{"id": "a", "label": "+1", "trees": [{"name": "parse", "tree": "(S  (NN dog))"}]},
		{"trees": [{"tree": "(S (NN cat))"}]}
	]}`))
	require.NoError(t, err)
	instances, err := d.Instances(ctx)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	tr, ok := instances[0].Vector.Tree("parse")
	require.True(t, ok)
	assert.Equal(t, "(S (NN dog))", tr)
	assert.Equal(t, "2", instances[1].ID)
	tr, ok = instances[1].Vector.Tree("tree0")
	require.True(t, ok)
	assert.Equal(t, "(S (NN cat))", tr)

	var buf bytes.Buffer
	require.NoError(t, WriteDataset(ctx, &buf, d))
	reread, err := ReadDataset(&buf)
	require.NoError(t, err)
	got, err := reread.Instances(ctx)
	require.NoError(t, err)
	assert.Equal(t, instances, got)
}

func TestReadDatasetErrors(t *testing.T) {
	_, err := ReadDataset(strings.NewReader(`{"instances": [`))
	assert.Error(t, err)
	_, err = ReadDataset(strings.NewReader(`{"instances": [{"id": "a", "trees": []}, {"id": "a", "trees": []}]}`))
	assert.Error(t, err)
}
