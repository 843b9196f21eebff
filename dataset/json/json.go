/*
Package json provides methods to read and write datasets as
JSON documents with the shape

	{"instances": [{"id": "s1", "label": "+1",
	  "trees": [{"name": "parse", "tree": "(S (NN dogs))"}]}]}

Field order is kept as written. Instances without id get their
1-based position as id and fields without name get "tree" and
their 0-based position.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree/ptb"
)

type document struct {
	Instances []instance `json:"instances"`
}

type instance struct {
	ID    string  `json:"id,omitempty"`
	Label string  `json:"label,omitempty"`
	Trees []field `json:"trees"`
}

type field struct {
	Name string `json:"name,omitempty"`
	Tree string `json:"tree"`
}

/*
ReadDataset takes an io.Reader with a JSON dataset document and
returns a dataset.Dataset with its instances or an error.
*/
func ReadDataset(r io.Reader) (dataset.Dataset, error) {
	doc := &document{}
	err := json.NewDecoder(r).Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing json dataset: %v", err)
	}
	instances := make([]dataset.Instance, 0, len(doc.Instances))
	for i, in := range doc.Instances {
		id := in.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		fv := &feature.TreeFeatureVector{}
		for j, f := range in.Trees {
			name := f.Name
			if name == "" {
				name = fmt.Sprintf("tree%d", j)
			}
			fv.Add(name, ptb.Normalize(f.Tree))
		}
		instances = append(instances, dataset.Instance{ID: id, Label: in.Label, Vector: fv})
	}
	err = dataset.Validate(instances)
	if err != nil {
		return nil, fmt.Errorf("parsing json dataset: %v", err)
	}
	return dataset.New(instances), nil
}

/*
WriteDataset takes a context, an io.Writer and a dataset and writes
the dataset's instances as an indented JSON document to the writer.
*/
func WriteDataset(ctx context.Context, w io.Writer, d dataset.Dataset) error {
	instances, err := d.Instances(ctx)
	if err != nil {
		return fmt.Errorf("writing json dataset: %v", err)
	}
	doc := &document{Instances: make([]instance, 0, len(instances))}
	for _, in := range instances {
		ji := instance{ID: in.ID, Label: in.Label, Trees: []field{}}
		for _, f := range in.Vector.Fields() {
			ji.Trees = append(ji.Trees, field{f.Name, f.Tree})
		}
		doc.Instances = append(doc.Instances, ji)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
