/*
Package yaml provides methods to read and write datasets as
YAML documents like

	instances:
	- id: s1
	  label: "+1"
	  trees:
	  - name: parse
	    tree: (S (NP (NN dogs)) (VP (VBP bark)))

Field order is kept as written. Instances without id get their
1-based position as id and fields without name get "tree" and
their 0-based position.
*/
package yaml

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree/ptb"
	yaml "gopkg.in/yaml.v2"
)

type document struct {
	Instances []instance `yaml:"instances"`
}

type instance struct {
	ID    string  `yaml:"id,omitempty"`
	Label string  `yaml:"label,omitempty"`
	Trees []field `yaml:"trees"`
}

type field struct {
	Name string `yaml:"name,omitempty"`
	Tree string `yaml:"tree"`
}

/*
ReadDataset takes a slice of bytes with a YAML dataset document
and returns a dataset.Dataset with its instances or an error.
*/
func ReadDataset(data []byte) (dataset.Dataset, error) {
	doc := &document{}
	err := yaml.Unmarshal(data, doc)
	if err != nil {
		return nil, fmt.Errorf("parsing yml dataset: %v", err)
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
		return nil, fmt.Errorf("parsing yml dataset: %v", err)
	}
	return dataset.New(instances), nil
}

/*
ReadDatasetFrom takes an io.Reader, reads it to the end and
uses ReadDataset to parse its contents.
*/
func ReadDatasetFrom(r io.Reader) (dataset.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading yml dataset: %v", err)
	}
	return ReadDataset(data)
}

/*
ReadDatasetFromFile takes a filepath string, reads its contents and uses
ReadDataset to parse it and return a dataset or an error.
*/
func ReadDatasetFromFile(filepath string) (dataset.Dataset, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset yml file %s: %v", filepath, err)
	}
	d, err := ReadDataset(data)
	if err != nil {
		err = fmt.Errorf("parsing dataset yml file %s: %v", filepath, err)
	}
	return d, err
}

/*
WriteDataset takes a context, an io.Writer and a dataset and writes
the dataset's instances as a YAML document to the writer.
*/
func WriteDataset(ctx context.Context, w io.Writer, d dataset.Dataset) error {
	instances, err := d.Instances(ctx)
	if err != nil {
		return fmt.Errorf("writing yml dataset: %v", err)
	}
	doc := &document{Instances: make([]instance, 0, len(instances))}
	for _, in := range instances {
		yi := instance{ID: in.ID, Label: in.Label}
		for _, f := range in.Vector.Fields() {
			yi.Trees = append(yi.Trees, field{f.Name, f.Tree})
		}
		doc.Instances = append(doc.Instances, yi)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding yml dataset: %v", err)
	}
	_, err = w.Write(data)
	return err
}
