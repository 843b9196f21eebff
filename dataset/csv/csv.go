/*
Package csv provides methods to read and write datasets as CSV,
with a header row like

	id,label,parse,dependencies

The id and label columns are followed by one column per field,
named after it, holding serialized trees. Every field must have
a name and every instance a tree for every field.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree/ptb"
)

const (
	idColumn    = "id"
	labelColumn = "label"
)

/*
Writer is an interface for a dataset to which instances
can be written as CSV.
*/
type Writer interface {
	dataset.Writer
	// Count returns the total number of instances written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count  int
	fields []string
	w      *csv.Writer
}

/*
ReadDataset takes an io.Reader for a CSV stream and returns a
dataset.Dataset with the instances parsed from it or an error,
also returned if two instances share an ID.
*/
func ReadDataset(reader io.Reader) (dataset.Dataset, error) {
	instances := []dataset.Instance{}
	err := ReadDatasetByInstance(reader, func(_ int, in dataset.Instance) (bool, error) {
		instances = append(instances, in)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	err = dataset.Validate(instances)
	if err != nil {
		return nil, err
	}
	return dataset.New(instances), nil
}

/*
ReadDatasetByInstance takes an io.Reader for a CSV stream and a
lambda function on an integer and a dataset.Instance that returns a
boolean value. It parses the instances from the reader and for each
it calls the lambda function with the instance and its index as
parameters. If the lambda function returns true, it will continue
processing the next instance, otherwise it will stop. An error is
returned if something goes wrong when reading the stream or parsing
an instance.
*/
func ReadDatasetByInstance(reader io.Reader, lambda func(int, dataset.Instance) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	fields, err := parseHeader(header)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		fv := feature.New()
		for i, name := range fields {
			fv.Add(name, ptb.Normalize(row[i+2]))
		}
		id := row[0]
		if id == "" {
			id = fmt.Sprintf("%d", l-1)
		}
		ok, err := lambda(l-2, dataset.Instance{ID: id, Label: row[1], Vector: fv})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
NewWriter takes an io.Writer and the names of the fields of the
instances to write and returns a Writer that writes instances to
it in CSV format, starting with the header, or an error.
*/
func NewWriter(w io.Writer, fields []string) (Writer, error) {
	cw := &csvWriter{fields: fields, w: csv.NewWriter(w)}
	header := append([]string{idColumn, labelColumn}, fields...)
	err := cw.w.Write(header)
	if err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *csvWriter) Write(ctx context.Context, instances []dataset.Instance) (int, error) {
	for i, in := range instances {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if in.Vector.Len() != len(cw.fields) {
			return i, fmt.Errorf("instance %q has %d fields, expected %d", in.ID, in.Vector.Len(), len(cw.fields))
		}
		row := make([]string, 0, len(cw.fields)+2)
		row = append(row, in.ID, in.Label)
		for _, name := range cw.fields {
			t, ok := in.Vector.Tree(name)
			if !ok {
				return i, fmt.Errorf("instance %q has no field %q", in.ID, name)
			}
			row = append(row, t)
		}
		err := cw.w.Write(row)
		if err != nil {
			return i, err
		}
		cw.count++
	}
	return len(instances), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func parseHeader(header []string) ([]string, error) {
	if len(header) < 2 || header[0] != idColumn || header[1] != labelColumn {
		return nil, fmt.Errorf("header must start with %q and %q columns", idColumn, labelColumn)
	}
	fields := header[2:]
	seen := make(map[string]bool, len(fields))
	for _, name := range fields {
		if name == "" {
			return nil, fmt.Errorf("header has a field without name")
		}
		if seen[name] {
			return nil, fmt.Errorf("header has duplicated field %q", name)
		}
		seen[name] = true
	}
	return fields, nil
}
