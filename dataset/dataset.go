/*
Package dataset defines collections of labelled tree feature
vectors from which kernel matrices are computed.
*/
package dataset

import (
	"context"
	"fmt"
)

/*
Dataset represents a collection of instances.

Its Count method returns the number of instances it holds.

Its Instances method returns the instances it holds in a
stable order, the order of the rows and columns of the
kernel matrices computed on the dataset.
*/
type Dataset interface {
	Count(context.Context) (int, error)
	Instances(context.Context) ([]Instance, error)
}

/*
Writer is an interface for datasets to which instances
can be written.
*/
type Writer interface {
	// Write will attempt to write the given instances
	// and will return the number of actually written
	// instances and an error if not all of them could be
	// written.
	Write(context.Context, []Instance) (int, error)
}

type memoryDataset struct {
	instances []Instance
}

/*
New takes a slice of instances and returns a Dataset
holding them in the process memory.
*/
func New(instances []Instance) Dataset {
	return &memoryDataset{instances}
}

func (md *memoryDataset) Count(ctx context.Context) (int, error) {
	return len(md.instances), nil
}

func (md *memoryDataset) Instances(ctx context.Context) ([]Instance, error) {
	return md.instances, nil
}

func (md *memoryDataset) Write(ctx context.Context, instances []Instance) (int, error) {
	md.instances = append(md.instances, instances...)
	return len(instances), nil
}

/*
Validate takes a slice of instances and returns an error if
their IDs are not unique or their vectors do not all have the
same number of fields.
*/
func Validate(instances []Instance) error {
	ids := make(map[string]bool, len(instances))
	for i, in := range instances {
		if ids[in.ID] {
			return fmt.Errorf("instance #%d: duplicated id %q", i, in.ID)
		}
		ids[in.ID] = true
		if in.Vector == nil {
			return fmt.Errorf("instance %q has no tree feature vector", in.ID)
		}
		if in.Vector.Len() != instances[0].Vector.Len() {
			return fmt.Errorf("instance %q has %d fields, instance %q has %d", in.ID, in.Vector.Len(), instances[0].ID, instances[0].Vector.Len())
		}
	}
	return nil
}
