package sqldataset

import (
	"context"

	"github.com/pbanos/treekernel/dataset"
)

/*
Dataset is a dataset.Dataset to which instances can be added
*/
type Dataset interface {
	dataset.Dataset
	dataset.Writer
	Close() error
}

type sqlDataset struct {
	db Adapter
}

/*
Open takes a context and an Adapter to a db backend and returns
a Dataset backed by the given adapter.

This function expects the adapter to have the dataset tables
already created.
*/
func Open(ctx context.Context, dbAdapter Adapter) (Dataset, error) {
	ds := &sqlDataset{dbAdapter}
	_, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

/*
Create takes a context and an Adapter and returns a Dataset
backed by the given adapter or an error.

This function will ensure that the dataset tables are created
on the database.
*/
func Create(ctx context.Context, dbAdapter Adapter) (Dataset, error) {
	err := dbAdapter.CreateTables(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlDataset{dbAdapter}, nil
}

func (ds *sqlDataset) Count(ctx context.Context) (int, error) {
	return ds.db.CountInstances(ctx)
}

func (ds *sqlDataset) Instances(ctx context.Context) ([]dataset.Instance, error) {
	return ds.db.ListInstances(ctx)
}

func (ds *sqlDataset) Write(ctx context.Context, instances []dataset.Instance) (int, error) {
	return ds.db.AddInstances(ctx, instances)
}

func (ds *sqlDataset) Close() error {
	return ds.db.Close()
}
