package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pbanos/treekernel/dataset"
	csvdataset "github.com/pbanos/treekernel/dataset/csv"
	jsondataset "github.com/pbanos/treekernel/dataset/json"
	"github.com/pbanos/treekernel/dataset/mongodataset"
	"github.com/pbanos/treekernel/dataset/sqldataset"
	"github.com/pbanos/treekernel/dataset/sqldataset/pgadapter"
	"github.com/pbanos/treekernel/dataset/sqldataset/sqlite3adapter"
	yamldataset "github.com/pbanos/treekernel/dataset/yaml"
	mgo "gopkg.in/mgo.v2"
)

const datasetLocationHelp = "a YML file, a CSV (.csv), JSON (.json) or SQLite3 (.db) file, a PostgreSQL DB connection URL or a MongoDB connection URL"

type closeFunc func() error

func noClose() error {
	return nil
}

// OpenDataset takes a context, the location of a dataset and a limit
// to the DB connections to open and returns the dataset found there
// along a function to release the resources it holds. An empty
// location means a YML dataset on STDIN.
func (rcc *rootCmdConfig) OpenDataset(ctx context.Context, location string, maxDBConns int) (dataset.Dataset, closeFunc, error) {
	switch {
	case strings.HasPrefix(location, "postgresql://"):
		rcc.Logf("Creating PostgreSQL adapter for url %s to read dataset...", location)
		adapter, err := pgadapter.New(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return rcc.openSQLDataset(ctx, adapter)
	case strings.HasSuffix(location, ".db"):
		rcc.Logf("Creating SQLite3 adapter for file %s to read dataset...", location)
		adapter, err := sqlite3adapter.New(ctx, location, maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		return rcc.openSQLDataset(ctx, adapter)
	case strings.HasPrefix(location, "mongodb://"):
		return rcc.openMongoDataset(ctx, location)
	}
	var r io.Reader
	if location == "" {
		rcc.Logf("Reading dataset from STDIN...")
		r = os.Stdin
	} else {
		rcc.Logf("Opening %s to read dataset...", location)
		f, err := os.Open(location)
		if err != nil {
			return nil, nil, fmt.Errorf("opening dataset at %s: %v", location, err)
		}
		defer f.Close()
		r = f
	}
	var ds dataset.Dataset
	var err error
	switch {
	case strings.HasSuffix(location, ".csv"):
		ds, err = csvdataset.ReadDataset(r)
	case strings.HasSuffix(location, ".json"):
		ds, err = jsondataset.ReadDataset(r)
	default:
		ds, err = yamldataset.ReadDatasetFrom(r)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset: %v", err)
	}
	return ds, noClose, nil
}

func (rcc *rootCmdConfig) openSQLDataset(ctx context.Context, adapter sqldataset.Adapter) (dataset.Dataset, closeFunc, error) {
	ds, err := sqldataset.Open(ctx, adapter)
	if err != nil {
		adapter.Close()
		return nil, nil, fmt.Errorf("opening dataset: %v", err)
	}
	return ds, ds.Close, nil
}

func (rcc *rootCmdConfig) openMongoDataset(ctx context.Context, url string) (mongodataset.Dataset, closeFunc, error) {
	rcc.Logf("Connecting to MongoDB at %s...", url)
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MongoDB: %v", err)
	}
	ds, err := mongodataset.Open(ctx, session)
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("opening dataset: %v", err)
	}
	return ds, func() error {
		session.Close()
		return nil
	}, nil
}

// WriteDataset takes a context, the location of a dataset, a limit to
// the DB connections to open and some instances and writes the instances
// to the dataset at the location, creating it if needed. An empty
// location means a YML dataset on STDOUT.
func (rcc *rootCmdConfig) WriteDataset(ctx context.Context, location string, maxDBConns int, instances []dataset.Instance) error {
	var w dataset.Writer
	var closer closeFunc
	switch {
	case strings.HasPrefix(location, "postgresql://"):
		rcc.Logf("Creating PostgreSQL adapter for url %s to dump dataset...", location)
		adapter, err := pgadapter.New(ctx, location)
		if err != nil {
			return err
		}
		ds, err := sqldataset.Create(ctx, adapter)
		if err != nil {
			adapter.Close()
			return fmt.Errorf("creating dataset: %v", err)
		}
		w, closer = ds, ds.Close
	case strings.HasSuffix(location, ".db"):
		rcc.Logf("Creating SQLite3 adapter for file %s to dump dataset...", location)
		adapter, err := sqlite3adapter.New(ctx, location, maxDBConns)
		if err != nil {
			return err
		}
		ds, err := sqldataset.Create(ctx, adapter)
		if err != nil {
			adapter.Close()
			return fmt.Errorf("creating dataset: %v", err)
		}
		w, closer = ds, ds.Close
	case strings.HasPrefix(location, "mongodb://"):
		ds, c, err := rcc.openMongoDataset(ctx, location)
		if err != nil {
			return err
		}
		w, closer = ds, c
	default:
		return rcc.writeDatasetFile(ctx, location, instances)
	}
	defer closer()
	n, err := w.Write(ctx, instances)
	if err != nil {
		return fmt.Errorf("writing dataset: %d of %d instances written: %v", n, len(instances), err)
	}
	return nil
}

func (rcc *rootCmdConfig) writeDatasetFile(ctx context.Context, location string, instances []dataset.Instance) error {
	write := func(w io.Writer) error {
		return yamldataset.WriteDataset(ctx, w, dataset.New(instances))
	}
	switch {
	case strings.HasSuffix(location, ".csv"):
		write = func(w io.Writer) error {
			return writeCSVDataset(ctx, w, instances)
		}
	case strings.HasSuffix(location, ".json"):
		write = func(w io.Writer) error {
			return jsondataset.WriteDataset(ctx, w, dataset.New(instances))
		}
	}
	if location == "" {
		rcc.Logf("Using STDOUT to dump dataset...")
		return write(os.Stdout)
	}
	rcc.Logf("Creating %s to dump dataset...", location)
	return writeFile(location, write)
}

// writeFile creates the file at path, writes it with write and
// closes it, returning the first error found.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	cerr := f.Close()
	if err != nil {
		return err
	}
	return cerr
}

func writeCSVDataset(ctx context.Context, f io.Writer, instances []dataset.Instance) error {
	var fields []string
	if len(instances) > 0 {
		for _, field := range instances[0].Vector.Fields() {
			fields = append(fields, field.Name)
		}
	}
	w, err := csvdataset.NewWriter(f, fields)
	if err != nil {
		return err
	}
	_, err = w.Write(ctx, instances)
	if err != nil {
		return err
	}
	return w.Flush()
}
