/*
Package mongodataset provides a implementation of dataset.Dataset
that uses a MongoDB database as backend.

Instances are kept as documents of the instances collection of
the session's default database, with the shape

	{_id: "s1", label: "+1", position: 0,
	 trees: [{name: "parse", tree: "(S (NN dogs))"}]}
*/
package mongodataset

import (
	"context"
	"fmt"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

/*
Dataset is a dataset.Dataset to which instances can be added
and from which instances can be sequentially read
*/
type Dataset interface {
	dataset.Dataset
	dataset.Writer
	Read(context.Context) (<-chan dataset.Instance, <-chan error)
}

type mongodataset struct {
	session *mgo.Session
}

type document struct {
	ID       string  `bson:"_id"`
	Label    string  `bson:"label,omitempty"`
	Position int     `bson:"position"`
	Trees    []field `bson:"trees"`
}

type field struct {
	Name string `bson:"name"`
	Tree string `bson:"tree"`
}

const (
	instancesCollectionName = "instances"
)

/*
Open takes a context and a MongoDB database session and returns a
Dataset that works on the default database for that session or an
error if it fails to prepare the instances collection.
*/
func Open(ctx context.Context, session *mgo.Session) (Dataset, error) {
	mds := &mongodataset{session}
	err := mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

func (mds *mongodataset) Count(context.Context) (int, error) {
	return mds.instancesCollection().Count()
}

func (mds *mongodataset) Instances(ctx context.Context) ([]dataset.Instance, error) {
	var instances []dataset.Instance
	count, err := mds.Count(ctx)
	if err == nil {
		instances = make([]dataset.Instance, 0, count)
	}
	instanceChan, errs := mds.Read(ctx)
	for in := range instanceChan {
		instances = append(instances, in)
	}
	err = <-errs
	return instances, err
}

func (mds *mongodataset) Write(ctx context.Context, instances []dataset.Instance) (int, error) {
	if len(instances) == 0 {
		return 0, nil
	}
	position, err := mds.nextPosition()
	if err != nil {
		return 0, err
	}
	docs := make([]interface{}, 0, len(instances))
	for i, in := range instances {
		doc := &document{ID: in.ID, Label: in.Label, Position: position + i, Trees: []field{}}
		for _, f := range in.Vector.Fields() {
			doc.Trees = append(doc.Trees, field{f.Name, f.Tree})
		}
		docs = append(docs, doc)
	}
	err = mds.instancesCollection().Insert(docs...)
	if err != nil {
		return 0, fmt.Errorf("inserting instances: %v", err)
	}
	return len(instances), nil
}

func (mds *mongodataset) Read(ctx context.Context) (<-chan dataset.Instance, <-chan error) {
	instances := make(chan dataset.Instance)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(instances)
		var doc document
		iter := mds.instancesCollection().Find(nil).Sort("position").Iter()
		defer iter.Close()
		for iter.Next(&doc) {
			fv := &feature.TreeFeatureVector{}
			for _, f := range doc.Trees {
				fv.Add(f.Name, f.Tree)
			}
			in := dataset.Instance{ID: doc.ID, Label: doc.Label, Vector: fv}
			doc = document{}
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case instances <- in:
			}
		}
		if err := iter.Err(); err != nil {
			errs <- fmt.Errorf("reading instances: %v", err)
		}
	}()
	return instances, errs
}

func (mds *mongodataset) nextPosition() (int, error) {
	var last document
	err := mds.instancesCollection().Find(nil).Sort("-position").Select(bson.M{"position": 1}).One(&last)
	if err == mgo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying last instance position: %v", err)
	}
	return last.Position + 1, nil
}

func (mds *mongodataset) ensureIndexes() error {
	index := mgo.Index{
		Key:        []string{"position"},
		Background: true,
	}
	return mds.instancesCollection().EnsureIndex(index)
}

func (mds *mongodataset) instancesCollection() *mgo.Collection {
	return mds.session.DB("").C(instancesCollectionName)
}
