package dataset

import (
	"fmt"

	"github.com/pbanos/treekernel/feature"
)

/*
Instance is an item of a dataset: a tree feature vector
identified by an ID and with an optional label, such as
the class of the instance for a learner.
*/
type Instance struct {
	ID     string
	Label  string
	Vector *feature.TreeFeatureVector
}

func (in Instance) String() string {
	return fmt.Sprintf("[%s %s %v]", in.ID, in.Label, in.Vector)
}

/*
Find takes a slice of instances and an ID and returns
the instance with that ID and true, or false if none
has it.
*/
func Find(instances []Instance, id string) (Instance, bool) {
	for _, in := range instances {
		if in.ID == id {
			return in, true
		}
	}
	return Instance{}, false
}
