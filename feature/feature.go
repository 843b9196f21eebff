/*
Package feature defines the tree feature vectors compared by
tree kernels: ordered collections of serialized trees, one
per comparison field.
*/
package feature

import (
	"fmt"
	"strings"
)

/*
Field is a named serialized tree in a TreeFeatureVector
*/
type Field struct {
	Name string
	Tree string
}

/*
TreeFeatureVector represents an ordered collection of fields,
each holding a serialized tree. Kernels compare vectors field
by field according to their position, so every vector passed
to a kernel should enumerate its fields in the same order.
*/
type TreeFeatureVector struct {
	fields []Field
}

/*
New takes any number of fields and returns a TreeFeatureVector
holding them in the given order.
*/
func New(fields ...Field) *TreeFeatureVector {
	fv := &TreeFeatureVector{}
	for _, f := range fields {
		fv.Add(f.Name, f.Tree)
	}
	return fv
}

/*
FromTrees takes serialized trees and returns a TreeFeatureVector
with one field per tree, named after its position.
*/
func FromTrees(trees ...string) *TreeFeatureVector {
	fv := &TreeFeatureVector{}
	for i, t := range trees {
		fv.Add(fmt.Sprintf("tree%d", i), t)
	}
	return fv
}

/*
Add appends a field with the given name and serialized tree
to the vector. If a field with the same name already exists
its tree is replaced and its position is kept.
*/
func (fv *TreeFeatureVector) Add(name, tree string) {
	for i, f := range fv.fields {
		if f.Name == name {
			fv.fields[i].Tree = tree
			return
		}
	}
	fv.fields = append(fv.fields, Field{name, tree})
}

/*
Len returns the number of fields in the vector
*/
func (fv *TreeFeatureVector) Len() int {
	return len(fv.fields)
}

/*
Fields returns a copy of the fields in the vector in order
*/
func (fv *TreeFeatureVector) Fields() []Field {
	return append([]Field(nil), fv.fields...)
}

/*
Trees returns the serialized trees of the vector in field order
*/
func (fv *TreeFeatureVector) Trees() []string {
	trees := make([]string, 0, len(fv.fields))
	for _, f := range fv.fields {
		trees = append(trees, f.Tree)
	}
	return trees
}

/*
Tree takes a field name and returns the serialized tree for
that field and whether the field exists
*/
func (fv *TreeFeatureVector) Tree(name string) (string, bool) {
	for _, f := range fv.fields {
		if f.Name == name {
			return f.Tree, true
		}
	}
	return "", false
}

func (fv *TreeFeatureVector) String() string {
	parts := make([]string, 0, len(fv.fields))
	for _, f := range fv.fields {
		parts = append(parts, fmt.Sprintf("%s:%s", f.Name, f.Tree))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, " "))
}
