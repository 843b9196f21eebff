/*
Package sqldataset provides implementations of dataset.Dataset
that use SQL databases as backends.

The dataset uses 2 database tables:
  - instances, with the id, label and position of every instance
  - trees, with the fields of every instance's tree feature vector
    along their position in the vector

Instances are listed in the order they were written, and their
fields in the order they have in their vectors.
*/
package sqldataset
