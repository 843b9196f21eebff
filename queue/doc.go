/*
Package queue defines the row tasks into which the computation of a
kernel matrix is split, as well as an interface for a Queue to manage
them.

It also provides an in-memory implementation of the Queue interface
that hands out pending rows lowest first.
*/
package queue
