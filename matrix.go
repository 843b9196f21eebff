package treekernel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

/*
Matrix is a symmetric kernel (Gram) matrix over the instances
of a dataset: the value at row i and column j is the kernel
value of instances i and j.

Distinct cells may be set concurrently.
*/
type Matrix struct {
	IDs    []string
	Labels []string
	values [][]float64
}

// NewMatrix takes the ids and labels of n instances and returns
// an n by n Matrix with all values set to 0.
func NewMatrix(ids, labels []string) *Matrix {
	values := make([][]float64, len(ids))
	for i := range values {
		values[i] = make([]float64, len(ids))
	}
	return &Matrix{IDs: ids, Labels: labels, values: values}
}

// Size returns the number of rows (and columns) of the matrix
func (m *Matrix) Size() int {
	return len(m.values)
}

// At returns the value at row i and column j
func (m *Matrix) At(i, j int) float64 {
	return m.values[i][j]
}

// Set sets v as the value at row i and column j
// and at row j and column i.
func (m *Matrix) Set(i, j int, v float64) {
	m.values[i][j] = v
	m.values[j][i] = v
}

// Row returns a copy of the values at row i
func (m *Matrix) Row(i int) []float64 {
	return append([]float64(nil), m.values[i]...)
}

/*
WriteLIBSVM takes an io.Writer and writes the matrix to it in
the precomputed kernel format of LIBSVM, one line per instance:

	<label> 0:<row number> 1:<K(row, 1)> ... <n>:<K(row, n)>

with 1-based row numbers. Instances without label get 0.
*/
func (m *Matrix) WriteLIBSVM(w io.Writer) error {
	for i, row := range m.values {
		label := m.Labels[i]
		if label == "" {
			label = "0"
		}
		_, err := fmt.Fprintf(w, "%s 0:%d", label, i+1)
		if err != nil {
			return err
		}
		for j, v := range row {
			_, err = fmt.Fprintf(w, " %d:%s", j+1, strconv.FormatFloat(v, 'g', -1, 64))
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintln(w)
		if err != nil {
			return err
		}
	}
	return nil
}

/*
WriteCSV takes an io.Writer and writes the matrix to it as CSV,
with a header row of instance ids and every row starting with
the id and label of its instance.
*/
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"id", "label"}, m.IDs...)
	err := cw.Write(header)
	if err != nil {
		return err
	}
	for i, row := range m.values {
		record := make([]string, 0, len(row)+2)
		record = append(record, m.IDs[i], m.Labels[i])
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		err = cw.Write(record)
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
