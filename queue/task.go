package queue

import (
	"fmt"
	"strconv"
)

// Task represents a row of a kernel matrix
// to be computed.
type Task struct {
	// The index of the row, and of the instance
	// it compares against the rest
	Row int
}

// ID returns a string that identifies the
// task, its row index.
func (t *Task) ID() string {
	return strconv.Itoa(t.Row)
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task row %d}", t.Row)
}
