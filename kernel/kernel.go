/*
Package kernel defines tree kernels, similarity functions between
tree feature vectors used to fill kernel matrices for kernel-based
learners, and provides the subset tree kernel of Collins and Duffy.
*/
package kernel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pbanos/treekernel/feature"
)

// DefaultLambda is the decay factor used when none is configured
const DefaultLambda = 0.4

var (
	// ErrUnsupportedConfiguration is returned when evaluating a kernel
	// configured with a ForestSumMethod it does not implement
	ErrUnsupportedConfiguration = errors.New("unsupported kernel configuration")
	// ErrArityMismatch is returned when evaluating two vectors with a
	// different number of fields
	ErrArityMismatch = errors.New("tree feature vectors have different number of fields")
	// ErrInvalidLambda is returned for decay factors out of (0, 1]
	ErrInvalidLambda = errors.New("lambda must be in (0, 1]")
)

/*
TreeKernel is the interface for structural similarity
functions between tree feature vectors.

Evaluate takes a context and two vectors and returns their
similarity or an error. Implementations must be safe for
concurrent use, as kernel matrices are filled by several
workers sharing one kernel.
*/
type TreeKernel interface {
	Evaluate(ctx context.Context, fv1, fv2 *feature.TreeFeatureVector) (float64, error)
}

/*
ForestSumMethod determines how the per-field kernel values
of two vectors are combined into one.
*/
type ForestSumMethod int

const (
	// Sequential pairs fields by position and sums their values
	Sequential ForestSumMethod = iota
	// AllPairs sums the values of every field of one vector
	// against every field of the other. It is not implemented.
	AllPairs
)

var sumMethodNames = map[ForestSumMethod]string{
	Sequential: "sequential",
	AllPairs:   "all-pairs",
}

func (fsm ForestSumMethod) String() string {
	if name, ok := sumMethodNames[fsm]; ok {
		return name
	}
	return fmt.Sprintf("ForestSumMethod(%d)", int(fsm))
}

// ParseForestSumMethod takes the name of a ForestSumMethod
// and returns it or an error if the name is unknown.
func ParseForestSumMethod(s string) (ForestSumMethod, error) {
	for fsm, name := range sumMethodNames {
		if strings.EqualFold(s, name) {
			return fsm, nil
		}
	}
	return 0, fmt.Errorf("unknown forest sum method %q", s)
}

/*
Config holds the parameters of a tree kernel
*/
type Config struct {
	// Decay factor in (0, 1] that discounts larger
	// matching subtrees
	Lambda float64
	// Whether to divide each field's value by the
	// geometric mean of the fields' self-similarities
	Normalize bool
	// How to combine the values of the fields
	SumMethod ForestSumMethod
}

// DefaultConfig returns the configuration with DefaultLambda,
// no normalization and Sequential field combination.
func DefaultConfig() Config {
	return Config{Lambda: DefaultLambda, SumMethod: Sequential}
}

// Validate returns an error if the configuration cannot
// be used to build a kernel.
func (c Config) Validate() error {
	if !(c.Lambda > 0 && c.Lambda <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidLambda, c.Lambda)
	}
	return nil
}
