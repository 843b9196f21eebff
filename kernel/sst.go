package kernel

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/pbanos/treekernel/cache"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree"
	"github.com/pbanos/treekernel/tree/ptb"
	"go.uber.org/zap"
)

/*
SubsetTreeKernel is a TreeKernel that counts the subtrees
two trees have in common, weighting each match with the
decay factor lambda raised to the size of the subtree.

Its cache of parsed trees and norms grows for the lifetime
of the kernel, so a kernel is meant to be used for one
kernel matrix and then discarded.
*/
type SubsetTreeKernel struct {
	lambda    float64
	normalize bool
	sumMethod ForestSumMethod
	cache     *cache.Cache
	logger    *zap.Logger
}

/*
NewSubsetTreeKernel takes a Config, a cache and a logger and
returns a SubsetTreeKernel or an error if the configuration
is invalid. A nil cache is replaced by a new one parsing trees
in Penn Treebank notation and keeping norms in memory. A nil
logger is replaced by a no-op one.

The configured SumMethod is not checked here: a kernel with a
method other than Sequential fails on every Evaluate call.
*/
func NewSubsetTreeKernel(cfg Config, c *cache.Cache, logger *zap.Logger) (*SubsetTreeKernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.New(ptb.Parser, nil, logger)
	}
	return &SubsetTreeKernel{
		lambda:    cfg.Lambda,
		normalize: cfg.Normalize,
		sumMethod: cfg.SumMethod,
		cache:     c,
		logger:    logger,
	}, nil
}

// Cache returns the cache of the kernel
func (k *SubsetTreeKernel) Cache() *cache.Cache {
	return k.cache
}

/*
Evaluate takes a context and two tree feature vectors and
returns the sum of the subset tree kernel values of their
fields paired by position.

It returns an error wrapping ErrUnsupportedConfiguration if
the kernel's SumMethod is not Sequential, one wrapping
ErrArityMismatch if the vectors have a different number of
fields, and the parse error for any malformed tree. The
context is checked before each field pair.
*/
func (k *SubsetTreeKernel) Evaluate(ctx context.Context, fv1, fv2 *feature.TreeFeatureVector) (float64, error) {
	if k.sumMethod != Sequential {
		return 0, fmt.Errorf("%w: the only forest sum method implemented is %v, not %v", ErrUnsupportedConfiguration, Sequential, k.sumMethod)
	}
	if fv1.Len() != fv2.Len() {
		return 0, fmt.Errorf("%w: %d and %d", ErrArityMismatch, fv1.Len(), fv2.Len())
	}
	trees1, trees2 := fv1.Trees(), fv2.Trees()
	var sim float64
	for i := range trees1 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fieldSim, err := k.sst(ctx, trees1[i], trees2[i])
		if err != nil {
			return 0, fmt.Errorf("evaluating field #%d: %w", i, err)
		}
		sim += fieldSim
	}
	return sim, nil
}

func (k *SubsetTreeKernel) sst(ctx context.Context, s1, s2 string) (float64, error) {
	t1, err := k.cache.Tree(ctx, s1)
	if err != nil {
		return 0, err
	}
	t2, err := k.cache.Tree(ctx, s2)
	if err != nil {
		return 0, err
	}
	sim := k.Similarity(t1, t2)
	if !k.normalize {
		return sim, nil
	}
	norm1, err := k.cache.Norm(ctx, k.NormKey(s1), t1, k.Similarity)
	if err != nil {
		return 0, err
	}
	norm2, err := k.cache.Norm(ctx, k.NormKey(s2), t2, k.Similarity)
	if err != nil {
		return 0, err
	}
	if norm1 == 0 || norm2 == 0 {
		k.logger.Debug("zero norm, field value set to 0", zap.String("tree1", s1), zap.String("tree2", s2))
		return 0, nil
	}
	return sim / math.Sqrt(norm1*norm2), nil
}

/*
NormKey returns the key under which the kernel keeps the norm of a
serialized tree in its cache. Norms depend on lambda, so the key is
qualified by it and kernels with different lambdas can share a
cache or a NormStore.
*/
func (k *SubsetTreeKernel) NormKey(serialized string) string {
	return strconv.FormatFloat(k.lambda, 'g', -1, 64) + " " + serialized
}

/*
Similarity takes two trees and returns the sum, for every
node n1 in the first and every node n2 in the second, of
the weighted number of common subtrees rooted at n1 and n2.
It is the unnormalized kernel value of the trees.
*/
func (k *SubsetTreeKernel) Similarity(t1, t2 *tree.Tree) float64 {
	m := newMemo(t1.Size(), t2.Size())
	var sim float64
	for _, n1 := range t1.Nodes() {
		for _, n2 := range t2.Nodes() {
			sim += k.commonSubtrees(n1, n2, m)
		}
	}
	return sim
}

// commonSubtrees returns the weighted number of subtrees
// rooted at both n1 and n2.
func (k *SubsetTreeKernel) commonSubtrees(n1, n2 *tree.Node, m *memo) float64 {
	if v, ok := m.get(n1, n2); ok {
		return v
	}
	var v float64
	switch {
	case len(n1.Children) != len(n2.Children):
	case n1.Label != n2.Label:
	case n1.IsLeaf():
		// both are preterminals with the same label
		if n1.Value == n2.Value {
			v = k.lambda
		}
	case n1.SameProduction(n2):
		v = 1.0
		for i, c1 := range n1.Children {
			v *= 1 + k.commonSubtrees(c1, n2.Children[i], m)
		}
		v *= k.lambda
	}
	m.set(n1, n2, v)
	return v
}

// maxMemoCells bounds the size of the table used to memoize
// node pair values, 32MiB. Larger tree pairs are compared
// without memoization.
const maxMemoCells = 1 << 22

// memo holds the values of commonSubtrees computed during
// one Similarity call, indexed by the nodes' preorder indexes.
// A nil memo memoizes nothing.
type memo struct {
	cols   int
	values []float64
}

func newMemo(rows, cols int) *memo {
	if rows*cols > maxMemoCells {
		return nil
	}
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = -1
	}
	return &memo{cols, values}
}

func (m *memo) get(n1, n2 *tree.Node) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v := m.values[n1.Index()*m.cols+n2.Index()]
	return v, v >= 0
}

func (m *memo) set(n1, n2 *tree.Node, v float64) {
	if m == nil {
		return
	}
	m.values[n1.Index()*m.cols+n2.Index()] = v
}
