package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pbanos/treekernel/cache"
	"github.com/pbanos/treekernel/feature"
	"github.com/pbanos/treekernel/tree"
	"github.com/pbanos/treekernel/tree/ptb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const tolerance = 1e-9

var sampleTrees = []string{
	"(NN dog)",
	"(NP (DT the) (NN dog))",
	"(NP (DT a) (NN dog))",
	"(NP (DT the) (NNS dogs))",
	"(S (NP (DT the) (NN dog)) (VP (VBZ barks)))",
	"(S (NP (DT the) (NN cat)) (VP (VBZ sleeps) (PP (IN on) (NP (DT the) (NN mat)))))",
	"(S (NP (NP (DT the) (NN dog)) (PP (IN with) (NP (DT a) (NN bone)))) (VP (VBZ barks)))",
	"( (S (NP (PRP it)) (VP (VBZ rains)) (. .)) )",
}

func newKernel(t *testing.T, cfg Config) *SubsetTreeKernel {
	k, err := NewSubsetTreeKernel(cfg, nil, nil)
	require.NoError(t, err)
	return k
}

func parse(t *testing.T, s string) *tree.Tree {
	tr, err := ptb.Parse(s)
	require.NoError(t, err)
	return tr
}

// naiveCommonSubtrees computes the common subtree count without memoization.
func naiveCommonSubtrees(lambda float64, n1, n2 *tree.Node) float64 {
	if len(n1.Children) != len(n2.Children) || n1.Label != n2.Label {
		return 0
	}
	if n1.IsLeaf() {
		if n1.Value == n2.Value {
			return lambda
		}
		return 0
	}
	if !n1.SameProduction(n2) {
		return 0
	}
	v := 1.0
	for i := range n1.Children {
		v *= 1 + naiveCommonSubtrees(lambda, n1.Children[i], n2.Children[i])
	}
	return lambda * v
}

func TestSimilarityOfIdenticalLeaves(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	assert.InDelta(t, 0.4, k.Similarity(parse(t, "(NN dog)"), parse(t, "(NN dog)")), tolerance)
}

func TestSimilarityOfLeavesWithDifferentWords(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	assert.Equal(t, 0.0, k.Similarity(parse(t, "(NN dog)"), parse(t, "(NN cat)")))
	assert.Equal(t, 0.0, k.Similarity(parse(t, "(NN dog)"), parse(t, "(VB dog)")))
}

func TestSimilarityOfSmallPhrase(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	np := parse(t, "(NP (DT the) (NN dog))")
	// C(NP,NP) = 0.4*(1+0.4)*(1+0.4), C(DT,DT) = C(NN,NN) = 0.4
	assert.InDelta(t, 0.784+0.8, k.Similarity(np, np), tolerance)
}

func TestProductionMismatchShortCircuits(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	t1 := parse(t, "(NP (DT the) (NN dog))")
	t2 := parse(t, "(NP (DT the) (NNS dog))")
	assert.Equal(t, 0.0, k.commonSubtrees(t1.Root, t2.Root, newMemo(t1.Size(), t2.Size())))
	// only the (DT the) pair matches
	assert.InDelta(t, 0.4, k.Similarity(t1, t2), tolerance)
}

func TestSimilarityIsSymmetric(t *testing.T) {
	k := newKernel(t, Config{Lambda: 0.7})
	for _, s1 := range sampleTrees {
		for _, s2 := range sampleTrees {
			t1, t2 := parse(t, s1), parse(t, s2)
			assert.InDelta(t, k.Similarity(t1, t2), k.Similarity(t2, t1), tolerance, "%s vs %s", s1, s2)
		}
	}
}

func TestSelfSimilarityIsPositive(t *testing.T) {
	for _, lambda := range []float64{0.01, 0.4, 1} {
		k := newKernel(t, Config{Lambda: lambda})
		for _, s := range sampleTrees {
			tr := parse(t, s)
			assert.Greater(t, k.Similarity(tr, tr), 0.0, "%s with lambda %v", s, lambda)
		}
	}
}

func TestMemoizationDoesNotChangeValues(t *testing.T) {
	lambda := 0.5
	k := newKernel(t, Config{Lambda: lambda})
	for _, s1 := range sampleTrees {
		for _, s2 := range sampleTrees {
			t1, t2 := parse(t, s1), parse(t, s2)
			var expected float64
			for _, n1 := range t1.Nodes() {
				for _, n2 := range t2.Nodes() {
					expected += naiveCommonSubtrees(lambda, n1, n2)
				}
			}
			assert.InDelta(t, expected, k.Similarity(t1, t2), tolerance, "%s vs %s", s1, s2)
		}
	}
}

func TestEvaluateSumsFieldsSequentially(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	fv1 := feature.FromTrees("(NN dog)", "(NP (DT the) (NN dog))")
	fv2 := feature.FromTrees("(NN dog)", "(NP (DT the) (NN dog))")
	v, err := k.Evaluate(context.Background(), fv1, fv2)
	require.NoError(t, err)
	assert.InDelta(t, 0.4+1.584, v, tolerance)
}

func TestEvaluateNormalizedSelfSimilarityIsOnePerField(t *testing.T) {
	k := newKernel(t, Config{Lambda: 0.4, Normalize: true})
	for _, s := range sampleTrees {
		v, err := k.Evaluate(context.Background(), feature.FromTrees(s), feature.FromTrees(s))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, tolerance, s)
	}
	fv := feature.FromTrees(sampleTrees...)
	v, err := k.Evaluate(context.Background(), fv, fv)
	require.NoError(t, err)
	assert.InDelta(t, float64(len(sampleTrees)), v, 1e-6)
}

func TestEvaluateNormalizedIsBounded(t *testing.T) {
	k := newKernel(t, Config{Lambda: 0.4, Normalize: true})
	for _, s1 := range sampleTrees {
		for _, s2 := range sampleTrees {
			v, err := k.Evaluate(context.Background(), feature.FromTrees(s1), feature.FromTrees(s2))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0+tolerance)
		}
	}
}

func TestEvaluateZeroNormYieldsZero(t *testing.T) {
	ctx := context.Background()
	norms := cache.NewMemoryNormStore()
	k, err := NewSubsetTreeKernel(Config{Lambda: 0.4, Normalize: true}, cache.New(ptb.Parser, norms, nil), nil)
	require.NoError(t, err)
	_, err = norms.SetIfAbsent(ctx, k.NormKey("(NN dog)"), 0)
	require.NoError(t, err)

	v, err := k.Evaluate(ctx, feature.FromTrees("(NN dog)"), feature.FromTrees("(NN dog)"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestKernelsWithDifferentLambdasShareNorms(t *testing.T) {
	ctx := context.Background()
	norms := cache.NewMemoryNormStore()
	fv := feature.FromTrees(sampleTrees[4])
	for _, lambda := range []float64{0.4, 0.9, 0.4, 1} {
		// a cache per kernel, all of them over the same store
		k, err := NewSubsetTreeKernel(Config{Lambda: lambda, Normalize: true}, cache.New(ptb.Parser, norms, nil), nil)
		require.NoError(t, err)
		v, err := k.Evaluate(ctx, fv, fv)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, tolerance, "lambda %v", lambda)
	}
	l, err := norms.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, l)

	shared := cache.New(ptb.Parser, nil, nil)
	k1, err := NewSubsetTreeKernel(Config{Lambda: 0.4, Normalize: true}, shared, nil)
	require.NoError(t, err)
	k2, err := NewSubsetTreeKernel(Config{Lambda: 0.9, Normalize: true}, shared, nil)
	require.NoError(t, err)
	for _, k := range []*SubsetTreeKernel{k1, k2, k1} {
		v, err := k.Evaluate(ctx, fv, fv)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, tolerance)
	}
	assert.NotEqual(t, k1.NormKey(sampleTrees[4]), k2.NormKey(sampleTrees[4]))
}

func TestEvaluateUnsupportedSumMethod(t *testing.T) {
	cp := &countingParser{}
	k, err := NewSubsetTreeKernel(Config{Lambda: 0.4, SumMethod: AllPairs}, cache.New(cp, nil, nil), nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := k.Evaluate(context.Background(), feature.FromTrees("(NN dog)"), feature.FromTrees("(NN dog)", "(NN cat)"))
		assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
	}
	assert.EqualValues(t, 0, cp.calls.Load())
}

func TestEvaluateArityMismatch(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	_, err := k.Evaluate(context.Background(), feature.FromTrees("(NN dog)"), feature.FromTrees("(NN dog)", "(NN cat)"))
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestEvaluatePropagatesParseErrors(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	_, err := k.Evaluate(context.Background(), feature.FromTrees("(NN dog"), feature.FromTrees("(NN dog)"))
	var pe *ptb.ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, "(NN dog", pe.Input)
	assert.Equal(t, 0, k.Cache().Stats().Trees)
}

func TestEvaluateHonoursContext(t *testing.T) {
	k := newKernel(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := k.Evaluate(ctx, feature.FromTrees("(NN dog)"), feature.FromTrees("(NN dog)"))
	assert.ErrorIs(t, err, context.Canceled)
}

type countingParser struct {
	calls atomic.Int64
}

func (cp *countingParser) Parse(s string) (*tree.Tree, error) {
	cp.calls.Add(1)
	return ptb.Parse(s)
}

func TestEvaluateDoesNotReparse(t *testing.T) {
	cp := &countingParser{}
	k, err := NewSubsetTreeKernel(Config{Lambda: 0.4, Normalize: true}, cache.New(cp, nil, nil), nil)
	require.NoError(t, err)
	fv1 := feature.FromTrees(sampleTrees[4])
	fv2 := feature.FromTrees(sampleTrees[6])

	v1, err := k.Evaluate(context.Background(), fv1, fv2)
	require.NoError(t, err)
	v2, err := k.Evaluate(context.Background(), fv1, fv2)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.EqualValues(t, 2, cp.calls.Load())
	assert.EqualValues(t, 2, k.Cache().Stats().NormComputations)
}

func TestEvaluateConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)
	cp := &countingParser{}
	k, err := NewSubsetTreeKernel(Config{Lambda: 0.4, Normalize: true}, cache.New(cp, nil, nil), nil)
	require.NoError(t, err)
	reference := newKernel(t, Config{Lambda: 0.4, Normalize: true})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range sampleTrees {
				for j := range sampleTrees {
					fv1 := feature.FromTrees(sampleTrees[(i+w)%len(sampleTrees)])
					fv2 := feature.FromTrees(sampleTrees[j])
					v, err := k.Evaluate(context.Background(), fv1, fv2)
					if !assert.NoError(t, err) {
						return
					}
					expected, err := reference.Evaluate(context.Background(), fv1, fv2)
					if !assert.NoError(t, err) {
						return
					}
					assert.InDelta(t, expected, v, tolerance, fmt.Sprintf("%v vs %v", fv1, fv2))
				}
			}
		}(w)
	}
	wg.Wait()
	assert.EqualValues(t, len(sampleTrees), cp.calls.Load())
	assert.EqualValues(t, len(sampleTrees), k.Cache().Stats().NormComputations)
}
