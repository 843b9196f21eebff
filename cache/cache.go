/*
Package cache memoizes the parsing of serialized trees and
their self-similarity norms across kernel evaluations.

A Cache is safe for concurrent use by multiple goroutines. A
given serialized tree is parsed at most once and its norm is
computed at most once per Cache: concurrent first requests for
the same key wait for the goroutine that got there first and
share its result. Failed parses are never stored.
*/
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pbanos/treekernel/tree"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SelfSimilarity is a function returning the kernel value
// of two trees, used to compute a tree's norm from itself.
type SelfSimilarity func(t1, t2 *tree.Tree) float64

// Stats holds counters on the use of a Cache
type Stats struct {
	// Number of times a serialized tree was parsed
	Parses uint64
	// Number of failed parses
	ParseFailures uint64
	// Number of tree requests served from the cache
	TreeHits uint64
	// Number of norms computed
	NormComputations uint64
	// Number of norm requests served from the cache
	NormHits uint64
	// Number of trees held by the cache
	Trees int
}

/*
Cache holds the trees parsed from serialized trees
and the norms computed for them.
*/
type Cache struct {
	parser tree.Parser
	norms  NormStore
	logger *zap.Logger

	lock  sync.RWMutex
	trees map[string]*tree.Tree

	parseGroup singleflight.Group
	normGroup  singleflight.Group

	parses, parseFailures, treeHits atomic.Uint64
	normComputations, normHits      atomic.Uint64
}

/*
New takes a tree.Parser, a NormStore and a logger and returns
an empty Cache that parses trees with the parser and keeps
norms on the store. A nil store is replaced by a memory one,
and a nil logger by a no-op one.
*/
func New(parser tree.Parser, norms NormStore, logger *zap.Logger) *Cache {
	if norms == nil {
		norms = NewMemoryNormStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		parser: parser,
		norms:  norms,
		logger: logger,
		trees:  make(map[string]*tree.Tree),
	}
}

/*
Tree takes a context and a serialized tree and returns the
tree.Tree parsed from it, parsing it only if it has not been
parsed before. It returns the parser's error if the serialized
tree is malformed, or the context error if it expires while
waiting for a concurrent parse of the same tree.
*/
func (c *Cache) Tree(ctx context.Context, serialized string) (*tree.Tree, error) {
	if t, ok := c.lookup(serialized); ok {
		c.treeHits.Add(1)
		return t, nil
	}
	ch := c.parseGroup.DoChan(serialized, func() (interface{}, error) {
		if t, ok := c.lookup(serialized); ok {
			return t, nil
		}
		c.parses.Add(1)
		t, err := c.parser.Parse(serialized)
		if err != nil {
			c.parseFailures.Add(1)
			return nil, err
		}
		c.lock.Lock()
		c.trees[serialized] = t
		c.lock.Unlock()
		c.logger.Debug("parsed tree", zap.String("tree", serialized), zap.Int("nodes", t.Size()))
		return t, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("parsing tree: %w", res.Err)
		}
		return res.Val.(*tree.Tree), nil
	}
}

/*
Norm takes a context, a key identifying the norm of a tree, the
tree.Tree and a SelfSimilarity function and returns the norm of
the tree, that is, selfSim(t, t). The norm is computed only if
none is held by the cache's NormStore under the key. Kernels put
their parameters in the key, so that kernels sharing a NormStore
do not share norms computed with different parameters.
It returns an error if the NormStore fails or the context
expires.
*/
func (c *Cache) Norm(ctx context.Context, key string, t *tree.Tree, selfSim SelfSimilarity) (float64, error) {
	norm, ok, err := c.norms.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("retrieving norm: %w", err)
	}
	if ok {
		c.normHits.Add(1)
		return norm, nil
	}
	sctx := context.WithoutCancel(ctx)
	ch := c.normGroup.DoChan(key, func() (interface{}, error) {
		norm, ok, err := c.norms.Get(sctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return norm, nil
		}
		c.normComputations.Add(1)
		norm = selfSim(t, t)
		c.logger.Debug("computed norm", zap.String("key", key), zap.Float64("norm", norm))
		return c.norms.SetIfAbsent(sctx, key, norm)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, fmt.Errorf("storing norm: %w", res.Err)
		}
		return res.Val.(float64), nil
	}
}

// Stats returns the current counters of the cache.
func (c *Cache) Stats() Stats {
	c.lock.RLock()
	l := len(c.trees)
	c.lock.RUnlock()
	return Stats{
		Parses:           c.parses.Load(),
		ParseFailures:    c.parseFailures.Load(),
		TreeHits:         c.treeHits.Load(),
		NormComputations: c.normComputations.Load(),
		NormHits:         c.normHits.Load(),
		Trees:            l,
	}
}

// Close closes the cache's NormStore.
func (c *Cache) Close(ctx context.Context) error {
	return c.norms.Close(ctx)
}

func (c *Cache) lookup(serialized string) (*tree.Tree, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	t, ok := c.trees[serialized]
	return t, ok
}
