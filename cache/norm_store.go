package cache

import (
	"context"
	"sync"
)

/*
NormStore is an interface to manage a store of
self-similarity norms indexed by serialized tree.

All it methods take a context that may allow
cancelling the operation (thus forcing the return
of an error) if the implementation allows it.
*/
type NormStore interface {
	// Get takes a serialized tree and returns the norm
	// stored for it and true, false if none is stored,
	// or an error if the store cannot be queried.
	Get(ctx context.Context, key string) (float64, bool, error)
	// SetIfAbsent takes a serialized tree and a norm and
	// stores the norm unless one is already stored for the
	// tree. It returns the norm held by the store after the
	// operation, that is, the first one written, or an error
	// if the store cannot be updated.
	SetIfAbsent(ctx context.Context, key string, norm float64) (float64, error)
	// Len returns the number of norms in the store or an
	// error if the store cannot be queried.
	Len(ctx context.Context) (int, error)
	// Close closes the store, implementations should
	// free any resources in use before returning
	// (unless the context expires).
	Close(ctx context.Context) error
}

type memoryNormStore struct {
	norms map[string]float64
	lock  *sync.RWMutex
}

// NewMemoryNormStore returns an implementation
// of NormStore with the process memory space
// as underlying backend
func NewMemoryNormStore() NormStore {
	return &memoryNormStore{
		norms: make(map[string]float64),
		lock:  &sync.RWMutex{},
	}
}

func (mns *memoryNormStore) Get(ctx context.Context, key string) (float64, bool, error) {
	var norm float64
	var ok bool
	err := mns.withRLock(ctx, func(ctx context.Context) error {
		norm, ok = mns.norms[key]
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return norm, ok, nil
}

func (mns *memoryNormStore) SetIfAbsent(ctx context.Context, key string, norm float64) (float64, error) {
	err := mns.withLock(ctx, func(ctx context.Context) error {
		if stored, ok := mns.norms[key]; ok {
			norm = stored
			return nil
		}
		mns.norms[key] = norm
		return nil
	})
	if err != nil {
		return 0, err
	}
	return norm, nil
}

func (mns *memoryNormStore) Len(ctx context.Context) (int, error) {
	var l int
	err := mns.withRLock(ctx, func(ctx context.Context) error {
		l = len(mns.norms)
		return nil
	})
	return l, err
}

func (mns *memoryNormStore) Close(ctx context.Context) error {
	return nil
}

func (mns *memoryNormStore) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		mns.lock.Lock()
		select {
		case <-ctx.Done():
			mns.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mns.lock.Unlock()
	}
	return f(ctx)
}

func (mns *memoryNormStore) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		mns.lock.RLock()
		select {
		case <-ctx.Done():
			mns.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mns.lock.RUnlock()
	}
	return f(ctx)
}
