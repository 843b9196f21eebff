package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Queue represents a queue of the row tasks of a kernel
// matrix. Workers Pull a task, compute its row and then
// either Complete it or Drop it so another worker can
// retry it.
//
// All its methods have a context.Context as first
// parameter that implementations may use to allow
// timeouts and cancellations on the Queue operations.
type Queue interface {
	// Push takes a task and stores it in the queue or
	// returns an error. The task will count as pending.
	Push(context.Context, *Task) error
	// Pull returns a task, a context that is cancelled
	// when the queue stops and its cancel function, or
	// an error. The pulled task counts as running from
	// then on.
	// If there are no pending tasks, implementations
	// return 4 nil values.
	Pull(context.Context) (*Task, context.Context, context.CancelFunc, error)
	// Drop takes the ID of a running task and makes it
	// pending again. Dropping a task that is not running
	// does nothing.
	Drop(context.Context, string) error
	// Complete takes the ID of a task and removes it
	// from the running ones.
	Complete(context.Context, string) error
	// Count returns the number of pending and running
	// tasks in the queue, or an error.
	Count(context.Context) (int, int, error)
	// Stop cancels the contexts of pulled tasks and
	// frees the queue's resources.
	Stop(context.Context) error
}

// rowHeap holds pending tasks ordered by ascending row.
// ComputeRow evaluates row i against columns i to n-1,
// so lower rows are the costlier ones and start first.
type rowHeap []*Task

func (h rowHeap) Len() int           { return len(h) }
func (h rowHeap) Less(i, j int) bool { return h[i].Row < h[j].Row }
func (h rowHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rowHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *rowHeap) Pop() any {
	old := *h
	t := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return t
}

type memQueue struct {
	pending   rowHeap
	running   map[string]*Task
	lock      sync.RWMutex
	ctx       context.Context
	ctxCancel context.CancelFunc
}

// New returns a queue backed only by the process memory
// that hands out pending tasks lowest row first.
func New() Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &memQueue{
		running:   make(map[string]*Task),
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

// WaitFor takes a context and a queue and waits for
// all its tasks to have been processed, that is, for
// the given queue's Count method to return 0, 0, nil.
// It will return a non-nil error if the given context
// times out or is cancelled, or if the queue's Count
// operation returns an error.
func WaitFor(ctx context.Context, q Queue) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		pending, running, err := q.Count(ctx)
		if err != nil {
			return err
		}
		if pending+running == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	return withLock(ctx, mq.lock.Lock, mq.lock.Unlock, func() error {
		heap.Push(&mq.pending, t)
		return nil
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, context.Context, context.CancelFunc, error) {
	var task *Task
	err := withLock(ctx, mq.lock.Lock, mq.lock.Unlock, func() error {
		if mq.pending.Len() == 0 {
			return nil
		}
		task = heap.Pop(&mq.pending).(*Task)
		mq.running[task.ID()] = task
		return nil
	})
	if err != nil || task == nil {
		return nil, nil, nil, err
	}
	tctx, tcf := context.WithCancel(mq.ctx)
	return task, tctx, tcf, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	return withLock(ctx, mq.lock.Lock, mq.lock.Unlock, func() error {
		t, ok := mq.running[id]
		if !ok {
			return nil
		}
		delete(mq.running, id)
		heap.Push(&mq.pending, t)
		return nil
	})
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	return withLock(ctx, mq.lock.Lock, mq.lock.Unlock, func() error {
		delete(mq.running, id)
		return nil
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, running int
	err := withLock(ctx, mq.lock.RLock, mq.lock.RUnlock, func() error {
		pending = mq.pending.Len()
		running = len(mq.running)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return pending, running, nil
}

func (mq *memQueue) Stop(ctx context.Context) error {
	mq.ctxCancel()
	return nil
}

// withLock runs f holding the lock acquired by lock, or
// returns the context's error if it is done first.
func withLock(ctx context.Context, lock, unlock func(), f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		lock()
		select {
		case <-ctx.Done():
			unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer unlock()
	}
	return f()
}
