/*
Package treekernel computes kernel matrices over datasets of tree
feature vectors, to be consumed by kernel-based learners.

The kernels themselves live in the kernel package. This package
splits the computation of a matrix into one task per row, pushed
to a queue.Queue and consumed by concurrent workers sharing one
kernel and its caches.
*/
package treekernel

import (
	"context"
	"fmt"
	"time"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/kernel"
	"github.com/pbanos/treekernel/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultEmptyQueueSleep is the time workers wait before pulling
// again from a queue that is empty but has running tasks.
const DefaultEmptyQueueSleep = 10 * time.Millisecond

// Seed takes a context, a queue and the number of rows of a
// matrix and pushes a task for every row to the queue. It
// returns an error if a task cannot be pushed.
func Seed(ctx context.Context, q queue.Queue, rows int) error {
	for i := 0; i < rows; i++ {
		err := q.Push(ctx, &queue.Task{Row: i})
		if err != nil {
			return fmt.Errorf("seeding row %d: %w", i, err)
		}
	}
	return nil
}

// ComputeRow takes a context, a task, a kernel, the instances of
// a dataset and a matrix over them, and sets the values of the
// matrix at the task's row and every column from the row on,
// mirroring them to the lower triangle.
func ComputeRow(ctx context.Context, task *queue.Task, k kernel.TreeKernel, instances []dataset.Instance, m *Matrix) error {
	i := task.Row
	for j := i; j < len(instances); j++ {
		v, err := k.Evaluate(ctx, instances[i].Vector, instances[j].Vector)
		if err != nil {
			return fmt.Errorf("evaluating kernel on instances %q and %q: %w", instances[i].ID, instances[j].ID, err)
		}
		m.Set(i, j, v)
	}
	return nil
}

// Work takes a context, a kernel, the instances of a dataset, the
// matrix being computed, a queue, a logger and an emptyQueueSleep
// duration and enters a loop in which it:
//   - pulls a task for the queue,
//   - computes the task's row of the matrix using ComputeRow
//   - marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if ComputeRow returns a non-nil
// error or if an operation with the given queue returns a
// non-nil error. A nil logger is replaced by a no-op one.
func Work(ctx context.Context, k kernel.TreeKernel, instances []dataset.Instance, m *Matrix, q queue.Queue, logger *zap.Logger, emptyQueueSleep time.Duration) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		task, tctx, tcf, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			p, r, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		mctx, cancel := mergeCtxCancel(tctx, ctx)
		err = workTask(mctx, task, k, instances, m, q)
		cancel()
		tcf()
		if err != nil {
			return err
		}
		logger.Debug("computed kernel matrix row", zap.Int("row", task.Row), zap.String("id", instances[task.Row].ID))
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
	return nil
}

func workTask(ctx context.Context, task *queue.Task, k kernel.TreeKernel, instances []dataset.Instance, m *Matrix, q queue.Queue) error {
	err := ComputeRow(ctx, task, k, instances, m)
	if err != nil {
		q.Drop(context.WithoutCancel(ctx), task.ID())
		return err
	}
	return q.Complete(ctx, task.ID())
}

// ComputeMatrix takes a context, a kernel, a dataset, a number of
// workers and a logger and returns the kernel matrix of the dataset's
// instances, computed by the given number of concurrent workers
// sharing the kernel. A nil logger is replaced by a no-op one.
//
// The first error found by any worker stops the rest and is
// returned along a nil matrix.
func ComputeMatrix(ctx context.Context, k kernel.TreeKernel, d dataset.Dataset, workers int, logger *zap.Logger) (*Matrix, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	instances, err := d.Instances(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving dataset instances: %w", err)
	}
	ids := make([]string, 0, len(instances))
	labels := make([]string, 0, len(instances))
	for _, in := range instances {
		ids = append(ids, in.ID)
		labels = append(labels, in.Label)
	}
	m := NewMatrix(ids, labels)
	q := queue.New()
	defer q.Stop(context.WithoutCancel(ctx))
	err = Seed(ctx, q, len(instances))
	if err != nil {
		return nil, err
	}
	logger.Debug("computing kernel matrix", zap.Int("instances", len(instances)), zap.Int("workers", workers))
	start := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			return Work(egCtx, k, instances, m, q, logger, DefaultEmptyQueueSleep)
		})
	}
	err = eg.Wait()
	if err != nil {
		return nil, err
	}
	logger.Debug("kernel matrix computed", zap.Int("instances", len(instances)), zap.Duration("elapsed", time.Since(start)))
	return m, nil
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}
