// Package tasks runs fire-and-forget work, such as sending e-mails, outside
// the request that scheduled it.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Func is a unit of background work.
type Func func(ctx context.Context) error

// Runner executes each scheduled Func in its own goroutine. The job context
// keeps the scheduling context's values but not its cancellation, so a job
// outlives the request that started it. Failures and panics are logged and
// never reach the caller.
type Runner struct {
	log     logging.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRunner returns a runner whose jobs are bounded by timeout (zero means
// unbounded).
func NewRunner(log logging.Logger, timeout time.Duration) *Runner {
	return &Runner{log: log.With("module", "tasks"), timeout: timeout}
}

// Go schedules fn. After Close it is dropped with a warning.
func (r *Runner) Go(ctx context.Context, name string, fn Func) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warn(ctx, "runner closed, task dropped", "task", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	jobCtx := context.WithoutCancel(ctx)

	go func() {
		defer r.wg.Done()

		var cancel context.CancelFunc = func() {}
		if r.timeout > 0 {
			jobCtx, cancel = context.WithTimeout(jobCtx, r.timeout)
		}
		defer cancel()

		if err := r.run(jobCtx, fn); err != nil {
			r.log.Error(jobCtx, "background task failed", "task", name, "error", err)
			return
		}
		r.log.Debug(jobCtx, "background task done", "task", name)
	}()
}

func (r *Runner) run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

// Close stops accepting jobs and waits for running ones until ctx is done.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
