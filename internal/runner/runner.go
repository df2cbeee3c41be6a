// Package runner serializes generation runs per output path.
//
// Starting a run for a key cancels the in-flight run for the same key and
// waits for it to return before the new one begins, so two runs never write
// the same output concurrently and the most recent trigger always wins.
// Runs for different keys proceed independently.
package runner

import (
	"context"
	"sync"
)

// Func is one generation run. It must return promptly once ctx is done.
type Func func(ctx context.Context) error

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner tracks the latest run for each key. The zero value is ready to
// use.
type Runner struct {
	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

// Run supersedes any in-flight run for key and then calls fn, blocking
// until it returns. A run superseded before fn starts returns ctx.Err()
// without calling fn.
func (r *Runner) Run(ctx context.Context, key string, fn Func) error {
	ctx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	if r.jobs == nil {
		r.jobs = make(map[string]*job)
	}
	prev := r.jobs[key]
	r.jobs[key] = j
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		if r.jobs[key] == j {
			delete(r.jobs, key)
		}
		r.mu.Unlock()
		close(j.done)
	}()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Go is like Run but returns immediately. onDone, if non-nil, receives
// fn's result.
func (r *Runner) Go(ctx context.Context, key string, fn Func, onDone func(error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := r.Run(ctx, key, fn)
		if onDone != nil {
			onDone(err)
		}
	}()
}

// Cancel stops the in-flight run for key, if any, without starting a new
// one.
func (r *Runner) Cancel(key string) {
	r.mu.Lock()
	j := r.jobs[key]
	r.mu.Unlock()
	if j != nil {
		j.cancel()
	}
}

// Wait blocks until every run started with Go has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
