// SPDX-License-Identifier: Apache-2.0

// Package debounce holds at most one pending request: a new submission
// replaces the pending one and cancels a superseded run still in flight.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay matches the pause a user takes between edits.
const DefaultDelay = 300 * time.Millisecond

// Result is delivered for each request that ran to completion without
// being superseded. Seq is the value Submit returned for it.
type Result[T any] struct {
	Value T
	Err   error
	Seq   uint64
}

// Debouncer runs the latest submitted function once it has been left
// alone for the configured delay.
type Debouncer[T any] struct {
	delay   time.Duration
	results chan Result[T]

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New returns a Debouncer. A non-positive delay uses DefaultDelay.
func New[T any](delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay:   delay,
		results: make(chan Result[T], 1),
	}
}

// Results returns the channel results are delivered on. It is closed by
// Close.
func (d *Debouncer[T]) Results() <-chan Result[T] {
	return d.results
}

// Submit schedules fn, superseding any earlier request, and returns its
// sequence number. fn's context is cancelled if it is superseded, if ctx
// is cancelled or if the Debouncer is closed. Submit after Close returns 0
// and does nothing.
func (d *Debouncer[T]) Submit(ctx context.Context, fn func(context.Context) (T, error)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.run(runCtx, cancel, d.seq, fn)
	return d.seq
}

func (d *Debouncer[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, fn func(context.Context) (T, error)) {
	defer d.wg.Done()
	defer cancel()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	value, err := fn(ctx)
	if ctx.Err() != nil || !d.current(seq) {
		return
	}
	select {
	case d.results <- Result[T]{Value: value, Err: err, Seq: seq}:
	case <-ctx.Done():
	}
}

func (d *Debouncer[T]) current(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.seq == seq
}

// Close cancels pending and running requests, waits for them to return
// and closes the results channel.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}
