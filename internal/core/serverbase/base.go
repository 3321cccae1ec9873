// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Base tracks lifecycle state, background goroutines and asynchronous
// errors for a single-use server. A stopped or failed Base cannot be
// restarted.
type Base struct {
	state atomic.Int32

	mu      sync.Mutex
	lastErr error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ready chan struct{}
	errCh chan error
}

// NewBase returns a Base in StateCreated. Err holds one pending error.
func NewBase() *Base {
	b := &Base{
		ready: make(chan struct{}),
		errCh: make(chan error, 1),
	}
	b.state.Store(int32(StateCreated))
	return b
}

// State returns the current state without locking.
func (b *Base) State() State {
	return State(b.state.Load())
}

// IsRunning reports whether the server is accepting requests.
func (b *Base) IsRunning() bool {
	return b.State() == StateRunning
}

// Err delivers errors raised after Start returned, such as a serve loop
// exiting unexpectedly.
func (b *Base) Err() <-chan error {
	return b.errCh
}

// LastError returns the error passed to Fail, if any.
func (b *Base) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Context is cancelled when the server begins stopping or fails.
// It is nil before BeginStart.
func (b *Base) Context() context.Context {
	return b.ctx
}

// Ready is closed once MarkRunning has been called.
func (b *Base) Ready() <-chan struct{} {
	return b.ready
}

// BeginStart moves Created to Starting. It fails if ctx is already done,
// which also moves the server to Failed.
func (b *Base) BeginStart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("context cancelled before start: %w", err)
		b.Fail(err)
		return err
	}

	if !b.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return fmt.Errorf("cannot start server in state %s", b.State())
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	return nil
}

// MarkRunning moves Starting to Running and closes Ready.
func (b *Base) MarkRunning() {
	if b.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(b.ready)
	}
}

// Fail records err, moves the server to Failed and cancels its context.
func (b *Base) Fail(err error) {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()

	b.state.Store(int32(StateFailed))
	if b.cancel != nil {
		b.cancel()
	}
	b.SendError(err)
}

// BeginStop moves Starting or Running to Stopping and cancels the context.
// It returns false when there is nothing to shut down: a never-started
// server goes straight to Stopped, and terminal or already-stopping servers
// are left alone.
func (b *Base) BeginStop() bool {
	for {
		current := b.State()
		switch current {
		case StateCreated:
			if b.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
				return false
			}
		case StateStarting, StateRunning:
			if b.state.CompareAndSwap(int32(current), int32(StateStopping)) {
				if b.cancel != nil {
					b.cancel()
				}
				return true
			}
		default:
			return false
		}
	}
}

// MarkStopped moves the server to Stopped. Call it after Wait returns.
func (b *Base) MarkStopped() {
	b.state.Store(int32(StateStopped))
}

// WaitReady blocks until the server is running or ctx is done.
func (b *Base) WaitReady(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for server ready: %w", ctx.Err())
	}
}

// Go runs fn in a tracked goroutine. fn receives the server context and
// should return when it is cancelled.
func (b *Base) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (b *Base) Wait() {
	b.wg.Wait()
}

// SendError queues err on Err without blocking; it is dropped when the buffer is full.
func (b *Base) SendError(err error) {
	select {
	case b.errCh <- err:
	default:
	}
}
