/*
Package gate implements the reader/writer discipline of a buffer.

A Gate admits either any number of readers or a single writer. Acquiring
either mode honors a context, so callers may give up while waiting.
Additionally a reader may mark the gate busy for the duration of a long
scan. Writers arriving at a busy gate fail with ErrBusy instead of queueing
behind the scan.

A Gate is not reentrant: a goroutine holding the gate in either mode must not
acquire it again.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package gate

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned by Lock while a busy reader holds or waits for the gate.
var ErrBusy = errors.New("gate: busy")

// maxReaders is the weight a writer acquires; it excludes every reader.
const maxReaders = 1 << 30

// Gate is a context-aware reader/writer lock with a busy signal.
//
// The zero value is not usable, clients have to call New.
type Gate struct {
	sem  *semaphore.Weighted
	mu   sync.Mutex // guards busy and serializes the writer's fast path
	busy int
}

// New creates an open gate.
func New() *Gate {
	return &Gate{sem: semaphore.NewWeighted(maxReaders)}
}

// Lock acquires the gate exclusively. It fails with ErrBusy if a busy reader
// holds the gate, or with the context's error if ctx is done before the gate
// could be acquired.
func (g *Gate) Lock(ctx context.Context) error {
	g.mu.Lock()
	if g.busy > 0 {
		g.mu.Unlock()
		return ErrBusy
	}
	ok := g.sem.TryAcquire(maxReaders)
	g.mu.Unlock()
	if ok {
		return nil
	}
	return g.sem.Acquire(ctx, maxReaders)
}

// TryLock acquires the gate exclusively if this is possible without waiting.
func (g *Gate) TryLock() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy > 0 {
		return ErrBusy
	}
	if !g.sem.TryAcquire(maxReaders) {
		return ErrBusy
	}
	return nil
}

// Unlock releases exclusive access.
func (g *Gate) Unlock() {
	g.sem.Release(maxReaders)
}

// RLock acquires the gate in shared mode.
func (g *Gate) RLock(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// RUnlock releases shared access.
func (g *Gate) RUnlock() {
	g.sem.Release(1)
}

// RLockBusy acquires the gate in shared mode and marks it busy until the
// returned release function is called. Calling release more than once is
// harmless.
//
// The gate is marked busy before the reader starts waiting, so writers
// arriving meanwhile fail instead of queueing behind the scan.
func (g *Gate) RLockBusy(ctx context.Context) (release func(), err error) {
	g.mu.Lock()
	g.busy++
	g.mu.Unlock()
	if err = g.sem.Acquire(ctx, 1); err != nil {
		g.mu.Lock()
		g.busy--
		g.mu.Unlock()
		return func() {}, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.busy--
			g.mu.Unlock()
			g.sem.Release(1)
		})
	}, nil
}

// Busy reports whether a busy reader currently holds or waits for the gate.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy > 0
}
