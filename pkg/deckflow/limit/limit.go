// Package limit bounds concurrent access to shared model backends.
//
// Fan-out stages can dispatch dozens of branches at once; a single CLI
// or API backend usually cannot absorb that. A Limiter is shared across
// every stage that talks to the same backend so total in-flight calls
// stay bounded regardless of graph shape.
package limit

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of concurrent operations.
// Safe for concurrent use. The zero value is not usable; use New.
type Limiter struct {
	sem *semaphore.Weighted
	max int64
}

// New creates a limiter allowing at most max concurrent operations.
// Panics if max < 1.
func New(max int) *Limiter {
	if max < 1 {
		panic(fmt.Sprintf("limit: max must be >= 1, got %d", max))
	}
	return &Limiter{
		sem: semaphore.NewWeighted(int64(max)),
		max: int64(max),
	}
}

// Acquire blocks until a slot is available or the context is cancelled.
// Callers must call Release exactly once after a successful Acquire.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// TryAcquire acquires a slot without blocking.
// Returns false if no slot is available.
func (l *Limiter) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Release returns a slot to the limiter.
func (l *Limiter) Release() {
	l.sem.Release(1)
}

// Max returns the configured concurrency limit.
func (l *Limiter) Max() int {
	return int(l.max)
}

// Do runs fn while holding a slot. It blocks until a slot is available
// or the context is cancelled.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}
