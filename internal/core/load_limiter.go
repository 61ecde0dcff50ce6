package core

// load_limiter.go bounds the number of files loaded at the same time.
//
// Every load holds the whole result set in memory, so parallel loads are
// capped by a semaphore. A caller that cannot get a slot within maxWait
// fails with ErrTooManyLoads. Drain blocks shutdown until running loads end.

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when no load slot frees up in time.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

const (
	// DefaultMaxConcurrentLoads is the default limit for parallel loads.
	DefaultMaxConcurrentLoads = 4

	// DefaultMaxLoadWait is how long to wait for a slot before rejecting.
	DefaultMaxLoadWait = 30 * time.Second

	drainPollInterval = 50 * time.Millisecond
)

// LoadLimiter is a counting semaphore for loads.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewLoadLimiter allows at most maxConcurrent loads, each waiting at most
// maxWait for a slot. Non-positive arguments select the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot and returns the function that frees it. The
// release function is safe to call more than once.
func (l *LoadLimiter) Acquire(ctx context.Context) (release func(), err error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return l.releaser(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTooManyLoads
	}
}

// TryAcquire takes a slot without waiting. ok is false when none is free.
func (l *LoadLimiter) TryAcquire() (release func(), ok bool) {
	select {
	case l.slots <- struct{}{}:
		return l.releaser(), true
	default:
		return nil, false
	}
}

func (l *LoadLimiter) releaser() func() {
	l.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Add(-1)
			<-l.slots
		})
	}
}

// Active returns the number of running loads.
func (l *LoadLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the maximum number of parallel loads.
func (l *LoadLimiter) Capacity() int {
	return cap(l.slots)
}

// Drain blocks until no load is running or ctx is done.
func (l *LoadLimiter) Drain(ctx context.Context) error {
	if l.Active() == 0 {
		return nil
	}
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}

// LoadLimiterStatus is a snapshot of a LoadLimiter.
type LoadLimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

// Status returns the current limiter state for monitoring.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	return LoadLimiterStatus{
		Active:    l.Active(),
		Available: cap(l.slots) - len(l.slots),
		Capacity:  cap(l.slots),
	}
}
