package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIterationLimit is returned when a turn exceeds its reasoning step bound.
var ErrIterationLimit = errors.New("exceeded max reasoning iterations")

// IterationLimiter bounds the number of reasoning steps within one turn.
type IterationLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewIterationLimiter creates a limiter. If max == 0, unlimited steps are allowed.
func NewIterationLimiter(max int) *IterationLimiter {
	return &IterationLimiter{max: max}
}

// Increment counts one step and returns an error wrapping ErrIterationLimit
// once the bound is exceeded.
func (l *IterationLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("%w: %d", ErrIterationLimit, l.max)
	}

	return nil
}

// Count returns the number of steps taken.
func (l *IterationLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many steps are left before hitting the limit.
func (l *IterationLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1 // unlimited
	}

	return l.max - l.count
}
