package transport

import (
	"context"
	"sync"
)

// Signal is a single-slot notification cell. Signal may be called from
// interrupt context: it never blocks and only the latest value is kept. Wait
// consumes the pending value, so every notification wakes at most one waiter.
type Signal[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	wake    chan struct{}
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{wake: make(chan struct{}, 1)}
}

// Signal stores v, replacing any value not yet consumed, and wakes a waiter.
func (s *Signal[T]) Signal(v T) {
	s.mu.Lock()
	s.value = v
	s.pending = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Reset drops any pending value. Call it before arming a new operation so a
// notification left over from the previous one is not consumed.
func (s *Signal[T]) Reset() {
	var zero T

	s.mu.Lock()
	s.value = zero
	s.pending = false
	s.mu.Unlock()

	select {
	case <-s.wake:
	default:
	}
}

// TryTake consumes the pending value if there is one.
func (s *Signal[T]) TryTake() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.value, s.pending
	if ok {
		var zero T
		s.value = zero
		s.pending = false
	}
	return v, ok
}

// Wait blocks until a value is signalled and consumes it. If ctx is done
// first, Wait returns ctx.Err() and leaves the cell as it is.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	for {
		if v, ok := s.TryTake(); ok {
			return v, nil
		}

		select {
		case <-s.wake:
			// A wake token can outlive a Reset, so re-check the slot.
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
