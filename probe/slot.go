package probe

import (
	"sync"
	"sync/atomic"
)

// slot holds a lazily constructed value. The fast path is a single atomic
// load; construction runs at most once at a time under mu. A failed build
// leaves the slot empty so the next caller tries again.
type slot[T any] struct {
	ready atomic.Bool
	mu    sync.Mutex
	value T
}

func (s *slot[T]) get(build func() (T, error)) (T, error) {
	if s.ready.Load() {
		return s.value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return s.value, nil
	}

	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	s.value = v
	s.ready.Store(true)
	return v, nil
}

// take empties the slot and returns what it held.
func (s *slot[T]) take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.value
	ok := s.ready.Load()
	var zero T
	s.value = zero
	s.ready.Store(false)
	return v, ok
}
