package reactive

import (
	"math"
	"reflect"
	"sync"
)

// Signal is a reactive value. Get subscribes the running listener, Set
// notifies subscribers when the value actually changed.
type Signal[T any] struct {
	cell

	mu    sync.RWMutex
	value T
	same  func(a, b T) bool
}

// NewSignal returns a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	s := &Signal[T]{value: initial}
	s.id = nextID()
	return s
}

// Get returns the value and subscribes the running listener.
func (s *Signal[T]) Get() T {
	v := s.Peek()
	track(&s.cell)
	return v
}

// Peek returns the value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v. Subscribers are notified only when v differs from the
// current value.
func (s *Signal[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) under the write lock.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	moved := !s.equal(s.value, next)
	if moved {
		s.value = next
	}
	s.mu.Unlock()

	if moved {
		s.changed()
	}
}

// WithEquals replaces the change test and returns s.
func (s *Signal[T]) WithEquals(fn func(a, b T) bool) *Signal[T] {
	s.same = fn
	return s
}

// ID returns the signal's identifier.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Subscribers returns the number of listeners subscribed to s.
func (s *Signal[T]) Subscribers() int {
	return s.watcherCount()
}

func (s *Signal[T]) equal(a, b T) bool {
	if s.same != nil {
		return s.same(a, b)
	}
	return sameValue(any(a), any(b))
}

// sameValue compares by dynamic type first, so "5" and 5.0 differ. Scalars
// compare with ==, with NaN equal to NaN. Everything else uses DeepEqual.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Float32, reflect.Float64:
		x, y := reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}
