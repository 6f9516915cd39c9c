package binding

import (
	"fmt"
	"sync"

	"github.com/vango-dev/hxstate/pkg/reactive"
)

// Store is the set of named state cells owned by one element.
//
// Get is a tracked read: an effect that calls it reruns when the cell
// changes. Set propagates through the reactive runtime that owns the
// effects reading the cell.
type Store struct {
	mu    sync.RWMutex
	cells map[string]*reactive.Signal[any]
	names []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{cells: make(map[string]*reactive.Signal[any])}
}

// Declare creates the cell for name holding initial.
func (s *Store) Declare(name string, initial any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cells[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateState, name)
	}
	s.cells[name] = reactive.NewSignal(initial)
	s.names = append(s.names, name)
	return nil
}

func (s *Store) cell(name string) (*reactive.Signal[any], error) {
	s.mu.RLock()
	c, ok := s.cells[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return c, nil
}

// Get returns the current value of name and subscribes the running effect
// to it.
func (s *Store) Get(name string) (any, error) {
	c, err := s.cell(name)
	if err != nil {
		return nil, err
	}
	return c.Get(), nil
}

// Peek returns the current value of name without subscribing.
func (s *Store) Peek(name string) (any, error) {
	c, err := s.cell(name)
	if err != nil {
		return nil, err
	}
	return c.Peek(), nil
}

// Set writes value to name. Effects that read name rerun unless the value
// is unchanged.
func (s *Store) Set(name string, value any) error {
	c, err := s.cell(name)
	if err != nil {
		return err
	}
	c.Set(value)
	return nil
}

// Has reports whether name is declared.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cells[name]
	return ok
}

// Names returns the declared names in declaration order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// Snapshot returns the current values without subscribing.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.cells))
	for name, c := range s.cells {
		out[name] = c.Peek()
	}
	return out
}

// GetAs is a tracked read of name asserted to T.
func GetAs[T any](s *Store, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("binding: state %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}
