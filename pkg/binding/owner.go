package binding

import (
	"sync"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// Scopes associates elements with the stores they own.
//
// Owner lookups are never cached: every FindOwner walks the current parent
// chain, so an element moved under a different owner binds to that owner on
// its next run.
type Scopes struct {
	mu     sync.RWMutex
	stores map[*dom.Element]*Store
}

// NewScopes returns an empty table.
func NewScopes() *Scopes {
	return &Scopes{stores: make(map[*dom.Element]*Store)}
}

// Attach gives el a fresh store.
func (s *Scopes) Attach(el *dom.Element) (*Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stores[el]; ok {
		return nil, &Error{Op: "declare", Element: el.Describe(), Err: ErrStoreExists}
	}
	store := NewStore()
	s.stores[el] = store
	return store, nil
}

// StoreOf returns the store el owns, if any. Ancestors are not consulted.
func (s *Scopes) StoreOf(el *dom.Element) (*Store, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.stores[el]
	return store, ok
}

// FindOwner returns the nearest element, starting at el itself, that owns a
// store.
func (s *Scopes) FindOwner(el *dom.Element) (*dom.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for e := el; e != nil; e = e.Parent() {
		if _, ok := s.stores[e]; ok {
			return e, nil
		}
	}
	desc := ""
	if el != nil {
		desc = el.Describe()
	}
	return nil, &Error{Op: "resolve", Element: desc, Err: ErrNoOwner}
}

// StateOf returns the store of el's owner.
func (s *Scopes) StateOf(el *dom.Element) (*Store, error) {
	owner, err := s.FindOwner(el)
	if err != nil {
		return nil, err
	}
	store, _ := s.StoreOf(owner)
	return store, nil
}

// Owners returns the elements that own a store, in document order under
// root.
func (s *Scopes) Owners(root *dom.Element) []*dom.Element {
	var owners []*dom.Element
	for _, e := range dom.Elements(root) {
		if _, ok := s.StoreOf(e); ok {
			owners = append(owners, e)
		}
	}
	return owners
}

// Len returns the number of stores.
func (s *Scopes) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stores)
}
