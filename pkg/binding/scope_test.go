package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/hxstate/pkg/dom"
)

func TestStoreDeclare(t *testing.T) {
	s := NewStore()
	if err := s.Declare("count", 1.0); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if v, err := s.Get("count"); err != nil || v != 1.0 {
		t.Errorf("expected 1, got %v, %v", v, err)
	}
	if err := s.Declare("count", 2.0); !errors.Is(err, ErrDuplicateState) {
		t.Errorf("expected ErrDuplicateState, got %v", err)
	}
	if v, _ := s.Peek("count"); v != 1.0 {
		t.Errorf("failed declaration must not change the value, got %v", v)
	}
}

func TestStoreUnknownState(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Get: expected ErrUnknownState, got %v", err)
	}
	if _, err := s.Peek("nope"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Peek: expected ErrUnknownState, got %v", err)
	}
	if err := s.Set("nope", 1); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Set: expected ErrUnknownState, got %v", err)
	}
}

func TestStoreAccessors(t *testing.T) {
	s := NewStore()
	_ = s.Declare("b", "x")
	_ = s.Declare("a", 2.0)

	if !s.Has("a") || s.Has("c") {
		t.Error("unexpected Has result")
	}
	if diff := cmp.Diff([]string{"b", "a"}, s.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if err := s.Set("a", 3.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 3.0, "b": "x"}, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	f, err := GetAs[float64](s, "a")
	if err != nil || f != 3.0 {
		t.Errorf("GetAs[float64]: expected 3, got %v, %v", f, err)
	}
	if _, err := GetAs[string](s, "a"); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, err := GetAs[string](s, "zzz"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("expected ErrUnknownState, got %v", err)
	}
}

func TestFindOwnerSkipsNonOwners(t *testing.T) {
	c := dom.El("p", dom.A("id", "c"))
	b := dom.El("div", dom.A("id", "b"), c)
	a := dom.El("section", dom.A("id", "a"), b)

	scopes := NewScopes()
	if _, err := scopes.Attach(a); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	owner, err := scopes.FindOwner(c)
	if err != nil {
		t.Fatalf("FindOwner: %v", err)
	}
	if owner != a {
		t.Errorf("expected owner section#a, got %s", owner.Describe())
	}

	if owner, _ := scopes.FindOwner(a); owner != a {
		t.Error("an owner resolves to itself")
	}

	if _, err := scopes.Attach(b); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if owner, _ := scopes.FindOwner(c); owner != b {
		t.Error("expected lookup to reflect the new nearest owner")
	}
}

func TestFindOwnerNoOwner(t *testing.T) {
	scopes := NewScopes()
	el := dom.El("div", dom.El("p"))
	_, err := scopes.FindOwner(el.Children()[0])
	if !errors.Is(err, ErrNoOwner) {
		t.Errorf("expected ErrNoOwner, got %v", err)
	}
	var bindErr *Error
	if !errors.As(err, &bindErr) || bindErr.Op != "resolve" {
		t.Errorf("expected *Error with op resolve, got %#v", err)
	}
	if _, err := scopes.StateOf(el); !errors.Is(err, ErrNoOwner) {
		t.Errorf("StateOf: expected ErrNoOwner, got %v", err)
	}
}

func TestAttachTwice(t *testing.T) {
	scopes := NewScopes()
	el := dom.El("div")
	if _, err := scopes.Attach(el); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := scopes.Attach(el); !errors.Is(err, ErrStoreExists) {
		t.Errorf("expected ErrStoreExists, got %v", err)
	}
	if scopes.Len() != 1 {
		t.Errorf("expected 1 store, got %d", scopes.Len())
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: "parse", Element: "p#n", Attr: "hx-bind", Value: "innerText", Err: ErrMalformedBind}
	want := `parse p#n hx-bind="innerText": binding: malformed bind expression`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
