package binding

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseBind(t *testing.T) {
	types := NewTypeRegistry()
	tests := []struct {
		raw  string
		want BindSpec
	}{
		{"innerText=count", BindSpec{Path: []string{"innerText"}, State: "count"}},
		{" style.color = color ", BindSpec{Path: []string{"style", "color"}, State: "color"}},
		{"innerText=count:Number", BindSpec{Path: []string{"innerText"}, State: "count", TypeName: "Number"}},
		{"value = answer : Int", BindSpec{Path: []string{"value"}, State: "answer", TypeName: "Int"}},
		{"dataset . userId=id", BindSpec{Path: []string{"dataset", "userId"}, State: "id"}},
	}
	for _, tt := range tests {
		got, err := ParseBind(tt.raw, types)
		if err != nil {
			t.Errorf("ParseBind(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(BindSpec{}, "Coerce")); diff != "" {
			t.Errorf("ParseBind(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
		if got.Typed() != (tt.want.TypeName != "") {
			t.Errorf("ParseBind(%q): Typed() = %v", tt.raw, got.Typed())
		}
		if got.Typed() && got.Coerce == nil {
			t.Errorf("ParseBind(%q): expected resolved coercer", tt.raw)
		}
	}
}

func TestParseBindErrors(t *testing.T) {
	types := NewTypeRegistry()
	tests := []struct {
		raw  string
		want error
	}{
		{"innerText", ErrMalformedBind},
		{"", ErrMalformedBind},
		{"=count", ErrMalformedBind},
		{"style..color=count", ErrMalformedBind},
		{"innerText=", ErrMalformedBind},
		{"innerText= :Number", ErrMalformedBind},
		{"a=b=c", ErrMalformedBind},
		{"innerText=count:Decimal", ErrUnknownType},
		{"innerText=count:", ErrUnknownType},
	}
	for _, tt := range tests {
		if _, err := ParseBind(tt.raw, types); !errors.Is(err, tt.want) {
			t.Errorf("ParseBind(%q): expected %v, got %v", tt.raw, tt.want, err)
		}
	}

	if _, err := ParseBind("innerText=count:Number", nil); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType without a registry, got %v", err)
	}
}

func TestBindSpecString(t *testing.T) {
	spec, err := ParseBind(" style.color = c : String ", NewTypeRegistry())
	if err != nil {
		t.Fatalf("ParseBind: %v", err)
	}
	if got := spec.String(); got != "style.color=c:String" {
		t.Errorf("expected style.color=c:String, got %q", got)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"5", 5},
		{" 7 ", 7},
		{"", 0},
		{"  ", 0},
		{"1.5e2", 150},
		{"0x1F", 31},
		{"-3", -3},
		{"Infinity", math.Inf(1)},
		{true, 1},
		{false, 0},
		{int64(4), 4},
		{2.5, 2.5},
	}
	for _, tt := range tests {
		got, _ := ToNumber(tt.in)
		if got != tt.want {
			t.Errorf("ToNumber(%#v): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	for _, in := range []any{"abc", "5px", "inf", "NaN", "1_000", nil, []int{1}} {
		got, _ := ToNumber(in)
		if f, ok := got.(float64); !ok || !math.IsNaN(f) {
			t.Errorf("ToNumber(%#v): expected NaN, got %v", in, got)
		}
	}
}

func TestCoercers(t *testing.T) {
	if v, _ := ToBoolean(""); v != false {
		t.Errorf("expected empty string to be false, got %v", v)
	}
	if v, _ := ToBoolean("0"); v != true {
		t.Errorf("expected non-empty string to be true, got %v", v)
	}
	if v, _ := ToString(42.0); v != "42" {
		t.Errorf("expected \"42\", got %v", v)
	}
	if v, _ := ToInt("3.9"); v != int64(3) {
		t.Errorf("expected 3, got %v", v)
	}
	if _, err := ToInt("x"); err == nil {
		t.Error("expected error converting x to Int")
	}
	v, err := ToJSON(`{"a":[1,true]}`)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": []any{1.0, true}}, v); diff != "" {
		t.Errorf("ToJSON mismatch (-want +got):\n%s", diff)
	}
	if _, err := ToJSON("{"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()
	if diff := cmp.Diff([]string{"Boolean", "Int", "JSON", "Number", "String"}, r.Names()); diff != "" {
		t.Errorf("builtin names mismatch (-want +got):\n%s", diff)
	}
	r.Register("Upper", func(v any) (any, error) { return "UP", nil })
	fn, ok := r.Lookup("Upper")
	if !ok {
		t.Fatal("expected Upper to be registered")
	}
	if v, _ := fn("x"); v != "UP" {
		t.Errorf("expected UP, got %v", v)
	}
	if _, ok := r.Lookup("number"); ok {
		t.Error("type names are case-sensitive")
	}
}
