package binding

import (
	"fmt"
	"strings"
)

// Default attribute names.
const (
	DefaultStateAttr  = "hx-state"
	DefaultBindAttr   = "hx-bind"
	DefaultEffectAttr = "hx-effect"
)

// AttrNames holds the attribute names the registrar recognises.
type AttrNames struct {
	State  string `json:"state" yaml:"state"`
	Bind   string `json:"bind" yaml:"bind"`
	Effect string `json:"effect" yaml:"effect"`
}

// DefaultAttrNames returns hx-state, hx-bind and hx-effect.
func DefaultAttrNames() AttrNames {
	return AttrNames{
		State:  DefaultStateAttr,
		Bind:   DefaultBindAttr,
		Effect: DefaultEffectAttr,
	}
}

func (a AttrNames) withDefaults() AttrNames {
	d := DefaultAttrNames()
	if a.State == "" {
		a.State = d.State
	}
	if a.Bind == "" {
		a.Bind = d.Bind
	}
	if a.Effect == "" {
		a.Effect = d.Effect
	}
	return a
}

// All returns the three names in processing order.
func (a AttrNames) All() []string {
	return []string{a.State, a.Bind, a.Effect}
}

// BindSpec is a parsed bind attribute.
type BindSpec struct {
	// Path is the property path written on the bound element.
	Path []string

	// State is the name of the state cell in the owner's store.
	State string

	// TypeName is the optional type annotation. When set, the binding
	// declares and seeds the state from the element's current value.
	TypeName string

	// Coerce is the coercer resolved from TypeName.
	Coerce Coercer
}

// Typed reports whether the binding carries a type annotation.
func (b BindSpec) Typed() bool {
	return b.TypeName != ""
}

func (b BindSpec) String() string {
	s := strings.Join(b.Path, ".") + "=" + b.State
	if b.TypeName != "" {
		s += ":" + b.TypeName
	}
	return s
}

// ParseBind parses "prop[.prop...]=name[:Type]". Whitespace around each
// token is ignored. Type names are resolved against types; a nil registry
// only accepts untyped bindings.
func ParseBind(raw string, types *TypeRegistry) (BindSpec, error) {
	pathExpr, nameExpr, ok := strings.Cut(raw, "=")
	if !ok {
		return BindSpec{}, fmt.Errorf("%w: missing '=' separator", ErrMalformedBind)
	}
	if strings.Contains(nameExpr, "=") {
		return BindSpec{}, fmt.Errorf("%w: more than one '='", ErrMalformedBind)
	}

	path := strings.Split(strings.TrimSpace(pathExpr), ".")
	for i, seg := range path {
		path[i] = strings.TrimSpace(seg)
		if path[i] == "" {
			return BindSpec{}, fmt.Errorf("%w: empty property path segment", ErrMalformedBind)
		}
	}

	name, typeName, typed := strings.Cut(nameExpr, ":")
	spec := BindSpec{
		Path:  path,
		State: strings.TrimSpace(name),
	}
	if spec.State == "" {
		return BindSpec{}, fmt.Errorf("%w: empty state name", ErrMalformedBind)
	}
	if !typed {
		return spec, nil
	}

	spec.TypeName = strings.TrimSpace(typeName)
	if types == nil {
		return BindSpec{}, fmt.Errorf("%w: %q", ErrUnknownType, spec.TypeName)
	}
	coerce, ok := types.Lookup(spec.TypeName)
	if !ok {
		return BindSpec{}, fmt.Errorf("%w: %q", ErrUnknownType, spec.TypeName)
	}
	spec.Coerce = coerce
	return spec, nil
}
