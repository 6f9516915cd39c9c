package dom

import (
	"errors"
	"sort"
	"strings"
)

// ErrPathNotFound is returned when an intermediate segment of a property
// path does not exist.
var ErrPathNotFound = errors.New("dom: property path not found")

// ErrNotObject is returned when an intermediate segment of a property path
// holds a scalar instead of an object.
var ErrNotObject = errors.New("dom: property is not an object")

// Object is a nested property bag such as an element's style or dataset.
type Object map[string]any

// PathError describes a failed property path traversal.
type PathError struct {
	Element string
	Path    []string
	Segment int
	Err     error
}

func (e *PathError) Error() string {
	seg := ""
	if e.Segment >= 0 && e.Segment < len(e.Path) {
		seg = e.Path[e.Segment]
	}
	return "dom: " + e.Element + ": " + strings.Join(e.Path, ".") + ": segment " + `"` + seg + `"` + ": " + e.Err.Error()
}

// Unwrap returns the underlying sentinel.
func (e *PathError) Unwrap() error {
	return e.Err
}

// SplitPath splits a dotted property expression into trimmed segments.
func SplitPath(expr string) []string {
	parts := strings.Split(expr, ".")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// computed properties are derived from the tree until a script assigns them.
func (e *Element) computed(name string) (any, bool) {
	switch name {
	case "innerText", "textContent":
		return e.TextContent(), true
	case "tagName":
		return strings.ToUpper(e.Tag), true
	}
	return nil, false
}

// Prop returns a top-level property.
func (e *Element) Prop(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	if !e.dirty[name] {
		if v, ok := e.computed(name); ok {
			return v, true
		}
	}
	v, ok := e.props[name]
	return v, ok
}

// SetProp assigns a top-level property and marks it for reflection.
func (e *Element) SetProp(name string, value any) {
	if e.props == nil {
		e.props = make(Object)
	}
	e.props[name] = value
	e.markDirty(name)
}

func (e *Element) markDirty(name string) {
	if e.dirty == nil {
		e.dirty = make(map[string]bool)
	}
	e.dirty[name] = true
}

// Dirty reports whether the top-level property was assigned (directly or
// through a nested path) since the element was created.
func (e *Element) Dirty(name string) bool {
	return e.dirty[name]
}

// DirtyProps returns the assigned top-level property names, sorted.
func (e *Element) DirtyProps() []string {
	names := make([]string, 0, len(e.dirty))
	for name := range e.dirty {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPath reads the value at path. A missing final segment yields (nil, nil),
// the equivalent of reading an undefined property; a missing or scalar
// intermediate segment is an error.
func (e *Element) GetPath(path []string) (any, error) {
	if len(path) == 0 {
		return nil, &PathError{Element: e.Describe(), Path: path, Segment: 0, Err: ErrPathNotFound}
	}
	v, _ := e.Prop(path[0])
	for i := 1; i < len(path); i++ {
		obj, err := asObject(v)
		if err != nil {
			return nil, &PathError{Element: e.Describe(), Path: path, Segment: i - 1, Err: err}
		}
		v = obj[path[i]]
	}
	return v, nil
}

// SetPath walks path down to its last-but-one segment and assigns value to
// the final segment. Intermediate objects are never created.
func (e *Element) SetPath(path []string, value any) error {
	if len(path) == 0 {
		return &PathError{Element: e.Describe(), Path: path, Segment: 0, Err: ErrPathNotFound}
	}
	if len(path) == 1 {
		e.SetProp(path[0], value)
		return nil
	}

	v, _ := e.Prop(path[0])
	for i := 1; i < len(path)-1; i++ {
		obj, err := asObject(v)
		if err != nil {
			return &PathError{Element: e.Describe(), Path: path, Segment: i - 1, Err: err}
		}
		v = obj[path[i]]
	}
	obj, err := asObject(v)
	if err != nil {
		return &PathError{Element: e.Describe(), Path: path, Segment: len(path) - 2, Err: err}
	}
	obj[path[len(path)-1]] = value
	e.markDirty(path[0])
	return nil
}

func asObject(v any) (map[string]any, error) {
	switch o := v.(type) {
	case nil:
		return nil, ErrPathNotFound
	case Object:
		if o == nil {
			return nil, ErrPathNotFound
		}
		return o, nil
	case map[string]any:
		if o == nil {
			return nil, ErrPathNotFound
		}
		return o, nil
	default:
		return nil, ErrNotObject
	}
}

// Snapshot returns a deep copy of the element's properties, including
// computed ones, as plain maps. Expression engines use it as the `this`
// binding.
func (e *Element) Snapshot() map[string]any {
	out := make(map[string]any, len(e.props)+3)
	for k, v := range e.props {
		out[k] = copyValue(v)
	}
	for _, name := range []string{"innerText", "textContent", "tagName"} {
		if v, ok := e.Prop(name); ok {
			out[name] = v
		}
	}
	return out
}

func copyValue(v any) any {
	switch o := v.(type) {
	case Object:
		m := make(map[string]any, len(o))
		for k, val := range o {
			m[k] = copyValue(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(o))
		for k, val := range o {
			m[k] = copyValue(val)
		}
		return m
	default:
		return v
	}
}
