package binding

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedBind is returned for a bind attribute without the
	// "path=name" separator, with more than one '=', or with an empty path
	// segment or state name.
	ErrMalformedBind = errors.New("binding: malformed bind expression")

	// ErrUnknownType is returned when a bind attribute names a type that is
	// not in the TypeRegistry.
	ErrUnknownType = errors.New("binding: unknown type")

	// ErrDuplicateState is returned when a state name is declared twice in
	// the same store.
	ErrDuplicateState = errors.New("binding: duplicate state")

	// ErrUnknownState is returned when reading or writing a state name that
	// was never declared.
	ErrUnknownState = errors.New("binding: unknown state")

	// ErrNoOwner is returned when neither an element nor any of its
	// ancestors owns a store.
	ErrNoOwner = errors.New("binding: no state owner found")

	// ErrStoreExists is returned when a store is attached to an element that
	// already owns one.
	ErrStoreExists = errors.New("binding: element already owns a store")
)

// Error records a binding failure together with the element and attribute
// that caused it.
type Error struct {
	Op      string // "parse", "declare", "seed", "resolve", "bind", "effect"
	Element string // element description, see dom.Element.Describe
	Attr    string // attribute name, if any
	Value   string // attribute value, if any
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Element != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Element)
	}
	if e.Attr != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Attr)
		sb.WriteString(`="`)
		sb.WriteString(e.Value)
		sb.WriteString(`"`)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
