package dom

import (
	"strconv"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindComment              // <!-- ... -->
	KindDocument             // Root of a parsed document
	KindDoctype              // <!DOCTYPE html>
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindDocument:
		return "Document"
	case KindDoctype:
		return "Doctype"
	default:
		return "Unknown"
	}
}

// Attr is a single source attribute.
type Attr struct {
	Key   string
	Value string
}

// Element is a node in the document tree.
type Element struct {
	Kind  Kind
	Tag   string // lower-case tag name for KindElement
	Text  string // content for KindText, KindComment, KindDoctype
	Attrs []Attr // attributes in source order

	props    Object
	dirty    map[string]bool
	children []*Element
	parent   *Element
}

// Parent returns the parent node, or nil for a root.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	return e.parent
}

// Children returns the child nodes. The slice must not be modified.
func (e *Element) Children() []*Element {
	return e.children
}

// IsElement reports whether e is an element node.
func (e *Element) IsElement() bool {
	return e != nil && e.Kind == KindElement
}

// AppendChild adds child as the last child of e, detaching it from any
// previous parent.
func (e *Element) AppendChild(child *Element) *Element {
	if child == nil {
		return e
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	return e
}

// RemoveChild detaches child from e. It reports whether child was found.
func (e *Element) RemoveChild(child *Element) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// ReplaceChildren drops every child of e and appends the given nodes.
func (e *Element) ReplaceChildren(children ...*Element) {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	for _, c := range children {
		e.AppendChild(c)
	}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Key, name) {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute, keeping its source position when it exists.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.Attrs {
		if strings.EqualFold(a.Key, name) {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: name, Value: value})
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.Attrs {
		if strings.EqualFold(a.Key, name) {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// TextContent returns the concatenated text of all descendant text nodes.
func (e *Element) TextContent() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindText {
		return e.Text
	}
	var sb strings.Builder
	for _, c := range e.children {
		if c.Kind == KindText || c.Kind == KindElement {
			sb.WriteString(c.TextContent())
		}
	}
	return sb.String()
}

// Describe returns a short selector-like label for logs and errors,
// e.g. `p#total` or `button[2]`.
func (e *Element) Describe() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindDocument:
		return "#document"
	case KindText:
		return "#text"
	case KindComment:
		return "#comment"
	case KindDoctype:
		return "#doctype"
	}
	if id, ok := e.Attr("id"); ok && id != "" {
		return e.Tag + "#" + id
	}
	if e.parent == nil {
		return e.Tag
	}
	n := 0
	for _, c := range e.parent.children {
		if c.Kind == KindElement && c.Tag == e.Tag {
			n++
		}
		if c == e {
			break
		}
	}
	return e.parent.Describe() + " > " + e.Tag + "[" + strconv.Itoa(n) + "]"
}

// Root returns the top-most ancestor of e.
func (e *Element) Root() *Element {
	for e != nil && e.parent != nil {
		e = e.parent
	}
	return e
}
