package dom

import "errors"

// SkipChildren can be returned from a WalkFunc to skip an element's subtree.
var SkipChildren = errors.New("dom: skip children")

// WalkFunc is called for every element visited by Walk.
type WalkFunc func(e *Element) error

// Walk visits root and every element below it in document (pre-)order.
// Non-element nodes are not passed to fn. The first non-nil error other than
// SkipChildren stops the walk and is returned.
func Walk(root *Element, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	if root.Kind == KindElement {
		if err := fn(root); err != nil {
			if errors.Is(err, SkipChildren) {
				return nil
			}
			return err
		}
	}
	// Copy so fn may restructure the tree behind the cursor.
	children := append([]*Element(nil), root.children...)
	for _, c := range children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Elements returns every element under root in document order, the
// equivalent of querySelectorAll("*") plus root itself when it is an element.
func Elements(root *Element) []*Element {
	var out []*Element
	_ = Walk(root, func(e *Element) error {
		out = append(out, e)
		return nil
	})
	return out
}

// ByID returns the first element whose id attribute equals id.
func ByID(root *Element, id string) *Element {
	var found *Element
	_ = Walk(root, func(e *Element) error {
		if v, ok := e.Attr("id"); ok && v == id {
			found = e
			return errStop
		}
		return nil
	})
	return found
}

// WithAttr returns every element carrying the named attribute.
func WithAttr(root *Element, name string) []*Element {
	var out []*Element
	_ = Walk(root, func(e *Element) error {
		if e.HasAttr(name) {
			out = append(out, e)
		}
		return nil
	})
	return out
}

var errStop = errors.New("dom: stop")
