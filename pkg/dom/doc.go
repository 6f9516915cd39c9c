// Package dom provides the element tree the binding engine runs against.
//
// An Element carries three things a browser element would: its source
// attributes (ordered, as written), a property bag that scripts read and
// write (id, className, value, style, innerText, ...), and parent/child
// links. Properties are seeded from attributes when a document is parsed and
// reflected back to attributes by the render package.
//
// # Building trees
//
// Trees come from Parse (HTML input) or from the variadic builders:
//
//	El("article", A("hx-state", ""),
//	    El("p", A("hx-bind", "innerText=count:Number"), Text("0")),
//	)
//
// # Property paths
//
// GetPath and SetPath traverse nested objects ("style.color"). Traversal never
// creates intermediate objects: a missing intermediate segment is
// ErrPathNotFound.
package dom
