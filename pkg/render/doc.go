// Package render serialises dom trees back to HTML.
//
// Properties assigned by bindings are reflected on the way out: an assigned
// innerText or textContent replaces the element's children, style and
// dataset become their attribute forms, boolean properties toggle attribute
// presence, and string properties such as className or value overwrite the
// corresponding attribute. Unassigned properties leave the source markup
// untouched.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(doc)
//
// Text is escaped except inside script and style elements.
package render
