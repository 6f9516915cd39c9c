package dom

import (
	"sort"
	"strings"
)

// stringProps are attributes mirrored verbatim as string properties.
var stringProps = map[string]string{
	"id":          "id",
	"class":       "className",
	"value":       "value",
	"title":       "title",
	"name":        "name",
	"type":        "type",
	"href":        "href",
	"src":         "src",
	"alt":         "alt",
	"placeholder": "placeholder",
	"lang":        "lang",
	"for":         "htmlFor",
	"role":        "role",
}

// boolProps are presence-only attributes mirrored as boolean properties.
var boolProps = map[string]string{
	"checked":  "checked",
	"disabled": "disabled",
	"hidden":   "hidden",
	"readonly": "readOnly",
	"required": "required",
	"selected": "selected",
	"multiple": "multiple",
}

// AttrForProp returns the attribute a property reflects to, and whether the
// property is boolean. ok is false for properties with no attribute.
func AttrForProp(prop string) (attr string, boolean bool, ok bool) {
	for a, p := range stringProps {
		if p == prop {
			return a, false, true
		}
	}
	for a, p := range boolProps {
		if p == prop {
			return a, true, true
		}
	}
	return "", false, false
}

// initProps seeds the property bag from the source attributes, the way a
// browser initialises element properties from markup.
func (e *Element) initProps() {
	if e.Kind != KindElement {
		return
	}
	e.props = make(Object)
	for _, p := range boolProps {
		e.props[p] = false
	}
	dataset := make(Object)
	style := make(Object)
	for _, a := range e.Attrs {
		key := strings.ToLower(a.Key)
		if p, ok := stringProps[key]; ok {
			e.props[p] = a.Value
			continue
		}
		if p, ok := boolProps[key]; ok {
			e.props[p] = true
			continue
		}
		if key == "style" {
			style = ParseStyle(a.Value)
			continue
		}
		if strings.HasPrefix(key, "data-") {
			dataset[CamelCase(key[len("data-"):])] = a.Value
		}
	}
	e.props["style"] = style
	e.props["dataset"] = dataset
}

// ParseStyle parses an inline style declaration list into an Object keyed
// by camel-cased property names.
func ParseStyle(s string) Object {
	style := make(Object)
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		style[CamelCase(name)] = strings.TrimSpace(value)
	}
	return style
}

// FormatStyle serialises a style object back to declaration text. Keys are
// sorted and empty values are dropped, matching how a browser removes a
// declaration assigned the empty string.
func FormatStyle(style map[string]any) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := FormatValue(style[k])
		if v == "" {
			continue
		}
		parts = append(parts, KebabCase(k)+": "+v)
	}
	return strings.Join(parts, "; ")
}

// CamelCase converts "background-color" to "backgroundColor".
func CamelCase(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// KebabCase converts "backgroundColor" to "background-color".
func KebabCase(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
