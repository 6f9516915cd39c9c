package dom

// A creates an attribute for El.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// El creates an element. Arguments can be: nil, Attr, []Attr, *Element,
// []*Element or string (a text child).
func El(tag string, args ...any) *Element {
	e := &Element{Kind: KindElement, Tag: tag}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if v.Key != "" {
				e.Attrs = append(e.Attrs, v)
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					e.Attrs = append(e.Attrs, a)
				}
			}
		case *Element:
			e.AppendChild(v)
		case []*Element:
			for _, c := range v {
				e.AppendChild(c)
			}
		case string:
			e.AppendChild(Text(v))
		}
	}

	e.initProps()
	return e
}

// Text creates a text node.
func Text(content string) *Element {
	return &Element{Kind: KindText, Text: content}
}

// Comment creates a comment node.
func Comment(content string) *Element {
	return &Element{Kind: KindComment, Text: content}
}

// Document creates a document node holding the given children.
func Document(children ...*Element) *Element {
	d := &Element{Kind: KindDocument}
	for _, c := range children {
		d.AppendChild(c)
	}
	return d
}
