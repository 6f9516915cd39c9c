package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML document and returns its document node. Element
// properties are seeded from the parsed attributes.
func Parse(r io.Reader) (*Element, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return convert(root), nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup as the content of a <body> element and
// returns a document node holding the resulting top-level nodes.
func ParseFragment(r io.Reader) (*Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	doc := &Element{Kind: KindDocument}
	for _, n := range nodes {
		if c := convert(n); c != nil {
			doc.AppendChild(c)
		}
	}
	return doc, nil
}

func convert(n *html.Node) *Element {
	var e *Element
	switch n.Type {
	case html.DocumentNode:
		e = &Element{Kind: KindDocument}
	case html.ElementNode:
		e = &Element{Kind: KindElement, Tag: n.Data}
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			e.Attrs = append(e.Attrs, Attr{Key: key, Value: a.Val})
		}
	case html.TextNode:
		return &Element{Kind: KindText, Text: n.Data}
	case html.CommentNode:
		return &Element{Kind: KindComment, Text: n.Data}
	case html.DoctypeNode:
		return &Element{Kind: KindDoctype, Text: n.Data}
	default:
		return nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			e.AppendChild(child)
		}
	}
	e.initProps()
	return e
}
