package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Text-bearing elements stay on one line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// StripAttrs lists attributes omitted from the output, e.g. the binding
	// attributes when producing a static snapshot.
	StripAttrs []string
}

// Renderer serialises dom trees to HTML, reflecting assigned properties
// back into attributes and content.
type Renderer struct {
	config RendererConfig
	strip  map[string]bool
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	strip := make(map[string]bool, len(config.StripAttrs))
	for _, a := range config.StripAttrs {
		strip[strings.ToLower(a)] = true
	}
	return &Renderer{config: config, strip: strip}
}

// RenderToString renders a tree to an HTML string.
func (r *Renderer) RenderToString(node *dom.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Element) error {
	return r.renderNode(w, node, 0, false)
}

func (r *Renderer) renderNode(w io.Writer, node *dom.Element, depth int, rawText bool) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case dom.KindDocument:
		for _, c := range node.Children() {
			if err := r.renderNode(w, c, depth, false); err != nil {
				return err
			}
		}
		return nil
	case dom.KindDoctype:
		_, err := fmt.Fprintf(w, "<!DOCTYPE %s>", node.Text)
		r.newline(w)
		return err
	case dom.KindComment:
		_, err := fmt.Fprintf(w, "<!--%s-->", node.Text)
		return err
	case dom.KindText:
		if rawText {
			_, err := io.WriteString(w, node.Text)
			return err
		}
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case dom.KindElement:
		return r.renderElement(w, node, depth)
	default:
		return fmt.Errorf("render: unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *dom.Element, depth int) error {
	tag := node.Tag

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}

	ref := reflectProps(node)
	if err := r.renderAttributes(w, node, ref); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		r.newline(w)
		return nil
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	switch {
	case ref.html != nil:
		if _, err := io.WriteString(w, *ref.html); err != nil {
			return err
		}
	case ref.text != nil:
		if _, err := io.WriteString(w, escapeHTML(*ref.text)); err != nil {
			return err
		}
	default:
		hasBlockChildren := hasElementChildren(node) && !isInlineElement(tag)
		if r.config.Pretty && hasBlockChildren {
			r.newline(w)
		}
		raw := isRawTextElement(tag)
		for _, child := range node.Children() {
			if r.config.Pretty && hasBlockChildren && child.Kind == dom.KindText && strings.TrimSpace(child.Text) == "" {
				continue
			}
			if err := r.renderNode(w, child, depth+1, raw); err != nil {
				return err
			}
		}
		if r.config.Pretty && hasBlockChildren {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	r.newline(w)
	return nil
}

// reflection is the attribute and content view of an element's assigned
// properties.
type reflection struct {
	attrs map[string]*string // nil value removes the attribute
	order []string           // attributes not present in source, sorted
	text  *string
	html  *string
}

func reflectProps(node *dom.Element) reflection {
	ref := reflection{attrs: make(map[string]*string)}
	set := func(name string, value *string) {
		ref.attrs[name] = value
	}

	for _, prop := range node.DirtyProps() {
		v, _ := node.Prop(prop)
		switch prop {
		case "innerText", "textContent":
			s := dom.FormatValue(v)
			ref.text = &s
		case "innerHTML":
			s := dom.FormatValue(v)
			ref.html = &s
		case "style":
			if obj, ok := asMap(v); ok {
				s := dom.FormatStyle(obj)
				if s == "" {
					set("style", nil)
				} else {
					set("style", &s)
				}
			}
		case "dataset":
			if obj, ok := asMap(v); ok {
				for k, val := range obj {
					s := dom.FormatValue(val)
					set("data-"+dom.KebabCase(k), &s)
				}
			}
		default:
			attr, boolean, ok := dom.AttrForProp(prop)
			if !ok {
				continue
			}
			if boolean {
				if dom.Truthy(v) {
					empty := ""
					set(attr, &empty)
				} else {
					set(attr, nil)
				}
				continue
			}
			s := dom.FormatValue(v)
			set(attr, &s)
		}
	}

	for name, v := range ref.attrs {
		if v != nil && !node.HasAttr(name) {
			ref.order = append(ref.order, name)
		}
	}
	sort.Strings(ref.order)
	return ref
}

// renderAttributes writes source attributes in order, with reflected values
// substituted, followed by reflected attributes the source did not have.
func (r *Renderer) renderAttributes(w io.Writer, node *dom.Element, ref reflection) error {
	for _, a := range node.Attrs {
		key := strings.ToLower(a.Key)
		if r.strip[key] {
			continue
		}
		value := a.Value
		if v, ok := ref.attrs[key]; ok {
			if v == nil {
				continue
			}
			value = *v
		}
		if err := writeAttr(w, a.Key, value); err != nil {
			return err
		}
	}
	for _, key := range ref.order {
		if r.strip[key] {
			continue
		}
		if err := writeAttr(w, key, *ref.attrs[key]); err != nil {
			return err
		}
	}
	return nil
}

func writeAttr(w io.Writer, key, value string) error {
	if value == "" && isBooleanAttr(strings.ToLower(key)) {
		_, err := fmt.Fprintf(w, " %s", key)
		return err
	}
	_, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(value))
	return err
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case dom.Object:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func hasElementChildren(node *dom.Element) bool {
	for _, c := range node.Children() {
		if c.Kind == dom.KindElement {
			return true
		}
	}
	return false
}

func (r *Renderer) newline(w io.Writer) {
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
