package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/hxstate/pkg/dom"
)

func renderString(t *testing.T, config RendererConfig, node *dom.Element) string {
	t.Helper()
	out, err := NewRenderer(config).RenderToString(node)
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	return out
}

func TestRenderUnchangedElement(t *testing.T) {
	el := dom.El("p", dom.A("id", "n"), dom.A("hx-bind", "innerText=count:Number"), "5")
	want := `<p id="n" hx-bind="innerText=count:Number">5</p>`
	if got := renderString(t, RendererConfig{}, el); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRenderReflectsAssignedProps(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *dom.Element
		assign func(*dom.Element) error
		want   string
	}{
		{
			name:  "innerText replaces children",
			build: func() *dom.Element { return dom.El("p", dom.A("id", "n"), dom.El("b", "0")) },
			assign: func(e *dom.Element) error {
				e.SetProp("innerText", 5.0)
				return nil
			},
			want: `<p id="n">5</p>`,
		},
		{
			name:  "nested style write",
			build: func() *dom.Element { return dom.El("div", dom.A("style", "color: red")) },
			assign: func(e *dom.Element) error {
				return e.SetPath([]string{"style", "backgroundColor"}, "green")
			},
			want: `<div style="background-color: green; color: red"></div>`,
		},
		{
			name:  "className overwrites class",
			build: func() *dom.Element { return dom.El("div", dom.A("class", "a"), dom.A("id", "x")) },
			assign: func(e *dom.Element) error {
				e.SetProp("className", "b")
				return nil
			},
			want: `<div class="b" id="x"></div>`,
		},
		{
			name:  "boolean property adds attribute",
			build: func() *dom.Element { return dom.El("input", dom.A("type", "checkbox")) },
			assign: func(e *dom.Element) error {
				e.SetProp("checked", true)
				return nil
			},
			want: `<input type="checkbox" checked>`,
		},
		{
			name:  "boolean property removes attribute",
			build: func() *dom.Element { return dom.El("input", dom.A("disabled", ""), dom.A("type", "text")) },
			assign: func(e *dom.Element) error {
				e.SetProp("disabled", 0.0)
				return nil
			},
			want: `<input type="text">`,
		},
		{
			name:  "dataset entry",
			build: func() *dom.Element { return dom.El("div") },
			assign: func(e *dom.Element) error {
				return e.SetPath([]string{"dataset", "userId"}, 7.0)
			},
			want: `<div data-user-id="7"></div>`,
		},
		{
			name:  "cleared style drops attribute",
			build: func() *dom.Element { return dom.El("span", dom.A("style", "color: red"), "x") },
			assign: func(e *dom.Element) error {
				return e.SetPath([]string{"style", "color"}, "")
			},
			want: `<span>x</span>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := tt.build()
			if err := tt.assign(el); err != nil {
				t.Fatalf("assign: %v", err)
			}
			if got := renderString(t, RendererConfig{}, el); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRenderEscaping(t *testing.T) {
	el := dom.El("p", dom.A("title", `say "hi"`+"\n"), "a < b & 'c'")
	want := `<p title="say &quot;hi&quot;&#10;">a &lt; b &amp; &#39;c&#39;</p>`
	if got := renderString(t, RendererConfig{}, el); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	el = dom.El("p")
	el.SetProp("innerText", "<b>")
	if got := renderString(t, RendererConfig{}, el); got != "<p>&lt;b&gt;</p>" {
		t.Errorf("expected assigned text to be escaped, got %s", got)
	}
}

func TestRenderRawTextElements(t *testing.T) {
	doc, err := dom.ParseFragment(strings.NewReader(`<script>if (a < b && c) {}</script>`))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	want := `<script>if (a < b && c) {}</script>`
	if got := renderString(t, RendererConfig{}, doc); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRenderDocument(t *testing.T) {
	src := `<!DOCTYPE html><html><head></head><body><!-- c --><p>hi</p></body></html>`
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if got := renderString(t, RendererConfig{}, doc); got != src {
		t.Errorf("expected %s, got %s", src, got)
	}
}

func TestRenderStripAttrs(t *testing.T) {
	el := dom.El("div", dom.A("hx-state", ""), dom.A("id", "x"))

	if got := renderString(t, RendererConfig{}, el); got != `<div hx-state="" id="x"></div>` {
		t.Errorf("unexpected output %s", got)
	}
	got := renderString(t, RendererConfig{StripAttrs: []string{"HX-STATE"}}, el)
	if got != `<div id="x"></div>` {
		t.Errorf("expected hx-state to be stripped, got %s", got)
	}
}

func TestRenderPretty(t *testing.T) {
	el := dom.El("ul", dom.El("li", "a"), dom.El("li", "b"))
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	if got := renderString(t, RendererConfig{Pretty: true}, el); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got := renderString(t, RendererConfig{Pretty: true, Indent: "\t"}, el)
	if !strings.Contains(got, "\t<li>a</li>") {
		t.Errorf("expected tab indentation, got %q", got)
	}
}

func TestRenderVoidElements(t *testing.T) {
	el := dom.El("div", dom.El("br"), dom.El("img", dom.A("src", "/a.png")))
	want := `<div><br><img src="/a.png"></div>`
	if got := renderString(t, RendererConfig{}, el); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
