package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestElBuildsTree(t *testing.T) {
	p := El("p", A("id", "total"), "0")
	root := El("article", A("hx-state", ""), p)

	if p.Parent() != root {
		t.Error("expected p to be a child of article")
	}
	if !root.HasAttr("hx-state") {
		t.Error("expected hx-state attribute")
	}
	if v, _ := p.Prop("innerText"); v != "0" {
		t.Errorf("expected innerText 0, got %v", v)
	}
	if v, _ := p.Prop("id"); v != "total" {
		t.Errorf("expected id property total, got %v", v)
	}
	if got := p.Describe(); got != "p#total" {
		t.Errorf("expected p#total, got %q", got)
	}
}

func TestPropsFromAttributes(t *testing.T) {
	in := El("input",
		A("type", "checkbox"),
		A("checked", ""),
		A("class", "big"),
		A("style", "color: red; background-color:blue"),
		A("data-user-id", "7"),
	)

	tests := []struct {
		path []string
		want any
	}{
		{[]string{"checked"}, true},
		{[]string{"disabled"}, false},
		{[]string{"className"}, "big"},
		{[]string{"style", "color"}, "red"},
		{[]string{"style", "backgroundColor"}, "blue"},
		{[]string{"dataset", "userId"}, "7"},
		{[]string{"style", "border"}, nil},
		{[]string{"tagName"}, "INPUT"},
	}
	for _, tt := range tests {
		got, err := in.GetPath(tt.path)
		if err != nil {
			t.Errorf("GetPath(%v): unexpected error %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("GetPath(%v): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestSetPath(t *testing.T) {
	el := El("div", A("style", "color: red"), "hello")

	if err := el.SetPath([]string{"style", "color"}, "green"); err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if v, _ := el.GetPath([]string{"style", "color"}); v != "green" {
		t.Errorf("expected green, got %v", v)
	}
	if !el.Dirty("style") {
		t.Error("expected style to be dirty after nested write")
	}

	if err := el.SetPath([]string{"innerText"}, 42.0); err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if v, _ := el.Prop("innerText"); v != 42.0 {
		t.Errorf("expected assigned innerText to win over computed text, got %v", v)
	}

	if diff := cmp.Diff([]string{"innerText", "style"}, el.DirtyProps()); diff != "" {
		t.Errorf("dirty props mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPathNeverCreatesIntermediates(t *testing.T) {
	el := El("div")

	err := el.SetPath([]string{"missing", "color"}, "red")
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
	if _, ok := el.Prop("missing"); ok {
		t.Error("intermediate object must not be created")
	}

	err = el.SetPath([]string{"tagName", "x"}, "red")
	if !errors.Is(err, ErrNotObject) {
		t.Errorf("expected ErrNotObject, got %v", err)
	}

	var pathErr *PathError
	if !errors.As(err, &pathErr) || pathErr.Segment != 0 {
		t.Errorf("expected PathError at segment 0, got %#v", err)
	}
}

func TestGetPathMissingIntermediate(t *testing.T) {
	el := El("div")
	if _, err := el.GetPath([]string{"nope", "deeper"}); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
	v, err := el.GetPath([]string{"nope"})
	if err != nil || v != nil {
		t.Errorf("expected undefined final segment to read as nil, got %v, %v", v, err)
	}
}

func TestParse(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE html><html><body>
<article hx-state><p id="n" hx-bind="innerText=count:Number">5</p></article>
</body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p := ByID(doc, "n")
	if p == nil {
		t.Fatal("expected to find #n")
	}
	if bind, _ := p.Attr("hx-bind"); bind != "innerText=count:Number" {
		t.Errorf("unexpected hx-bind %q", bind)
	}
	if p.Parent().Tag != "article" {
		t.Errorf("expected parent article, got %s", p.Parent().Tag)
	}
	if v, _ := p.Prop("innerText"); v != "5" {
		t.Errorf("expected innerText 5, got %v", v)
	}

	var tags []string
	for _, e := range Elements(doc) {
		tags = append(tags, e.Tag)
	}
	if diff := cmp.Diff([]string{"html", "head", "body", "article", "p"}, tags); diff != "" {
		t.Errorf("document order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFragment(t *testing.T) {
	doc, err := ParseFragment(strings.NewReader(`<div hx-state></div><span>x</span>`))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if got := len(WithAttr(doc, "hx-state")); got != 1 {
		t.Errorf("expected 1 hx-state element, got %d", got)
	}
	if got := len(Elements(doc)); got != 2 {
		t.Errorf("expected 2 elements, got %d", got)
	}
}

func TestParseFragmentKeepsRawText(t *testing.T) {
	frag, err := ParseFragment(strings.NewReader(`<p id="a">x</p><script>if (a < b) {}</script>`))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if ByID(frag, "a") == nil {
		t.Error("expected #a in fragment")
	}
	var script *Element
	for _, e := range Elements(frag) {
		if e.Tag == "script" {
			script = e
		}
	}
	if script == nil {
		t.Fatal("expected script element")
	}
	if got := script.TextContent(); got != "if (a < b) {}" {
		t.Errorf("expected raw script text, got %q", got)
	}
}

func TestWalkSkipChildren(t *testing.T) {
	root := El("div", El("section", El("p")), El("aside"))
	var seen []string
	_ = Walk(root, func(e *Element) error {
		seen = append(seen, e.Tag)
		if e.Tag == "section" {
			return SkipChildren
		}
		return nil
	})
	if diff := cmp.Diff([]string{"div", "section", "aside"}, seen); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendChildReparents(t *testing.T) {
	a := El("div")
	b := El("div")
	c := El("span")
	a.AppendChild(c)
	b.AppendChild(c)

	if len(a.Children()) != 0 {
		t.Error("expected child to be removed from old parent")
	}
	if c.Parent() != b {
		t.Error("expected new parent")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{42.0, "42"},
		{1.5, "1.5"},
		{true, "true"},
		{int64(7), "7"},
		{"x", "x"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestStyleRoundTrip(t *testing.T) {
	style := ParseStyle("background-color: red; color:blue;")
	if got := FormatStyle(style); got != "background-color: red; color: blue" {
		t.Errorf("unexpected style text %q", got)
	}
	style["color"] = ""
	if got := FormatStyle(style); got != "background-color: red" {
		t.Errorf("expected empty declaration to be dropped, got %q", got)
	}
}
