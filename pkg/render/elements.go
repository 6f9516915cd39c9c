package render

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// voidElements have no closing tag and no children.
var voidElements = set(
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
)

// inlineElements keep their children on one line in pretty output.
var inlineElements = set(
	"a", "abbr", "b", "bdi", "bdo", "br", "button", "cite", "code", "data",
	"dfn", "em", "i", "kbd", "label", "mark", "q", "s", "samp", "small",
	"span", "strong", "sub", "sup", "time", "u", "var", "wbr",
)

// rawTextElements hold text that is emitted without escaping.
var rawTextElements = set("script", "style")

// booleanAttrs are rendered as a bare name when their value is empty.
var booleanAttrs = set(
	"allowfullscreen", "async", "autofocus", "autoplay", "checked",
	"controls", "default", "defer", "disabled", "formnovalidate", "hidden",
	"ismap", "itemscope", "loop", "multiple", "muted", "nomodule",
	"novalidate", "open", "playsinline", "readonly", "required",
	"reversed", "selected",
)

func isVoidElement(tag string) bool    { return voidElements[tag] }
func isInlineElement(tag string) bool  { return inlineElements[tag] }
func isRawTextElement(tag string) bool { return rawTextElements[tag] }
func isBooleanAttr(name string) bool   { return booleanAttrs[name] }
