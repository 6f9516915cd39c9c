package errors

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

var plain atomic.Bool

// DisableColors turns off ANSI escapes in Format output.
func DisableColors() { plain.Store(true) }

// EnableColors turns ANSI escapes back on.
func EnableColors() { plain.Store(false) }

// paint wraps text in the given escape sequences unless colors are off.
func paint(text string, codes ...string) string {
	if plain.Load() || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format lays the error out for a terminal: a headline, then the element,
// cause, detail, hint and example blocks that are present.
func (e *HxError) Format() string {
	var b strings.Builder

	head := "ERROR: "
	if e.Code != "" {
		head = "ERROR " + e.Code + ": "
	}
	fmt.Fprintf(&b, "\n%s%s\n\n", paint(head, ansiBold, ansiRed), paint(e.Message, ansiBold))

	block := func(lines ...string) {
		for _, l := range lines {
			fmt.Fprintf(&b, "  %s\n", l)
		}
		b.WriteByte('\n')
	}

	if e.Element != "" {
		block(paint("at "+e.Element, ansiCyan))
	}
	if e.Wrapped != nil {
		block(paint(e.Wrapped.Error(), ansiGray))
	}
	if e.Detail != "" {
		block(wrapText(e.Detail, 70)...)
	}
	if e.Suggestion != "" {
		block(paint("Hint: ", ansiCyan) + e.Suggestion)
	}
	if e.Example != "" {
		lines := []string{paint("Example:", ansiCyan)}
		for _, l := range strings.Split(e.Example, "\n") {
			lines = append(lines, "  "+l)
		}
		block(lines...)
	}
	return b.String()
}

// wrapText breaks text into lines of at most width bytes, splitting on
// whitespace. A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	for _, w := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
