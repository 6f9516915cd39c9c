package expression

import (
	"fmt"
	"regexp"
	"strings"
)

// Statement text for the expr and cel engines:
//
//	program := stmt (';' stmt)*
//	stmt    := [target '='] expr
//	target  := 'this' '.' path | 'state' '.' name | path

type targetKind int

const (
	targetNone targetKind = iota
	targetElement
	targetState
)

type statement struct {
	expr  string
	kind  targetKind
	path  []string
	state string
}

var targetPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)

func parseStatements(src string) ([]statement, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmpty
	}
	var stmts []statement
	for _, part := range splitTopLevel(src, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, err := parseStatement(part)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if len(stmts) == 0 {
		return nil, ErrEmpty
	}
	return stmts, nil
}

func parseStatement(s string) (statement, error) {
	i := assignIndex(s)
	if i < 0 {
		return statement{expr: s}, nil
	}

	lhs := strings.Join(strings.Fields(s[:i]), "")
	rhs := strings.TrimSpace(s[i+1:])
	if rhs == "" {
		return statement{}, fmt.Errorf("missing value after '=' in %q", s)
	}
	if !targetPattern.MatchString(lhs) {
		return statement{}, fmt.Errorf("%w: %q", ErrInvalidTarget, lhs)
	}

	segs := strings.Split(lhs, ".")
	switch segs[0] {
	case "this":
		if len(segs) < 2 {
			return statement{}, fmt.Errorf("%w: cannot assign to this", ErrInvalidTarget)
		}
		return statement{expr: rhs, kind: targetElement, path: segs[1:]}, nil
	case "state":
		if len(segs) != 2 {
			return statement{}, fmt.Errorf("%w: %q, expected state.name", ErrInvalidTarget, lhs)
		}
		return statement{expr: rhs, kind: targetState, state: segs[1]}, nil
	default:
		return statement{expr: rhs, kind: targetElement, path: segs}, nil
	}
}

func (st statement) assign(scope Scope, v any) error {
	v = normalize(v)
	switch st.kind {
	case targetElement:
		return scope.This().SetPath(st.path, v)
	case targetState:
		return scope.SetState(st.state, v)
	}
	return nil
}

// splitTopLevel splits s at sep, ignoring separators inside quotes or
// brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	start := 0
	scan(s, func(i int, depth int) bool {
		if depth == 0 && s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
		return true
	})
	return append(parts, s[start:])
}

// assignIndex returns the index of the first top-level '=' that is an
// assignment rather than part of ==, !=, <= or >=, or -1.
func assignIndex(s string) int {
	found := -1
	skip := false
	scan(s, func(i int, depth int) bool {
		if skip {
			skip = false
			return true
		}
		if depth != 0 || s[i] != '=' {
			return true
		}
		if i+1 < len(s) && s[i+1] == '=' {
			skip = true
			return true
		}
		if i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0 {
			return true
		}
		found = i
		return false
	})
	return found
}

// scan calls fn for every byte of s outside string literals, with the
// current bracket depth. fn returns false to stop.
func scan(s string, fn func(i int, depth int) bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
		if !fn(i, depth) {
			return
		}
	}
}
