package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// Coercer converts an initial DOM value into the value stored in a state
// cell.
type Coercer func(v any) (any, error)

// TypeRegistry maps the type names allowed in bind attributes to their
// coercion functions.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]Coercer
}

// NewTypeRegistry returns a registry holding the built-in types:
// Number, Boolean, String, Int and JSON.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{types: make(map[string]Coercer)}
	r.Register("Number", ToNumber)
	r.Register("Boolean", ToBoolean)
	r.Register("String", ToString)
	r.Register("Int", ToInt)
	r.Register("JSON", ToJSON)
	return r
}

// Register adds or replaces a type.
func (r *TypeRegistry) Register(name string, fn Coercer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = fn
}

// Lookup returns the coercer registered under name.
func (r *TypeRegistry) Lookup(name string) (Coercer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.types[name]
	return fn, ok
}

// Names returns the registered type names, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToNumber converts v to a float64 the way JavaScript's Number() does:
// blank strings are 0, booleans are 0 or 1, and anything unparsable is NaN.
func ToNumber(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case bool:
		if x {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		return parseNumber(x), nil
	default:
		return math.NaN(), nil
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	if len(lower) > 2 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])) {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToBoolean applies JavaScript truthiness.
func ToBoolean(v any) (any, error) {
	return dom.Truthy(v), nil
}

// ToString formats v the way it would appear when written to a text
// property.
func ToString(v any) (any, error) {
	return dom.FormatValue(v), nil
}

// ToInt converts v to an int64, truncating toward zero. Values that are not
// finite numbers are an error.
func ToInt(v any) (any, error) {
	n, _ := ToNumber(v)
	f := n.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("binding: cannot convert %q to Int", dom.FormatValue(v))
	}
	return int64(f), nil
}

// ToJSON decodes string values as JSON. Non-string values pass through.
func ToJSON(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("binding: invalid JSON: %w", err)
	}
	return out, nil
}
