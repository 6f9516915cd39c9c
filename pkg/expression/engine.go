package expression

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// Engine names accepted by New.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// DefaultTimeout bounds a single run of a js program.
const DefaultTimeout = 100 * time.Millisecond

// Scope is what a program sees during one run: the element it is bound to
// and the state of that element's owner.
type Scope interface {
	// This returns the bound element.
	This() *dom.Element

	// Owner returns the nearest element, starting at This, that owns state.
	Owner() (*dom.Element, error)

	// State is a tracked read of a state cell.
	State(name string) (any, error)

	// SetState writes a state cell.
	SetState(name string, value any) error

	// StateNames lists the owner's declared state, or nil without an owner.
	StateNames() []string

	// For returns a scope bound to another element of the same document.
	For(el *dom.Element) Scope
}

// Program is a compiled effect expression.
type Program interface {
	Run(scope Scope) error
	Source() string
}

// Engine compiles effect attribute text.
type Engine interface {
	Name() string
	Compile(source string) (Program, error)
}

// Option configures an engine.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each run of a js program. Other engines ignore it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger behind console.log in js programs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "expression"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

var factories = map[string]func(...Option) Engine{
	EngineExpr: NewExprEngine,
	EngineCEL:  NewCELEngine,
	EngineJS:   NewJSEngine,
}

// New returns the engine registered under name.
func New(name string, opts ...Option) (Engine, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("expression: unknown engine %q (available: %v)", name, Names())
	}
	return f(opts...), nil
}

// Names lists the available engines, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalize maps integer results onto float64 so numbers written by programs
// compare equal to numbers seeded through Number.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
