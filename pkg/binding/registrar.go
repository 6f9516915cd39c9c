package binding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/expression"
	"github.com/vango-dev/hxstate/pkg/reactive"
)

// Policy decides what happens to a binding that fails to set up.
type Policy string

const (
	// PolicyAbort stops setup at the first error. Parse errors are found
	// before any store is created.
	PolicyAbort Policy = "abort"

	// PolicySkip drops the failing attribute, records the error in
	// Result.Skipped and carries on.
	PolicySkip Policy = "skip"
)

// Options configures a Registrar. Zero values select the defaults.
type Options struct {
	Attrs     AttrNames
	Types     *TypeRegistry
	Engine    expression.Engine
	Policy    Policy
	Scheduler *Scheduler
	Logger    *slog.Logger
}

// Registrar scans a document for binding attributes, builds a store for
// every state owner and an effect for every bind and effect attribute, then
// registers the effects with its Scheduler.
type Registrar struct {
	attrs     AttrNames
	types     *TypeRegistry
	engine    expression.Engine
	policy    Policy
	scopes    *Scopes
	scheduler *Scheduler
	logger    *slog.Logger
}

// NewRegistrar creates a Registrar.
func NewRegistrar(opts Options) *Registrar {
	r := &Registrar{
		attrs:     opts.Attrs.withDefaults(),
		types:     opts.Types,
		engine:    opts.Engine,
		policy:    opts.Policy,
		scopes:    NewScopes(),
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
	if r.types == nil {
		r.types = NewTypeRegistry()
	}
	if r.engine == nil {
		r.engine = expression.NewExprEngine()
	}
	if r.policy == "" {
		r.policy = PolicyAbort
	}
	if r.scheduler == nil {
		r.scheduler = NewScheduler(nil)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "binding")
	}
	return r
}

// Scopes returns the element to store table.
func (r *Registrar) Scopes() *Scopes {
	return r.scopes
}

// Scheduler returns the scheduler effects are registered with.
func (r *Registrar) Scheduler() *Scheduler {
	return r.scheduler
}

// Attrs returns the attribute names in use.
func (r *Registrar) Attrs() AttrNames {
	return r.attrs
}

// Result summarises a Setup call.
type Result struct {
	Stores     int
	Bindings   int
	Effects    int
	Registered []*reactive.Effect
	Skipped    []error
	Duration   time.Duration
}

// SkippedErr joins the skipped errors, or returns nil when nothing was
// skipped.
func (r *Result) SkippedErr() error {
	return errors.Join(r.Skipped...)
}

// plan holds the parsed attributes of one element.
type plan struct {
	bindRaw   string
	bind      *BindSpec
	effectRaw string
	program   expression.Program
}

// Setup walks root in document order. For each element it attaches a store
// when the state attribute is present, then builds the bind write-back,
// then the effect expression. When the walk completes every effect is
// registered in the order it was built.
//
// Failures during the walk are not rolled back: stores already attached
// stay attached, but no effect is registered.
func (r *Registrar) Setup(ctx context.Context, root *dom.Element) (*Result, error) {
	start := time.Now()
	res := &Result{}
	defer func() {
		res.Duration = time.Since(start)
	}()

	plans, err := r.parse(root, res)
	if err != nil {
		return res, err
	}

	var pending []Effect
	err = dom.Walk(root, func(el *dom.Element) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if el.HasAttr(r.attrs.State) {
			if _, err := r.scopes.Attach(el); err != nil {
				return err
			}
			res.Stores++
		}

		p := plans[el]
		if p.bind != nil {
			eff, err := r.bindEffect(el, p)
			switch {
			case err == nil:
				pending = append(pending, eff)
				res.Bindings++
			case r.policy == PolicySkip:
				r.skip(res, err)
			default:
				return err
			}
		}
		if p.program != nil {
			pending = append(pending, r.programEffect(el, p))
			res.Effects++
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	registered, err := r.scheduler.Register(pending...)
	res.Registered = registered
	if err != nil {
		return res, err
	}

	r.logger.Debug("setup complete",
		"stores", res.Stores,
		"bindings", res.Bindings,
		"effects", res.Effects,
		"skipped", len(res.Skipped),
	)
	return res, nil
}

// parse checks every bind and effect attribute before anything is built.
func (r *Registrar) parse(root *dom.Element, res *Result) (map[*dom.Element]plan, error) {
	plans := make(map[*dom.Element]plan)
	err := dom.Walk(root, func(el *dom.Element) error {
		var p plan
		if raw, ok := el.Attr(r.attrs.Bind); ok {
			spec, err := ParseBind(raw, r.types)
			if err != nil {
				err = &Error{Op: "parse", Element: el.Describe(), Attr: r.attrs.Bind, Value: raw, Err: err}
				if r.policy != PolicySkip {
					return err
				}
				r.skip(res, err)
			} else {
				p.bindRaw = raw
				p.bind = &spec
			}
		}
		if raw, ok := el.Attr(r.attrs.Effect); ok {
			prog, err := r.engine.Compile(raw)
			if err != nil {
				err = &Error{Op: "parse", Element: el.Describe(), Attr: r.attrs.Effect, Value: raw, Err: err}
				if r.policy != PolicySkip {
					return err
				}
				r.skip(res, err)
			} else {
				p.effectRaw = raw
				p.program = prog
			}
		}
		if p.bind != nil || p.program != nil {
			plans[el] = p
		}
		return nil
	})
	return plans, err
}

func (r *Registrar) skip(res *Result, err error) {
	res.Skipped = append(res.Skipped, err)
	r.logger.Warn("binding skipped", "error", err)
}

// bindEffect seeds typed state and builds the write-back closure.
func (r *Registrar) bindEffect(el *dom.Element, p plan) (Effect, error) {
	spec := *p.bind
	fail := func(op string, err error) error {
		return &Error{Op: op, Element: el.Describe(), Attr: r.attrs.Bind, Value: p.bindRaw, Err: err}
	}

	if spec.Typed() {
		owner, err := r.scopes.FindOwner(el)
		if err != nil {
			return Effect{}, fail("seed", ErrNoOwner)
		}
		initial, err := el.GetPath(spec.Path)
		if err != nil {
			return Effect{}, fail("seed", err)
		}
		value, err := spec.Coerce(initial)
		if err != nil {
			return Effect{}, fail("seed", err)
		}
		store, _ := r.scopes.StoreOf(owner)
		if err := store.Declare(spec.State, value); err != nil {
			return Effect{}, fail("declare", err)
		}
	}

	return Effect{
		Element: el,
		Kind:    KindBind,
		Source:  p.bindRaw,
		Run: func() error {
			store, err := r.scopes.StateOf(el)
			if err != nil {
				return fail("bind", ErrNoOwner)
			}
			v, err := store.Get(spec.State)
			if err != nil {
				return fail("bind", err)
			}
			if err := el.SetPath(spec.Path, v); err != nil {
				return fail("bind", err)
			}
			return nil
		},
	}, nil
}

func (r *Registrar) programEffect(el *dom.Element, p plan) Effect {
	scope := &elementScope{el: el, scopes: r.scopes}
	return Effect{
		Element: el,
		Kind:    KindEffect,
		Source:  p.effectRaw,
		Run: func() error {
			if err := p.program.Run(scope); err != nil {
				return &Error{Op: "effect", Element: el.Describe(), Attr: r.attrs.Effect, Value: p.effectRaw, Err: err}
			}
			return nil
		},
	}
}

// elementScope evaluates effect expressions against one element. State is
// resolved through the owner chain on every access.
type elementScope struct {
	el     *dom.Element
	scopes *Scopes
}

func (s *elementScope) This() *dom.Element {
	return s.el
}

func (s *elementScope) State(name string) (any, error) {
	store, err := s.scopes.StateOf(s.el)
	if err != nil {
		return nil, err
	}
	return store.Get(name)
}

func (s *elementScope) SetState(name string, value any) error {
	store, err := s.scopes.StateOf(s.el)
	if err != nil {
		return err
	}
	return store.Set(name, value)
}

func (s *elementScope) Owner() (*dom.Element, error) {
	return s.scopes.FindOwner(s.el)
}

func (s *elementScope) For(el *dom.Element) expression.Scope {
	return &elementScope{el: el, scopes: s.scopes}
}

func (s *elementScope) StateNames() []string {
	store, err := s.scopes.StateOf(s.el)
	if err != nil {
		return nil
	}
	return store.Names()
}
