package binding

import (
	"fmt"
	"sync"

	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/reactive"
)

// EffectKind distinguishes bind write-backs from effect expressions.
type EffectKind int

const (
	// KindBind writes a state value to a property path.
	KindBind EffectKind = iota
	// KindEffect evaluates an effect expression.
	KindEffect
)

func (k EffectKind) String() string {
	switch k {
	case KindBind:
		return "bind"
	case KindEffect:
		return "effect"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// Effect is a closure bound to one element, ready to be handed to the
// Scheduler.
type Effect struct {
	Element *dom.Element
	Kind    EffectKind
	Source  string // attribute text the closure was built from
	Run     func() error
}

// Name identifies the effect in logs and metrics.
func (e Effect) Name() string {
	return e.Kind.String() + " " + e.Element.Describe()
}

// Scheduler hands effects to a reactive runtime, which runs each one
// immediately and again whenever a cell it read changes.
type Scheduler struct {
	rt *reactive.Runtime

	mu      sync.Mutex
	effects []*reactive.Effect
}

// NewScheduler returns a Scheduler over rt, or over a new runtime with
// default options when rt is nil.
func NewScheduler(rt *reactive.Runtime) *Scheduler {
	if rt == nil {
		rt = reactive.NewRuntime()
	}
	return &Scheduler{rt: rt}
}

// Register hands effects to the runtime in order. Each runs once before
// Register moves on to the next. Errors from effect runs go to the runtime's
// error handler; Register only fails when the runtime is disposed or a run
// triggers a rerun cycle.
func (s *Scheduler) Register(effects ...Effect) ([]*reactive.Effect, error) {
	registered := make([]*reactive.Effect, 0, len(effects))
	for _, e := range effects {
		re, err := s.rt.CreateEffect(e.Name(), e.Run)
		if re != nil {
			registered = append(registered, re)
		}
		if err != nil {
			s.track(registered)
			return registered, fmt.Errorf("binding: register %s: %w", e.Name(), err)
		}
	}
	s.track(registered)
	return registered, nil
}

func (s *Scheduler) track(effects []*reactive.Effect) {
	s.mu.Lock()
	s.effects = append(s.effects, effects...)
	s.mu.Unlock()
}

// Flush runs pending reruns. Only needed when the runtime was created with
// auto-flush disabled, or after writes made inside reactive.Batch.
func (s *Scheduler) Flush() error {
	return s.rt.Flush()
}

// Runtime returns the underlying runtime.
func (s *Scheduler) Runtime() *reactive.Runtime {
	return s.rt
}

// Effects returns the effects registered so far, in registration order.
func (s *Scheduler) Effects() []*reactive.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*reactive.Effect(nil), s.effects...)
}

// Dispose stops every registered effect.
func (s *Scheduler) Dispose() {
	s.rt.Dispose()
}
