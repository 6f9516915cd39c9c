package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/reactive"
	"github.com/vango-dev/hxstate/pkg/telemetry"
)

// page is a loaded document with its bindings set up.
type page struct {
	doc      *dom.Element
	reg      *binding.Registrar
	result   *binding.Result
	failures []effectFailure
}

type effectFailure struct {
	Effect string `json:"effect"`
	Error  string `json:"error"`
}

// load reads uri and runs binding setup over it.
func (a *app) load(ctx context.Context, uri string) (*page, error) {
	doc, err := a.cfg.Loader().Load(ctx, uri)
	if err != nil {
		return nil, err
	}

	opts, err := a.bindingOptions()
	if err != nil {
		return nil, err
	}

	p := &page{doc: doc}
	rt := reactive.NewRuntime(
		reactive.WithLogger(a.logger.With("component", "reactive")),
		reactive.WithErrorHandler(func(e *reactive.Effect, err error) {
			a.logger.Warn("effect failed", "effect", e.Name(), "error", err)
			p.failures = append(p.failures, effectFailure{Effect: e.Name(), Error: err.Error()})
		}),
	)
	opts.Scheduler = binding.NewScheduler(rt)
	p.reg = binding.NewRegistrar(opts)

	p.result, err = telemetry.NewTracer("").Setup(ctx, p.reg, doc)
	if err != nil {
		return nil, err
	}
	for _, skipped := range p.result.Skipped {
		a.logger.Warn("binding skipped", "error", skipped)
	}
	return p, nil
}

// assignment is a --set flag: an element id, a state name and a value.
type assignment struct {
	target string
	state  string
	value  any
}

// parseAssignment parses "target.state=value". The value is decoded as
// JSON when possible and kept as a string otherwise.
func parseAssignment(s string) (assignment, error) {
	lhs, raw, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("--set %q: expected target.state=value", s)
	}
	target, state, ok := strings.Cut(strings.TrimSpace(lhs), ".")
	if !ok || target == "" || state == "" {
		return assignment{}, fmt.Errorf("--set %q: expected target.state=value", s)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return assignment{target: target, state: state, value: value}, nil
}

// apply writes each assignment through the store owning its target.
func (p *page) apply(sets []assignment) error {
	for _, s := range sets {
		el := dom.ByID(p.doc, s.target)
		if el == nil {
			return fmt.Errorf("--set: no element with id %q", s.target)
		}
		store, err := p.reg.Scopes().StateOf(el)
		if err != nil {
			return err
		}
		if err := store.Set(s.state, s.value); err != nil {
			return err
		}
	}
	return p.reg.Scheduler().Flush()
}
