package expression

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/vango-dev/hxstate/pkg/dom"
)

// jsEngine runs effect text as JavaScript with github.com/dop251/goja, with
// this bound to the element. The globals $state(el), $component(el) and
// state mirror the helpers available to browser-side effects.
type jsEngine struct {
	opts options
}

// NewJSEngine constructs an Engine backed by goja.
func NewJSEngine(opts ...Option) Engine {
	return &jsEngine{opts: applyOptions(opts)}
}

func (e *jsEngine) Name() string {
	return EngineJS
}

func (e *jsEngine) Compile(source string) (Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, wrapEvaluationError(EngineJS, source, nil, ErrEmpty)
	}
	program, err := goja.Compile("hx-effect", "(function() {\n"+source+"\n})", false)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, source, nil, err)
	}
	return &jsProgram{
		source:  source,
		program: program,
		timeout: e.opts.timeout,
		logger:  e.opts.logger,
	}, nil
}

type jsProgram struct {
	source  string
	program *goja.Program
	timeout time.Duration
	logger  *slog.Logger
}

func (p *jsProgram) Source() string {
	return p.source
}

func (p *jsProgram) Run(scope Scope) error {
	vm := goja.New()
	run := &jsRun{vm: vm, scope: scope, elements: make(map[*goja.Object]*dom.Element)}
	run.install(p.logger)

	timer := time.AfterFunc(p.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	defer timer.Stop()

	fnValue, err := vm.RunProgram(p.program)
	if err != nil {
		return wrapEvaluationError(EngineJS, p.source, scope, jsError(err))
	}
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return wrapEvaluationError(EngineJS, p.source, scope, fmt.Errorf("program did not compile to a function"))
	}
	if _, err := fn(run.element(scope.This())); err != nil {
		if run.err != nil {
			err = run.err
		}
		return wrapEvaluationError(EngineJS, p.source, scope, jsError(err))
	}
	return nil
}

func jsError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return ErrTimeout
	}
	return err
}

// jsRun is the per-run binding between the goja runtime and the document.
type jsRun struct {
	vm       *goja.Runtime
	scope    Scope
	elements map[*goja.Object]*dom.Element

	// err is the first Go error thrown into the script.
	err error
}

func (r *jsRun) install(logger *slog.Logger) {
	r.vm.Set("$state", func(call goja.FunctionCall) goja.Value {
		return r.vm.NewDynamicObject(&jsState{run: r, scope: r.scope.For(r.target(call))})
	})
	r.vm.Set("$component", func(call goja.FunctionCall) goja.Value {
		owner, err := r.scope.For(r.target(call)).Owner()
		if err != nil {
			r.throw(err)
		}
		return r.element(owner)
	})
	r.vm.Set("state", r.vm.NewDynamicObject(&jsState{run: r, scope: r.scope}))

	console := r.vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]any, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			args = append(args, a.Export())
		}
		logger.Debug("console.log", "element", r.scope.This().Describe(), "args", args)
		return goja.Undefined()
	})
	r.vm.Set("console", console)
}

// target returns the element passed as the first argument, or this.
func (r *jsRun) target(call goja.FunctionCall) *dom.Element {
	if obj, ok := call.Argument(0).(*goja.Object); ok {
		if el, ok := r.elements[obj]; ok {
			return el
		}
		panic(r.vm.NewTypeError("argument is not an element"))
	}
	return r.scope.This()
}

func (r *jsRun) element(el *dom.Element) goja.Value {
	if el == nil || !el.IsElement() {
		return goja.Null()
	}
	obj := r.vm.NewDynamicObject(&jsElement{run: r, el: el})
	r.elements[obj] = el
	return obj
}

func (r *jsRun) value(el *dom.Element, path []string, v any) goja.Value {
	switch v.(type) {
	case dom.Object, map[string]any:
		return r.vm.NewDynamicObject(&jsObject{run: r, el: el, path: path})
	case nil:
		return goja.Undefined()
	}
	return r.vm.ToValue(v)
}

func (r *jsRun) throw(err error) {
	if r.err == nil {
		r.err = err
	}
	panic(r.vm.NewGoError(err))
}

func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return normalize(v.Export())
}

// jsElement exposes an element's properties and a few DOM methods.
type jsElement struct {
	run *jsRun
	el  *dom.Element
}

var elementMethods = map[string]bool{
	"getAttribute":  true,
	"setAttribute":  true,
	"hasAttribute":  true,
	"parentElement": true,
	"parentNode":    true,
	"children":      true,
}

func (o *jsElement) Get(key string) goja.Value {
	r := o.run
	switch key {
	case "getAttribute":
		return r.vm.ToValue(func(name string) goja.Value {
			v, ok := o.el.Attr(name)
			if !ok {
				return goja.Null()
			}
			return r.vm.ToValue(v)
		})
	case "setAttribute":
		return r.vm.ToValue(func(name, value string) {
			o.el.SetAttr(name, value)
		})
	case "hasAttribute":
		return r.vm.ToValue(func(name string) bool {
			return o.el.HasAttr(name)
		})
	case "parentElement", "parentNode":
		return r.element(o.el.Parent())
	case "children":
		var items []any
		for _, c := range o.el.Children() {
			if c.IsElement() {
				items = append(items, r.element(c))
			}
		}
		return r.vm.NewArray(items...)
	}
	v, ok := o.el.Prop(key)
	if !ok {
		return goja.Undefined()
	}
	return r.value(o.el, []string{key}, v)
}

func (o *jsElement) Set(key string, val goja.Value) bool {
	if err := o.el.SetPath([]string{key}, export(val)); err != nil {
		o.run.throw(err)
	}
	return true
}

func (o *jsElement) Has(key string) bool {
	if elementMethods[key] {
		return true
	}
	_, ok := o.el.Prop(key)
	return ok
}

func (o *jsElement) Delete(string) bool {
	return false
}

func (o *jsElement) Keys() []string {
	snap := o.el.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsObject is a nested property object such as style or dataset. Writes go
// through the element so they are reflected when rendering.
type jsObject struct {
	run  *jsRun
	el   *dom.Element
	path []string
}

func (o *jsObject) child(key string) []string {
	p := make([]string, len(o.path)+1)
	copy(p, o.path)
	p[len(o.path)] = key
	return p
}

func (o *jsObject) Get(key string) goja.Value {
	path := o.child(key)
	v, err := o.el.GetPath(path)
	if err != nil {
		return goja.Undefined()
	}
	return o.run.value(o.el, path, v)
}

func (o *jsObject) Set(key string, val goja.Value) bool {
	if err := o.el.SetPath(o.child(key), export(val)); err != nil {
		o.run.throw(err)
	}
	return true
}

func (o *jsObject) Has(key string) bool {
	v, err := o.el.GetPath(o.child(key))
	return err == nil && v != nil
}

func (o *jsObject) Delete(key string) bool {
	return o.Set(key, goja.Undefined())
}

func (o *jsObject) Keys() []string {
	v, err := o.el.GetPath(o.path)
	if err != nil {
		return nil
	}
	var keys []string
	switch m := v.(type) {
	case dom.Object:
		for k := range m {
			keys = append(keys, k)
		}
	case map[string]any:
		for k := range m {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// jsState exposes an owner's state. Reads are tracked.
type jsState struct {
	run   *jsRun
	scope Scope
}

func (s *jsState) Get(name string) goja.Value {
	v, err := s.scope.State(name)
	if err != nil {
		s.run.throw(err)
	}
	if v == nil {
		return goja.Null()
	}
	return s.run.vm.ToValue(v)
}

func (s *jsState) Set(name string, val goja.Value) bool {
	if err := s.scope.SetState(name, export(val)); err != nil {
		s.run.throw(err)
	}
	return true
}

func (s *jsState) Has(name string) bool {
	for _, n := range s.scope.StateNames() {
		if n == name {
			return true
		}
	}
	return false
}

func (s *jsState) Delete(string) bool {
	return false
}

func (s *jsState) Keys() []string {
	return s.scope.StateNames()
}
