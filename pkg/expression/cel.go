package expression

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celEngine evaluates statements with github.com/google/cel-go. State is
// read with the state("name") function; this is a map of the element's
// properties.
type celEngine struct {
	opts options
}

// NewCELEngine constructs an Engine backed by cel-go.
func NewCELEngine(opts ...Option) Engine {
	return &celEngine{opts: applyOptions(opts)}
}

func (e *celEngine) Name() string {
	return EngineCEL
}

func (e *celEngine) Compile(source string) (Program, error) {
	stmts, err := parseStatements(source)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, source, nil, err)
	}

	prog := &celProgram{source: source}
	env, err := celgo.NewEnv(
		celgo.Variable("this", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Function("state",
			celgo.Overload("state_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(prog.state),
			),
		),
		celgo.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, source, nil, err)
	}

	for _, st := range stmts {
		checked, issues := env.Compile(st.expr)
		if issues != nil && issues.Err() != nil {
			return nil, wrapEvaluationError(EngineCEL, source, nil, issues.Err())
		}
		p, err := env.Program(checked)
		if err != nil {
			return nil, wrapEvaluationError(EngineCEL, source, nil, err)
		}
		prog.steps = append(prog.steps, celStep{statement: st, program: p})
	}
	return prog, nil
}

type celStep struct {
	statement
	program celgo.Program
}

// celProgram binds the state function to the scope of the current run.
type celProgram struct {
	source string
	steps  []celStep

	mu       sync.Mutex
	scope    Scope
	stateErr error
}

func (p *celProgram) Source() string {
	return p.source
}

func (p *celProgram) state(arg ref.Val) ref.Val {
	name, ok := arg.Value().(string)
	if !ok {
		return types.NewErr("state name must be a string")
	}
	if p.scope == nil {
		return types.NewErr("state(%q) called outside a run", name)
	}
	v, err := p.scope.State(name)
	if err != nil {
		if p.stateErr == nil {
			p.stateErr = err
		}
		return types.NewErr("%v", err)
	}
	if v == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(v)
}

func (p *celProgram) Run(scope Scope) error {
	p.mu.Lock()
	p.scope = scope
	p.stateErr = nil
	defer func() {
		p.scope = nil
		p.mu.Unlock()
	}()

	for _, step := range p.steps {
		out, _, err := step.program.Eval(map[string]any{
			"this": scope.This().Snapshot(),
		})
		if p.stateErr != nil {
			return wrapEvaluationError(EngineCEL, p.source, scope, p.stateErr)
		}
		if err != nil {
			return wrapEvaluationError(EngineCEL, p.source, scope, err)
		}
		if types.IsError(out) {
			return wrapEvaluationError(EngineCEL, p.source, scope, fmt.Errorf("%v", out))
		}
		v := out.Value()
		if out == types.NullValue {
			v = nil
		}
		if err := step.assign(scope, v); err != nil {
			return wrapEvaluationError(EngineCEL, p.source, scope, err)
		}
	}
	return nil
}
