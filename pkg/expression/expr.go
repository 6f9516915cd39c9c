package expression

import (
	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	exprvm "github.com/expr-lang/expr/vm"
)

// stateFunc is the function state.name reads are rewritten to.
const stateFunc = "__state"

// exprEngine evaluates statements with github.com/expr-lang/expr.
//
// this is a snapshot of the element's properties; assignments go through
// the statement target so the element itself is only written by "=".
// state.name and state["name"] are tracked reads of the owner's state.
type exprEngine struct {
	opts options
}

// NewExprEngine constructs an Engine backed by expr-lang/expr.
func NewExprEngine(opts ...Option) Engine {
	return &exprEngine{opts: applyOptions(opts)}
}

func (e *exprEngine) Name() string {
	return EngineExpr
}

func (e *exprEngine) Compile(source string) (Program, error) {
	stmts, err := parseStatements(source)
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, source, nil, err)
	}

	prog := &exprProgram{source: source}
	for _, st := range stmts {
		p, err := exprlang.Compile(st.expr,
			exprlang.Env(compileEnv()),
			exprlang.AllowUndefinedVariables(),
			exprlang.Patch(stateAccess{}),
		)
		if err != nil {
			return nil, wrapEvaluationError(EngineExpr, source, nil, err)
		}
		prog.steps = append(prog.steps, exprStep{statement: st, program: p})
	}
	return prog, nil
}

func compileEnv() map[string]any {
	return map[string]any{
		"this": map[string]any{},
		stateFunc: func(string) (any, error) {
			return nil, nil
		},
	}
}

// stateAccess rewrites member access on the state identifier into calls so
// each read goes through Scope.State.
type stateAccess struct{}

func (stateAccess) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}
	id, ok := member.Node.(*ast.IdentifierNode)
	if !ok || id.Value != "state" {
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: stateFunc},
		Arguments: []ast.Node{member.Property},
	})
}

type exprStep struct {
	statement
	program *exprvm.Program
}

type exprProgram struct {
	source string
	steps  []exprStep
}

func (p *exprProgram) Source() string {
	return p.source
}

func (p *exprProgram) Run(scope Scope) error {
	for _, step := range p.steps {
		// the vm flattens errors returned by functions, keep the original
		var stateErr error
		env := map[string]any{
			"this": scope.This().Snapshot(),
			stateFunc: func(name string) (any, error) {
				v, err := scope.State(name)
				if err != nil && stateErr == nil {
					stateErr = err
				}
				return v, err
			},
		}
		out, err := exprlang.Run(step.program, env)
		if err != nil {
			if stateErr != nil {
				err = stateErr
			}
			return wrapEvaluationError(EngineExpr, p.source, scope, err)
		}
		if err := step.assign(scope, out); err != nil {
			return wrapEvaluationError(EngineExpr, p.source, scope, err)
		}
	}
	return nil
}
