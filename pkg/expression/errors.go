package expression

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when compiling blank text.
	ErrEmpty = errors.New("expression must not be empty")

	// ErrInvalidTarget is returned for an assignment whose left-hand side is
	// not this.path, state.name or a bare property path.
	ErrInvalidTarget = errors.New("invalid assignment target")

	// ErrTimeout is returned when a js program is interrupted.
	ErrTimeout = errors.New("evaluation timed out")
)

// EvaluationError captures engine metadata alongside the originating error.
type EvaluationError struct {
	Engine  string
	Expr    string
	Element string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Element != "" {
		return fmt.Sprintf("expression: %s engine expr=%q element=%s: %v", e.Engine, e.Expr, e.Element, e.Err)
	}
	return fmt.Sprintf("expression: %s engine expr=%q: %v", e.Engine, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapEvaluationError(engine, expr string, scope Scope, err error) error {
	if err == nil {
		return nil
	}

	element := ""
	if scope != nil && scope.This() != nil {
		element = scope.This().Describe()
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Element == "" {
			evalErr.Element = element
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Element: element,
		Err:     err,
	}
}
