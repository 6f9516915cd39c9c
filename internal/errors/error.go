package errors

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/expression"
	"github.com/vango-dev/hxstate/pkg/source"
)

// Category represents the type of error.
type Category string

const (
	CategoryBinding    Category = "binding"
	CategoryExpression Category = "expression"
	CategoryConfig     Category = "config"
	CategorySource     Category = "source"
	CategoryServer     Category = "server"
	CategoryCLI        Category = "cli"
)

// HxError is a coded error with an explanation and a fix suggestion, meant
// for display on a terminal.
type HxError struct {
	// Code is a unique error identifier (e.g., "H101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Element names the element involved, e.g. "p#count".
	Element string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is markup showing the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HxError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HxError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HxError) WithSuggestion(s string) *HxError {
	e.Suggestion = s
	return e
}

// WithExample adds a markup example to the error.
func (e *HxError) WithExample(ex string) *HxError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HxError) WithDetail(d string) *HxError {
	e.Detail = d
	return e
}

// WithElement records the element involved.
func (e *HxError) WithElement(el string) *HxError {
	e.Element = el
	return e
}

// Wrap wraps another error.
func (e *HxError) Wrap(err error) *HxError {
	e.Wrapped = err
	return e
}

// New creates an HxError from a registered error code.
func New(code string) *HxError {
	template, ok := registry[code]
	if !ok {
		return &HxError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HxError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		Example:    template.Example,
	}
}

// Newf creates a new HxError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HxError {
	return &HxError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// sentinels maps package errors to codes, most specific first.
var sentinels = []struct {
	err  error
	code string
}{
	{binding.ErrMalformedBind, "H101"},
	{binding.ErrUnknownType, "H102"},
	{binding.ErrDuplicateState, "H103"},
	{binding.ErrNoOwner, "H104"},
	{binding.ErrUnknownState, "H105"},
	{binding.ErrStoreExists, "H106"},
	{dom.ErrPathNotFound, "H107"},
	{dom.ErrNotObject, "H107"},
	{expression.ErrTimeout, "H111"},
	{source.ErrUnsupportedScheme, "H130"},
	{source.ErrNoS3Client, "H131"},
	{source.ErrTooLarge, "H132"},
}

// FromError classifies err into a coded HxError. An HxError anywhere in the
// chain is returned as is; unrecognised errors get fallback.
func FromError(err error, fallback string) *HxError {
	if err == nil {
		return nil
	}
	var he *HxError
	if errors.As(err, &he) {
		return he
	}

	code := classify(err)
	if code == "" {
		code = fallback
	}

	he = New(code).Wrap(err)
	he.Element = elementOf(err)
	return he
}

func classify(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	var evalErr *expression.EvaluationError
	if errors.As(err, &evalErr) {
		return "H110"
	}
	var fsErr *fs.PathError
	if errors.As(err, &fsErr) {
		return "H133"
	}
	return ""
}

func elementOf(err error) string {
	var be *binding.Error
	if errors.As(err, &be) {
		return be.Element
	}
	var ee *expression.EvaluationError
	if errors.As(err, &ee) {
		return ee.Element
	}
	var pe *dom.PathError
	if errors.As(err, &pe) {
		return pe.Element
	}
	return ""
}
