package reactive

import "errors"

// ErrCycle is returned by Flush when effects keep scheduling each other for
// more passes than the runtime allows.
var ErrCycle = errors.New("reactive: effect cycle detected")

// ErrDisposed is returned when an effect is created on a disposed runtime.
var ErrDisposed = errors.New("reactive: runtime disposed")

// PanicError wraps a value recovered from a panicking effect.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "reactive: effect panicked: " + err.Error()
	}
	return "reactive: effect panicked"
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
