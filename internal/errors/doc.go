// Package errors provides coded, actionable error messages for the hxstate
// command line.
//
// Each code (e.g. "H101") maps to a short message, an explanation and a
// suggestion. FromError classifies errors from the binding, expression and
// source packages:
//
//	if err != nil {
//	    fmt.Fprint(os.Stderr, errors.FromError(err, "H100").Format())
//	}
//
// prints
//
//	ERROR H101: Malformed bind expression
//
//	  at p#count
//
//	  Hint: Check for a missing '=' or an empty property or state name
package errors
