// Package expression compiles effect attribute text into programs that run
// against one element.
//
// Three engines are available:
//
//   - expr (default) uses github.com/expr-lang/expr. Text is a list of
//     statements separated by ';', each optionally assigning its value:
//     "this.style.color = state.count > 5 ? 'red' : 'black'".
//   - cel uses github.com/google/cel-go with the same statement form and a
//     state("name") function.
//   - js runs the text as a JavaScript function body with github.com/dop251/goja,
//     this bound to the element, under a per-run timeout.
//
// Every state read made while a program runs is a tracked read, so the
// effect running the program reruns when that state changes.
package expression
