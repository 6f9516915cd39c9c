// Package binding connects hx-state, hx-bind and hx-effect attributes in a
// dom tree to reactive state.
//
// An element carrying hx-state owns a Store of named cells. hx-bind keeps
// a property path of its element equal to a named cell of the nearest
// owner:
//
//	<div hx-state>
//	  <p hx-bind="innerText=count:Number">5</p>
//	  <span hx-bind="title=count"></span>
//	</div>
//
// A type annotation (":Number") declares the cell in the owner's store and
// seeds it from the element's current value through the named Coercer.
// Without one the cell must be declared by another binding. hx-effect holds
// expression text compiled by an expression.Engine and rerun whenever the
// state it read changes.
//
// Registrar.Setup performs the one-time scan; the resulting effects are
// owned by a Scheduler backed by a reactive.Runtime.
package binding
