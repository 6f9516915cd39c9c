// Package reactive provides the signals and effects that state bindings run
// on.
//
// A Signal holds a value. An Effect is a function owned by a Runtime; every
// Signal it reads through Get becomes a dependency, and writing any of those
// signals schedules the effect to run again:
//
//	count := reactive.NewSignal(0)
//	rt := reactive.NewRuntime()
//	rt.CreateEffect("print", func() error {
//		fmt.Println(count.Get())
//		return nil
//	})
//	count.Set(1) // prints 1
//
// Batch defers notifications so that an effect reading several signals runs
// once for a group of writes. Peek and Untracked read without subscribing.
//
// Tracking state is kept per goroutine. Goroutines that read or write
// signals and then exit should call ReleaseGoroutine.
package reactive
