package reactive

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Effect is a function that re-runs whenever a signal it read on its last
// run changes. Its dependencies are collected afresh on every run, so a
// branch that stops reading a signal stops depending on it.
type Effect struct {
	id   uint64
	name string
	fn   func() error
	rt   *Runtime

	depsMu sync.Mutex
	deps   map[uint64]*cell

	queued   atomic.Bool
	disposed atomic.Bool
	runs     atomic.Int64
}

// MarkDirty schedules the effect on its runtime. Repeated calls before the
// next run are no-ops.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() || e.rt == nil {
		return
	}
	if e.queued.CompareAndSwap(false, true) {
		e.rt.scheduleEffect(e)
	}
}

// ID returns the effect's identifier.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the name the effect was created with.
func (e *Effect) Name() string {
	return e.name
}

// Runs returns how many times the effect has executed.
func (e *Effect) Runs() int64 {
	return e.runs.Load()
}

// Sources returns how many signals the effect read on its last run.
func (e *Effect) Sources() int {
	e.depsMu.Lock()
	defer e.depsMu.Unlock()
	return len(e.deps)
}

func (e *Effect) dependOn(c *cell) {
	e.depsMu.Lock()
	if e.deps == nil {
		e.deps = make(map[uint64]*cell)
	}
	e.deps[c.id] = c
	e.depsMu.Unlock()
}

// forget drops every subscription the effect holds.
func (e *Effect) forget() {
	e.depsMu.Lock()
	deps := e.deps
	e.deps = nil
	e.depsMu.Unlock()

	for _, c := range deps {
		c.unwatch(e.id)
	}
}

// run executes fn as the goroutine's listener. A panic in fn is returned as
// a *PanicError.
func (e *Effect) run() (err error) {
	if e.disposed.Load() {
		return nil
	}
	e.queued.Store(false)
	e.forget()

	f := currentFrame()
	prev := f.observe(e)
	start := time.Now()
	defer func() {
		f.observe(prev)
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
		e.runs.Add(1)
		if e.rt != nil {
			e.rt.observeRun(e, time.Since(start), err)
		}
	}()

	return e.fn()
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}
	e.forget()
}
