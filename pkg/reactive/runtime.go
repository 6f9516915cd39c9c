package reactive

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxFlushPasses bounds how many times Flush re-drains the pending
// queue when effects keep scheduling other effects.
const DefaultMaxFlushPasses = 100

// ErrorHandler receives errors returned (or panics raised) by effect runs.
type ErrorHandler func(e *Effect, err error)

// RunObserver is called after every effect run.
type RunObserver func(e *Effect, d time.Duration, err error)

// Runtime owns a set of effects and runs them when their dependencies change.
//
// Scheduled effects run in the order they were scheduled. With auto-flush
// enabled (the default) a signal write outside a Batch runs the affected
// effects before Set returns; otherwise they wait for Flush.
type Runtime struct {
	id uint64

	// effects owned by this runtime.
	effects   []*Effect
	effectsMu sync.Mutex

	// pendingEffects are effects scheduled to run on the next flush.
	pendingEffects   []*Effect
	pendingEffectsMu sync.Mutex

	// flushing is held by the goroutine currently draining pendingEffects.
	flushing atomic.Bool

	disposed atomic.Bool

	autoFlush bool
	maxPasses int
	onError   ErrorHandler
	onRun     RunObserver
	logger    *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithAutoFlush controls whether signal writes flush scheduled effects
// synchronously.
func WithAutoFlush(enabled bool) RuntimeOption {
	return func(r *Runtime) {
		r.autoFlush = enabled
	}
}

// WithMaxFlushPasses sets the cycle guard used by Flush.
func WithMaxFlushPasses(n int) RuntimeOption {
	return func(r *Runtime) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// WithErrorHandler sets the handler for effect errors.
// The default handler logs the error.
func WithErrorHandler(fn ErrorHandler) RuntimeOption {
	return func(r *Runtime) {
		r.onError = fn
	}
}

// WithRunObserver installs a hook called after every effect run.
func WithRunObserver(fn RunObserver) RuntimeOption {
	return func(r *Runtime) {
		r.onRun = fn
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		id:        nextID(),
		autoFlush: true,
		maxPasses: DefaultMaxFlushPasses,
		logger:    slog.Default().With("component", "reactive"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = func(e *Effect, err error) {
			r.logger.Error("effect failed", "effect", e.Name(), "error", err)
		}
	}
	return r
}

// ID returns the unique identifier for this Runtime.
func (r *Runtime) ID() uint64 {
	return r.id
}

// CreateEffect registers fn as an effect and runs it once to establish its
// dependencies. Errors from any run go to the runtime's ErrorHandler; the
// effect stays registered and keeps re-running on its own triggers.
//
// When called from inside another effect the first run happens after the
// current effect returns, in the same flush.
func (r *Runtime) CreateEffect(name string, fn func() error) (*Effect, error) {
	if r.disposed.Load() {
		return nil, ErrDisposed
	}

	e := &Effect{
		id:   nextID(),
		name: name,
		fn:   fn,
		rt:   r,
	}

	r.effectsMu.Lock()
	r.effects = append(r.effects, e)
	r.effectsMu.Unlock()

	e.queued.Store(true)
	r.enqueue(e)
	if err := r.Flush(); err != nil {
		return e, err
	}
	return e, nil
}

// Effects returns the number of effects owned by the runtime.
func (r *Runtime) Effects() int {
	r.effectsMu.Lock()
	defer r.effectsMu.Unlock()
	return len(r.effects)
}

func (r *Runtime) enqueue(e *Effect) {
	r.pendingEffectsMu.Lock()
	r.pendingEffects = append(r.pendingEffects, e)
	r.pendingEffectsMu.Unlock()
}

// scheduleEffect queues e and, with auto-flush, runs the queue unless a
// batch is open on this goroutine.
func (r *Runtime) scheduleEffect(e *Effect) {
	if r.disposed.Load() {
		return
	}
	r.enqueue(e)
	if r.autoFlush && !currentFrame().batching() {
		if err := r.Flush(); err != nil {
			r.logger.Error("flush failed", "error", err)
		}
	}
}

// HasPendingEffects reports whether effects are waiting for a flush.
func (r *Runtime) HasPendingEffects() bool {
	r.pendingEffectsMu.Lock()
	defer r.pendingEffectsMu.Unlock()
	return len(r.pendingEffects) > 0
}

// Flush runs scheduled effects until none are pending.
//
// Only one goroutine drains the queue at a time; a Flush that finds another
// flush in progress returns immediately and its effects are picked up by the
// running flush. Returns ErrCycle when the queue is still non-empty after the
// configured number of passes; the remaining effects are dropped from the
// queue but stay subscribed.
func (r *Runtime) Flush() error {
	for {
		if !r.flushing.CompareAndSwap(false, true) {
			return nil
		}
		err := r.drain()
		r.flushing.Store(false)
		if err != nil {
			return err
		}
		// A write from another goroutine may have queued work after the
		// last pass observed an empty queue.
		if !r.HasPendingEffects() {
			return nil
		}
	}
}

func (r *Runtime) drain() error {
	for pass := 0; ; pass++ {
		r.pendingEffectsMu.Lock()
		effects := r.pendingEffects
		r.pendingEffects = nil
		r.pendingEffectsMu.Unlock()

		if len(effects) == 0 {
			return nil
		}
		if pass >= r.maxPasses {
			for _, e := range effects {
				e.queued.Store(false)
			}
			return ErrCycle
		}

		for _, e := range effects {
			if r.disposed.Load() {
				return nil
			}
			if !e.queued.Load() {
				continue
			}
			if err := e.run(); err != nil {
				r.onError(e, err)
			}
		}
	}
}

func (r *Runtime) observeRun(e *Effect, d time.Duration, err error) {
	if r.onRun != nil {
		r.onRun(e, d, err)
	}
}

// Dispose unsubscribes every effect and drops pending work.
// After disposal, CreateEffect returns ErrDisposed.
func (r *Runtime) Dispose() {
	if r.disposed.Swap(true) {
		return
	}

	r.effectsMu.Lock()
	effects := r.effects
	r.effects = nil
	r.effectsMu.Unlock()

	for _, e := range effects {
		e.dispose()
	}

	r.pendingEffectsMu.Lock()
	r.pendingEffects = nil
	r.pendingEffectsMu.Unlock()
}
