package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// frame is the reactive state of a single goroutine: who is reading and
// which notifications are parked behind an open batch.
type frame struct {
	observer Listener
	depth    int
	parked   []Listener
	parkedID map[uint64]struct{}
}

// frames maps goroutine ids to their *frame.
var frames sync.Map

var goroutinePrefix = []byte("goroutine ")

// goid extracts the goroutine id from the "goroutine N [state]:" line that
// heads the current stack trace.
func goid() uint64 {
	var buf [64]byte
	line := buf[:runtime.Stack(buf[:], false)]
	line = bytes.TrimPrefix(line, goroutinePrefix)
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		line = line[:i]
	}
	id, _ := strconv.ParseUint(string(line), 10, 64)
	return id
}

func currentFrame() *frame {
	id := goid()
	if f, ok := frames.Load(id); ok {
		return f.(*frame)
	}
	f, _ := frames.LoadOrStore(id, &frame{})
	return f.(*frame)
}

// observe installs l as the active listener and returns the one it replaced.
func (f *frame) observe(l Listener) Listener {
	prev := f.observer
	f.observer = l
	return prev
}

func (f *frame) batching() bool {
	return f.depth > 0
}

// park holds l until the outermost batch closes. A listener is parked at
// most once per batch.
func (f *frame) park(l Listener) {
	id := l.ID()
	if _, ok := f.parkedID[id]; ok {
		return
	}
	if f.parkedID == nil {
		f.parkedID = make(map[uint64]struct{})
	}
	f.parkedID[id] = struct{}{}
	f.parked = append(f.parked, l)
}

// unpark returns the parked listeners in the order they were parked and
// clears the queue.
func (f *frame) unpark() []Listener {
	out := f.parked
	f.parked = nil
	clear(f.parkedID)
	return out
}

// WithListener runs fn with l as the listener that signal reads subscribe.
func WithListener(l Listener, fn func()) {
	f := currentFrame()
	prev := f.observe(l)
	defer f.observe(prev)
	fn()
}

// Untracked runs fn without subscribing anything to the signals it reads.
func Untracked(fn func()) {
	WithListener(nil, fn)
}

// ReleaseGoroutine forgets the calling goroutine's frame. Goroutines that
// touched signals call it before exiting.
func ReleaseGoroutine() {
	frames.Delete(goid())
}
