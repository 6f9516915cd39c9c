package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listener is notified when a value it read has changed.
type Listener interface {
	// MarkDirty is called once per change, or once per batch.
	MarkDirty()

	// ID identifies the listener for deduplication.
	ID() uint64
}

var lastID atomic.Uint64

// nextID hands out process-wide identifiers for signals, effects and
// runtimes. Identifiers are never reused.
func nextID() uint64 {
	return lastID.Add(1)
}

// cell is the untyped half of a signal: its identity and the listeners that
// read it. Listeners are notified in the order they first subscribed.
type cell struct {
	id uint64

	watchMu  sync.Mutex
	watchers map[uint64]Listener
	watchSeq []uint64
}

func (c *cell) watch(l Listener) {
	id := l.ID()
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if _, ok := c.watchers[id]; ok {
		return
	}
	if c.watchers == nil {
		c.watchers = make(map[uint64]Listener)
	}
	c.watchers[id] = l
	c.watchSeq = append(c.watchSeq, id)
}

func (c *cell) unwatch(id uint64) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if _, ok := c.watchers[id]; !ok {
		return
	}
	delete(c.watchers, id)
	c.watchSeq = slices.DeleteFunc(c.watchSeq, func(v uint64) bool { return v == id })
}

func (c *cell) watcherCount() int {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	return len(c.watchers)
}

// changed tells every watcher the value moved. Inside a batch the watchers
// are parked on the goroutine's frame instead.
func (c *cell) changed() {
	c.watchMu.Lock()
	targets := make([]Listener, 0, len(c.watchSeq))
	for _, id := range c.watchSeq {
		targets = append(targets, c.watchers[id])
	}
	c.watchMu.Unlock()

	f := currentFrame()
	for _, l := range targets {
		if f.batching() {
			f.park(l)
			continue
		}
		l.MarkDirty()
	}
}

// dependent is a listener that remembers which cells it read, so it can
// drop its subscriptions before the next run.
type dependent interface {
	Listener
	dependOn(c *cell)
}

// track subscribes the goroutine's active listener, if any, to c.
func track(c *cell) {
	l := currentFrame().observer
	if l == nil {
		return
	}
	c.watch(l)
	if d, ok := l.(dependent); ok {
		d.dependOn(c)
	}
}
