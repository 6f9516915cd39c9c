package reactive

import (
	"math"
	"sync"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if value := count.Peek(); value != 42 {
			t.Errorf("expected 42, got %d", value)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	if count.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber after repeated reads, got %d", count.Subscribers())
	}

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value is not a change
	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected no notification for equal value, got %d", listener.getDirtyCount())
	}
}

func TestSignalAnyMixedTypes(t *testing.T) {
	cell := NewSignal[any]("5")
	listener := newTestListener()

	WithListener(listener, func() {
		_ = cell.Get()
	})

	// "5" and 5.0 are different values even though they print the same.
	cell.Set(5.0)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after type change, got %d", listener.getDirtyCount())
	}

	cell.Set(5.0)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected equal float to be ignored, got %d", listener.getDirtyCount())
	}

	cell.Set(nil)
	cell.Set(nil)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalNaNIsStable(t *testing.T) {
	cell := NewSignal[any](math.NaN())
	listener := newTestListener()
	WithListener(listener, func() { _ = cell.Get() })

	cell.Set(math.NaN())
	if listener.getDirtyCount() != 0 {
		t.Errorf("expected NaN -> NaN to be unchanged, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	type point struct{ X, Y int }
	p := NewSignal(point{1, 2}).WithEquals(func(a, b point) bool { return a.X == b.X })
	listener := newTestListener()
	WithListener(listener, func() { _ = p.Get() })

	p.Set(point{1, 99})
	if listener.getDirtyCount() != 0 {
		t.Errorf("custom equality should suppress notification, got %d", listener.getDirtyCount())
	}
	p.Set(point{2, 99})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalConcurrentSet(t *testing.T) {
	count := NewSignal(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer ReleaseGoroutine()
			count.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if count.Peek() != 50 {
		t.Errorf("expected 50, got %d", count.Peek())
	}
}
