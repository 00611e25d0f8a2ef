package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time, 1), d: d, next: c.now.Add(d)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves time forward and fires due tickers. Like time.Ticker,
// ticks are dropped when the receiver is behind.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		if t.stopped.Load() {
			continue
		}
		for !t.next.After(c.now) {
			select {
			case t.c <- t.next:
			default:
			}
			t.next = t.next.Add(t.d)
		}
	}
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type fakeTicker struct {
	c       chan time.Time
	d       time.Duration
	next    time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// fakeSnapshotter produces numbered records; fail switches it to "no snapshot".
type fakeSnapshotter struct {
	mu     sync.Mutex
	calls  int
	labels []string
	fail   atomic.Bool
	gate   chan struct{} // when set, Capture blocks until it is closed
	clock  Clock
}

func (f *fakeSnapshotter) Capture(ctx context.Context, targetID, description string) (Record, bool) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.labels = append(f.labels, description)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.fail.Load() {
		return Record{}, false
	}
	now := time.Now()
	if f.clock != nil {
		now = f.clock.Now()
	}
	return Record{
		Timestamp:   now,
		ImageData:   fmt.Sprintf("data:image/jpeg;base64,%s-%d", targetID, n),
		Description: description,
	}, true
}

func (f *fakeSnapshotter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSnapshotter) seenLabels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.labels...)
}
