package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced clock. Tickers created from it fire only when
// Advance moves time past their next deadline.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ft := &fakeTicker{clock: f, ch: make(chan time.Time, 1), period: d, next: f.now.Add(d)}
	f.tickers = append(f.tickers, ft)
	return ft
}

// Active reports how many tickers have not been stopped.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing every ticker deadline crossed on
// the way. Like time.Ticker, a tick is dropped if the previous one has not
// been received.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.now = target
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	for _, t := range tickers {
		t.fireUntil(target)
	}
}

type fakeTicker struct {
	clock   *Fake
	mu      sync.Mutex
	ch      chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

func (t *fakeTicker) Reset(d time.Duration) {
	now := t.clock.Now()
	t.mu.Lock()
	t.period = d
	t.next = now.Add(d)
	t.mu.Unlock()
	t.clock.mu.Lock()
	t.stopped = false
	t.clock.mu.Unlock()
}

func (t *fakeTicker) fireUntil(target time.Time) {
	t.clock.mu.Lock()
	stopped := t.stopped
	t.clock.mu.Unlock()
	if stopped {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.next.After(target) {
		select {
		case t.ch <- t.next:
		default:
		}
		t.next = t.next.Add(t.period)
	}
}
