package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/session"
)

var ErrInvalidInterval = errors.New("scheduler: invalid tick interval")

// Tickable is advanced once per interval by a Driver.
type Tickable interface {
	Tick(ctx context.Context) session.Event
}

// Driver owns the single recurring tick source of one timer. Ticks that
// change nothing (the timer is paused) are not forwarded on C.
type Driver struct {
	mu       sync.Mutex
	target   Tickable
	clock    clock.Clock
	interval time.Duration
	ticker   clock.Ticker
	out      chan session.Event
	resync   chan chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewDriver(target Tickable, clk clock.Clock, interval time.Duration, bufferSize int) (*Driver, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Driver{
		target:   target,
		clock:    clk,
		interval: interval,
		out:      make(chan session.Event, bufferSize),
		resync:   make(chan chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// C delivers tick outcomes. It is closed once Stop returns.
func (d *Driver) C() <-chan session.Event {
	return d.out
}

func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	d.ticker = d.clock.NewTicker(d.interval)
	go d.loop(d.ticker)
}

// Stop halts the loop and releases the ticker. It blocks until the loop has
// exited and is safe to call more than once.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if !d.started {
		close(d.out)
		d.mu.Unlock()
		return
	}
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

// Resync restarts the interval so the next tick is a full period away.
// Call it right after starting the timer. It returns once the loop has
// restarted the ticker, and does nothing before Start or after Stop.
func (d *Driver) Resync() {
	d.mu.Lock()
	running := d.started && !d.stopped
	d.mu.Unlock()
	if !running {
		return
	}
	ack := make(chan struct{})
	select {
	case d.resync <- ack:
	case <-d.doneCh:
		return
	}
	select {
	case <-ack:
	case <-d.doneCh:
	}
}

func (d *Driver) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

func (d *Driver) loop(ticker clock.Ticker) {
	defer close(d.doneCh)
	defer close(d.out)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-ticker.C():
			ev := d.target.Tick(ctx)
			if !ev.Ticked {
				continue
			}
			select {
			case d.out <- ev:
			default:
				atomic.AddUint64(&d.dropped, 1)
			}
		case ack := <-d.resync:
			ticker.Reset(d.interval)
			close(ack)
		case <-d.stopCh:
			return
		}
	}
}
