// Package clock abstracts wall-clock time and recurring tickers so timer code
// can be driven deterministically in tests.
package clock

import "time"

type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Real is the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop() { r.t.Stop() }
func (r *realTicker) Reset(d time.Duration) { r.t.Reset(d) }
