// Package clock provides the time source and cancellable callbacks used by
// the inactivity countdown and deferred loan credits.
package clock

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It does not wait for a callback that is
	// already running.
	Stop()
}

// Clock schedules callbacks against a time source.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Every runs f every d until stopped.
	Every(d time.Duration, f func()) Timer
}

// Real is a Clock backed by the runtime timers.
type Real struct{}

// New returns the wall clock.
func New() Real { return Real{} }

// Now returns the current local time.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

// Every starts a ticker goroutine calling f on each tick.
func (Real) Every(d time.Duration, f func()) Timer {
	t := &ticker{t: time.NewTicker(d), done: make(chan struct{})}
	go t.run(f)
	return t
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() { r.t.Stop() }

type ticker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.t.C:
			f()
		}
	}
}

func (t *ticker) Stop() {
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
	})
}
