// Package deadline provides the restartable single-shot countdown used to
// limit how long a player may hold the turn.
package deadline

import (
	"sync"
	"time"
)

// Deadline is a single-shot, restartable countdown with one registered
// expiry callback. Each Restart supersedes the previous arming, so a stale
// timer firing concurrently with a Restart never produces a second
// callback invocation for the same arming.
type Deadline struct {
	mu       sync.Mutex
	duration time.Duration
	onExpiry func()
	timer    *time.Timer
	arming   uint64
	closed   bool
}

// New constructs a Deadline that invokes onExpiry when an arming runs out.
// The deadline starts idle; nothing fires until the first Restart.
func New(duration time.Duration, onExpiry func()) *Deadline {
	return &Deadline{
		duration: duration,
		onExpiry: onExpiry,
	}
}

// Restart cancels any pending arming and starts a new one from now.
func (d *Deadline) Restart() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.arming++
	seq := d.arming

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.fire(seq)
	})
}

// Stop cancels the pending arming. The callback will not run for that
// arming unless it has already started executing.
func (d *Deadline) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.arming++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close stops the deadline and releases its timer. Safe to call repeatedly.
func (d *Deadline) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.arming++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Deadline) fire(seq uint64) {
	d.mu.Lock()
	// a stale fire lost the race against a newer Restart or a Stop
	if d.closed || seq != d.arming {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.onExpiry()
}
