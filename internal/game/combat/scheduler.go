package combat

import (
	"sync"
	"time"
)

// TurnTimer drives a session's decision window: it fires a callback once
// after the configured interval unless stopped or reset first. The session
// resets it after every resolution and stops it when everyone has
// submitted (early resolution) or combat ends.
//
// TurnTimer is safe for concurrent use. The callback runs on the timer
// goroutine; callers must do their own locking inside it.
type TurnTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewTurnTimer creates and arms a timer that calls onFire after interval.
//
// Precondition: interval > 0; onFire must not be nil.
// Postcondition: onFire will run once unless Stop or Reset intervenes.
func NewTurnTimer(interval time.Duration, onFire func()) *TurnTimer {
	t := &TurnTimer{}
	t.timer = t.arm(interval, onFire)
	return t
}

// arm builds a time.Timer whose callback checks the stopped flag before
// firing. A timer stopped between expiry and callback execution must not
// fire against torn-down state.
func (t *TurnTimer) arm(interval time.Duration, onFire func()) *time.Timer {
	return time.AfterFunc(interval, func() {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
}

// Reset cancels the pending fire and re-arms for interval from now.
//
// Precondition: interval > 0; onFire must not be nil.
func (t *TurnTimer) Reset(interval time.Duration, onFire func()) {
	t.mu.Lock()
	t.stopped = false
	t.timer.Stop()
	t.timer = t.arm(interval, onFire)
	t.mu.Unlock()
}

// Stop prevents any further firing. Idempotent.
//
// Postcondition: onFire will not be called after Stop returns.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.timer.Stop()
}
