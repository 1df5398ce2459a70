package combat_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/emberfell/skirmish/internal/game/combat"
)

func TestTurnTimer_Fires(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer(20*time.Millisecond, func() {
		called.Add(1)
	})
	defer tt.Stop()
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestTurnTimer_FiresOnlyOnce(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer(15*time.Millisecond, func() {
		called.Add(1)
	})
	defer tt.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected one firing without reset, got %d", called.Load())
	}
}

func TestTurnTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer(40*time.Millisecond, func() {
		called.Add(1)
	})
	tt.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected no callback after Stop, got %d", called.Load())
	}
}

func TestTurnTimer_Reset_RearmsAfterStop(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer(time.Hour, func() {})
	tt.Stop()
	tt.Reset(20*time.Millisecond, func() {
		called.Add(1)
	})
	defer tt.Stop()
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback after Reset, got %d", called.Load())
	}
}

func TestTurnTimer_Reset_ExtendsDeadline(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer(40*time.Millisecond, func() {
		called.Add(1)
	})
	defer tt.Stop()
	time.Sleep(20 * time.Millisecond)
	tt.Reset(60*time.Millisecond, func() {
		called.Add(1)
	})
	// The original deadline would have been at 40ms.
	time.Sleep(30 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected no firing before the new deadline, got %d", called.Load())
	}
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected one firing after the new deadline, got %d", called.Load())
	}
}

func TestTurnTimer_StopIdempotent(t *testing.T) {
	tt := combat.NewTurnTimer(20*time.Millisecond, func() {})
	tt.Stop()
	tt.Stop()
}
