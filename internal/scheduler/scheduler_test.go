package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresOncePerInterval(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(100*time.Millisecond, func() { ticks.Add(1) })

	s.Start()
	time.Sleep(350 * time.Millisecond)
	s.Stop()

	if got := ticks.Load(); got != 3 {
		t.Errorf("expected 3 ticks after 3 elapsed intervals, got %d", got)
	}
}

func TestScheduler_StopPreventsFurtherTicks(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(50*time.Millisecond, func() { ticks.Add(1) })

	s.Start()
	time.Sleep(175 * time.Millisecond)
	s.Stop()
	after := ticks.Load()

	time.Sleep(150 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks fired after Stop: %d -> %d", after, got)
	}
}

func TestScheduler_StopSafeInAnyState(t *testing.T) {
	s := NewScheduler(50*time.Millisecond, func() {})
	s.Stop() // before Start
	s.Start()
	s.Stop()
	s.Stop() // after a previous Stop

	// Restart after Stop still works.
	var ticks atomic.Int64
	s2 := NewScheduler(50*time.Millisecond, func() { ticks.Add(1) })
	s2.Start()
	s2.Stop()
	s2.Start()
	time.Sleep(120 * time.Millisecond)
	s2.Stop()
	if ticks.Load() == 0 {
		t.Error("expected ticks after restart")
	}
}

func TestCronJobs_RejectsInvalidSpec(t *testing.T) {
	jobs := NewCronJobs()
	if err := jobs.RegisterHistoryRefresh("not a cron spec", func() {}); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := jobs.RegisterHistoryRefresh("0 5 0 * * *", func() {}); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
}
