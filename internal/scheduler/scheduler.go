// Package scheduler owns the periodic triggers: a fixed-interval loop for
// the current price and a cron job for the daily history refresh.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler invokes onTick on a fixed interval, independent of user
// interaction. The tick handler reads the selected currency fresh each time,
// so ticks follow the selection rather than the currency at start time.
type Scheduler struct {
	interval time.Duration
	onTick   func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(interval time.Duration, onTick func()) *Scheduler {
	return &Scheduler{interval: interval, onTick: onTick}
}

// Start begins the repeating loop: wait one interval, fire, repeat. A no-op
// when already running. Missed ticks are not replayed.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	log.Printf("[INFO] refresh scheduler started (interval %s)", s.interval)
}

// Stop cancels the loop and waits for it to exit, so no tick fires after
// Stop returns. Safe to call in any state, including before Start and after
// a previous Stop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("[INFO] refresh scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick and a cancellation can become ready together;
			// never fire after Stop.
			if ctx.Err() != nil {
				return
			}
			s.onTick()
		}
	}
}

// CronJobs runs the calendar-based maintenance jobs.
type CronJobs struct {
	Cron *cron.Cron
}

// NewCronJobs creates an empty cron runner (six-field specs, with seconds).
func NewCronJobs() *CronJobs {
	return &CronJobs{Cron: cron.New(cron.WithSeconds())}
}

// RegisterHistoryRefresh schedules a full historical-series refetch. Daily
// candles only change at day close, so this runs shortly after midnight
// rather than on the price-refresh interval.
func (c *CronJobs) RegisterHistoryRefresh(spec string, refresh func()) error {
	if _, err := c.Cron.AddFunc(spec, func() {
		log.Println("[INFO] running scheduled history refresh")
		refresh()
	}); err != nil {
		return fmt.Errorf("register history refresh: %w", err)
	}
	return nil
}

// Start starts the cron runner.
func (c *CronJobs) Start() {
	c.Cron.Start()
	log.Println("[INFO] cron jobs started")
}

// Stop stops the cron runner gracefully.
func (c *CronJobs) Stop() {
	c.Cron.Stop()
	log.Println("[INFO] cron jobs stopped")
}
