/*
scheduler.go - Automated overdue-debt sweep

PURPOSE:
  Periodically flips open debts whose due date has passed into the
  overdue status, so listings and statistics stay accurate without a
  write on every read.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - One UPDATE across all users per sweep; rerunning is harmless
  - Status changes this way are forward-only (overdue debts still
    complete normally once fully paid)

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the sweep is active (default: true)

USAGE:
  sweeper := NewOverdueSweeper(store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - store/sqlite/debts.go: MarkOverdueDebts
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// OverdueStore is the slice of the store the sweeper needs.
type OverdueStore interface {
	MarkOverdueDebts(ctx context.Context, now time.Time) (int64, error)
}

// OverdueSweeper periodically marks past-due debts overdue.
type OverdueSweeper struct {
	Store         OverdueStore
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewOverdueSweeper creates a new sweeper.
func NewOverdueSweeper(store OverdueStore) *OverdueSweeper {
	return &OverdueSweeper{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the background sweep.
func (sw *OverdueSweeper) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	sw.ticker = time.NewTicker(sw.CheckInterval)
	sw.wg.Add(1)

	go sw.run()

	log.Printf("[Sweeper] Started with check interval: %v", sw.CheckInterval)
}

// Stop stops the sweeper.
func (sw *OverdueSweeper) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.ticker != nil {
		sw.ticker.Stop()
		close(sw.stop)
		sw.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (sw *OverdueSweeper) run() {
	defer sw.wg.Done()

	// Run immediately on start
	sw.sweep()

	for {
		select {
		case <-sw.ticker.C:
			sw.sweep()
		case <-sw.stop:
			return
		}
	}
}

func (sw *OverdueSweeper) sweep() {
	n, err := sw.Store.MarkOverdueDebts(context.Background(), time.Now())
	if err != nil {
		log.Printf("[Sweeper] Error marking overdue debts: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Sweeper] Marked %d debts overdue", n)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (sw *OverdueSweeper) RunNow() {
	sw.sweep()
}
