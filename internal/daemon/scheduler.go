package daemon

import (
	"sync"
	"time"
)

// Scheduler is the agent's clock and tick source.
type Scheduler interface {
	Now() time.Time

	// Every returns a channel that delivers a tick every d, and a stop func.
	// Slow receivers miss ticks rather than queueing them.
	Every(d time.Duration) (<-chan time.Time, func())
}

// RealScheduler is backed by time.Ticker.
type RealScheduler struct{}

// Now returns the wall clock time.
func (RealScheduler) Now() time.Time {
	return time.Now()
}

// Every starts a time.Ticker.
func (RealScheduler) Every(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ManualScheduler delivers ticks only when told to. Tick blocks until the
// receiver has taken the tick, so after Tick returns the previous tick has
// been fully processed.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	ch      chan time.Time
	started chan struct{}
	once    sync.Once
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		now:     start,
		ch:      make(chan time.Time),
		started: make(chan struct{}),
	}
}

// Now returns the simulated time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Every ignores d; ticks come from Tick.
func (s *ManualScheduler) Every(time.Duration) (<-chan time.Time, func()) {
	s.once.Do(func() { close(s.started) })
	return s.ch, func() {}
}

// Started is closed once a receiver has asked for ticks.
func (s *ManualScheduler) Started() <-chan struct{} {
	return s.started
}

// Advance moves the clock without ticking.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

// Tick advances the clock by d and delivers one tick.
func (s *ManualScheduler) Tick(d time.Duration) {
	s.Advance(d)
	s.ch <- s.Now()
}

// TickN delivers n ticks of d each.
func (s *ManualScheduler) TickN(n int, d time.Duration) {
	for i := 0; i < n; i++ {
		s.Tick(d)
	}
}
