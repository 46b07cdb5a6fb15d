package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Callback outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// CallbackStats counts gateway callbacks by gateway and outcome.
type CallbackStats struct {
	mu       sync.Mutex
	counters map[string]*Counter
}

func NewCallbackStats() *CallbackStats {
	return &CallbackStats{counters: make(map[string]*Counter)}
}

// Callbacks is the process-wide callback counter set served on /metrics.
var Callbacks = NewCallbackStats()

func (s *CallbackStats) Observe(gateway, outcome string) {
	key := gateway + "." + outcome

	s.mu.Lock()
	c, ok := s.counters[key]
	if !ok {
		c = &Counter{}
		s.counters[key] = c
	}
	s.mu.Unlock()

	c.Inc()
}

// Snapshot returns the current counts keyed "<gateway>.<outcome>".
func (s *CallbackStats) Snapshot() map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]uint64, len(s.counters))
	for k, c := range s.counters {
		out[k] = c.Load()
	}
	return out
}
