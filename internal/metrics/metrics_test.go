package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Load())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.Positive(t, timer.Duration())
}

func TestCallbackStats(t *testing.T) {
	s := NewCallbackStats()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Observe("psbank", OutcomeProcessed)
		}()
	}
	wg.Wait()
	s.Observe("qiwi", OutcomeRejected)

	snap := s.Snapshot()
	assert.Equal(t, uint64(10), snap["psbank.processed"])
	assert.Equal(t, uint64(1), snap["qiwi.rejected"])
	assert.NotContains(t, snap, "robokassa.failed")
}
