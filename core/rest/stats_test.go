package rest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFetchStatsSessionDuration(t *testing.T) {
	s := NewFetchStats()
	assert.Zero(t, s.Snapshot().Duration)

	s.SessionStarted()
	time.Sleep(time.Millisecond)
	assert.Greater(t, s.Snapshot().Duration, time.Duration(0))

	s.SessionEnded()
	frozen := s.Snapshot().Duration
	time.Sleep(time.Millisecond)
	assert.Equal(t, frozen, s.Snapshot().Duration)
}

func TestFetchStatsConcurrentCounting(t *testing.T) {
	s := NewFetchStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.requestsMade.Add(1)
			s.requestsSuccessful.Add(1)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(50), snap.RequestsMade)
	assert.Equal(t, int64(50), snap.RequestsSuccessful)
}
