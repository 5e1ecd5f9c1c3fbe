package rest

import (
	"sync"
	"sync/atomic"
	"time"
)

// FetchStats tracks per-connector request counters. Counts are atomic because
// paginated rounds mutate them from concurrent page fetches. The struct is
// owned by one connector session and read-only once the session closes.
type FetchStats struct {
	requestsMade       atomic.Int64
	requestsSuccessful atomic.Int64
	requestsFailed     atomic.Int64
	retries            atomic.Int64

	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
}

// NewFetchStats creates an empty counter set.
func NewFetchStats() *FetchStats {
	return &FetchStats{}
}

// SessionStarted records the start of a connector session.
func (s *FetchStats) SessionStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		s.startTime = time.Now()
	}
}

// SessionEnded records the end of a connector session.
func (s *FetchStats) SessionEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
}

// StatsSnapshot is an immutable copy of the counters for logging and reports.
type StatsSnapshot struct {
	RequestsMade       int64         `json:"requests_made"`
	RequestsSuccessful int64         `json:"requests_successful"`
	RequestsFailed     int64         `json:"requests_failed"`
	Retries            int64         `json:"retries"`
	Duration           time.Duration `json:"duration"`
}

// Snapshot returns a point-in-time copy of the counters.
func (s *FetchStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		RequestsMade:       s.requestsMade.Load(),
		RequestsSuccessful: s.requestsSuccessful.Load(),
		RequestsFailed:     s.requestsFailed.Load(),
		Retries:            s.retries.Load(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.startTime.IsZero() {
		end := s.endTime
		if end.IsZero() {
			end = time.Now()
		}
		snap.Duration = end.Sub(s.startTime)
	}
	return snap
}
