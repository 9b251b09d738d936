package store

import "time"

// IsRateLimited applies a per-user sliding window: once limit accepted
// actions sit inside the window the call is rejected without recording a
// new event, so the window never grows past capacity. Accepted calls
// record "now". Rate-limit buckets are memory-only and not persisted.
func (s *Store) IsRateLimited(userID int64, limit int, period time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	bucket := trimOld(s.rateLimitEvents[userID], now, period)
	if len(bucket) >= limit {
		s.rateLimitEvents[userID] = bucket
		return true
	}
	s.rateLimitEvents[userID] = append(bucket, now)
	return false
}
