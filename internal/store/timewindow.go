package store

import "time"

// Rolling-counter retention windows.
const (
	eventWindow        = 24 * time.Hour
	dialogDayRetention = 14 // calendar days kept in the dialog-start ledger
)

// trimOld drops entries older than ttl from the head of a time-ordered
// event queue. Entries are appended at "now", so the queue is monotonically
// non-decreasing and trimming stops at the first fresh entry.
func trimOld(events []time.Time, now time.Time, ttl time.Duration) []time.Time {
	i := 0
	for i < len(events) && now.Sub(events[i]) > ttl {
		i++
	}
	if i == 0 {
		return events
	}
	return append(events[:0], events[i:]...)
}
