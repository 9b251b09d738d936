package store

import (
	"time"

	"anonchat-telegram-bot/internal/domain/model"
)

const dayKeyLayout = "2006-01-02"

// TrackDialogStart bumps today's ledger entry for the user and prunes
// ledger days outside the retention window.
func (s *Store) TrackDialogStart(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackDialogStartLocked(userID)
	s.saveLocked()
}

func (s *Store) trackDialogStartLocked(userID int64) {
	key := s.todayKey()
	bucket := s.dialogStartsByDay[key]
	if bucket == nil {
		bucket = make(map[int64]int)
		s.dialogStartsByDay[key] = bucket
	}
	bucket[userID]++
	s.dropOldDialogDaysLocked()
}

// BeginDialog is the quota check, session replacement and ledger bump as
// one atomic step: concurrent calls for the same user cannot oversubscribe
// the daily limit. On success the previous session (nil when none) is
// returned already finished; on denial nothing changes, including the
// current session. used/limit report the pre-call quota state either way.
func (s *Store) BeginDialog(userID int64, baseLimit int, session *model.ChatSession) (old *model.ChatSession, allowed bool, used, limit int, unlimited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	used = s.dialogStartsByDay[s.todayKey()][userID]
	limit, unlimited = s.dialogLimitLocked(userID, baseLimit)
	if !unlimited && used >= limit {
		return nil, false, used, limit, false
	}
	old = s.sessions[userID]
	if old != nil {
		old.Finish()
	}
	s.sessions[userID] = session
	s.trackDialogStartLocked(userID)
	s.saveLocked()
	return old, true, used, limit, unlimited
}

// DialogStartsToday counts dialog starts for the current UTC calendar day.
// The day rolls over with the date, no timer involved.
func (s *Store) DialogStartsToday(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogStartsByDay[s.todayKey()][userID]
}

// DialogLimitFor returns the user's daily dialog allowance. Subscribed
// users are unlimited (limit 0, unlimited true); everyone else gets the
// base limit plus one per distinct referral.
func (s *Store) DialogLimitFor(userID int64, baseLimit int) (limit int, unlimited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogLimitLocked(userID, baseLimit)
}

func (s *Store) dialogLimitLocked(userID int64, baseLimit int) (int, bool) {
	if _, ok := s.subscriptions[userID]; ok {
		return 0, true
	}
	return baseLimit + s.referralCounts[userID], false
}

// CanStartDialog is a pure read: allowed iff unlimited or used < limit.
func (s *Store) CanStartDialog(userID int64, baseLimit int) (allowed bool, used, limit int, unlimited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	used = s.dialogStartsByDay[s.todayKey()][userID]
	limit, unlimited = s.dialogLimitLocked(userID, baseLimit)
	if unlimited {
		return true, used, 0, true
	}
	return used < limit, used, limit, false
}

func (s *Store) todayKey() string {
	return s.now().Format(dayKeyLayout)
}

func (s *Store) dropOldDialogDaysLocked() {
	cutoff := s.now().AddDate(0, 0, -dialogDayRetention).Format(dayKeyLayout)
	for key := range s.dialogStartsByDay {
		day, err := time.Parse(dayKeyLayout, key)
		if err != nil {
			delete(s.dialogStartsByDay, key)
			continue
		}
		if day.Format(dayKeyLayout) < cutoff {
			delete(s.dialogStartsByDay, key)
		}
	}
}
