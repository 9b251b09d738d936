package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// snapshotDoc is the on-disk snapshot envelope. JSON object keys must be
// strings, so id-keyed maps use the decimal string form of the id.
type snapshotDoc struct {
	Users                      []int64                   `json:"users"`
	MessageEvents              []string                  `json:"message_events"`
	StartEvents                []string                  `json:"start_events"`
	KnownUsernames             map[string]int64          `json:"known_usernames"`
	Subscriptions              []int64                   `json:"subscriptions"`
	DialogStartsByDay          map[string]map[string]int `json:"dialog_starts_by_day"`
	ReferrerByUser             map[string]int64          `json:"referrer_by_user"`
	ReferralCounts             map[string]int            `json:"referral_counts"`
	PaymentRequests            []string                  `json:"payment_requests"`
	SubscriptionsGrantedEvents []string                  `json:"subscriptions_granted_events"`
	PaymentRequestsTotal       *int                      `json:"payment_requests_total"`
	SubscriptionsGrantedTotal  *int                      `json:"subscriptions_granted_total"`
}

// Save flushes the current state to disk. Every mutating operation
// already snapshots on its own; this is for the final flush on shutdown.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

// saveLocked serializes the whole state and atomically replaces the
// snapshot file (temp file + rename). Write failures leave the in-memory
// state authoritative and are only logged.
func (s *Store) saveLocked() {
	doc := snapshotDoc{
		Users:                      sortedIDs(s.users),
		MessageEvents:              formatTimes(s.messageEvents),
		StartEvents:                formatTimes(s.startEvents),
		KnownUsernames:             s.knownUsernames,
		Subscriptions:              sortedIDs(s.subscriptions),
		DialogStartsByDay:          make(map[string]map[string]int, len(s.dialogStartsByDay)),
		ReferrerByUser:             make(map[string]int64, len(s.referrerByUser)),
		ReferralCounts:             make(map[string]int, len(s.referralCounts)),
		PaymentRequests:            formatTimes(s.paymentRequests),
		SubscriptionsGrantedEvents: formatTimes(s.subsGrantedEvents),
		PaymentRequestsTotal:       &s.paymentRequestsTotal,
		SubscriptionsGrantedTotal:  &s.subsGrantedTotal,
	}
	for day, perUser := range s.dialogStartsByDay {
		bucket := make(map[string]int, len(perUser))
		for id, count := range perUser {
			bucket[strconv.FormatInt(id, 10)] = count
		}
		doc.DialogStartsByDay[day] = bucket
	}
	for invited, inviter := range s.referrerByUser {
		doc.ReferrerByUser[strconv.FormatInt(invited, 10)] = inviter
	}
	for id, count := range s.referralCounts {
		doc.ReferralCounts[strconv.FormatInt(id, 10)] = count
	}

	b, err := json.Marshal(doc)
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot marshal failed")
		return
	}
	if err := replaceFile(s.path, b); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("snapshot write failed")
	}
}

// load hydrates the store from the snapshot file. A missing file leaves
// the store empty. Any parse or shape error resets all state: recovery is
// all-or-nothing by contract, so corruption anywhere discards everything.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("snapshot read failed, starting empty")
		}
		return
	}
	if err := s.applyLocked(b); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("snapshot parse failed, resetting state")
		s.reset()
	}
}

func (s *Store) applyLocked(b []byte) error {
	var doc snapshotDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	// Build everything into temporaries first so a mid-parse failure
	// cannot leave a half-hydrated store.
	users := make(map[int64]struct{}, len(doc.Users))
	for _, id := range doc.Users {
		users[id] = struct{}{}
	}
	usernames := make(map[string]int64, len(doc.KnownUsernames))
	for name, id := range doc.KnownUsernames {
		usernames[strings.ToLower(name)] = id
	}
	subs := make(map[int64]struct{}, len(doc.Subscriptions))
	for _, id := range doc.Subscriptions {
		subs[id] = struct{}{}
	}
	ledger := make(map[string]map[int64]int, len(doc.DialogStartsByDay))
	for day, perUser := range doc.DialogStartsByDay {
		bucket := make(map[int64]int, len(perUser))
		for rawID, count := range perUser {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				return fmt.Errorf("dialog ledger user id %q: %w", rawID, err)
			}
			bucket[id] = count
		}
		ledger[day] = bucket
	}
	referrers := make(map[int64]int64, len(doc.ReferrerByUser))
	for rawID, inviter := range doc.ReferrerByUser {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return fmt.Errorf("referrer user id %q: %w", rawID, err)
		}
		referrers[id] = inviter
	}
	counts := make(map[int64]int, len(doc.ReferralCounts))
	for rawID, count := range doc.ReferralCounts {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return fmt.Errorf("referral count user id %q: %w", rawID, err)
		}
		counts[id] = count
	}

	messages := parseTimes(doc.MessageEvents)
	starts := parseTimes(doc.StartEvents)
	payments := parseTimes(doc.PaymentRequests)
	grants := parseTimes(doc.SubscriptionsGrantedEvents)

	paymentsTotal := len(payments)
	if doc.PaymentRequestsTotal != nil {
		paymentsTotal = *doc.PaymentRequestsTotal
	}
	grantsTotal := len(grants)
	if doc.SubscriptionsGrantedTotal != nil {
		grantsTotal = *doc.SubscriptionsGrantedTotal
	}

	s.users = users
	s.knownUsernames = usernames
	s.subscriptions = subs
	s.dialogStartsByDay = ledger
	s.referrerByUser = referrers
	s.referralCounts = counts
	s.messageEvents = messages
	s.startEvents = starts
	s.paymentRequests = payments
	s.subsGrantedEvents = grants
	s.paymentRequestsTotal = paymentsTotal
	s.subsGrantedTotal = grantsTotal
	s.dropOldDialogDaysLocked()
	return nil
}

func replaceFile(path string, b []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formatTimes(events []time.Time) []string {
	out := make([]string, 0, len(events))
	for _, t := range events {
		out = append(out, t.UTC().Format(time.RFC3339Nano))
	}
	return out
}

// parseTimes decodes ISO-8601 timestamps, skipping unparsable entries.
// Timestamps without a zone are assumed UTC.
func parseTimes(values []string) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		if t, ok := parseTime(v); ok {
			out = append(out, t)
		}
	}
	return out
}

func parseTime(v string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
