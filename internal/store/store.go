// Package store is the single source of truth for all mutable bot state:
// known users, active chat sessions, rolling event windows, the daily
// dialog ledger, referrals and subscriptions. Every mutating call rewrites
// the JSON snapshot file; reads trim stale window entries as a side effect.
package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/model"
)

// Store owns the process working set. All exported methods are safe for
// concurrent use; mutations run to completion under one lock, so each call
// is atomic with respect to every other.
type Store struct {
	mu   sync.Mutex
	log  *zerolog.Logger
	path string
	now  func() time.Time

	users             map[int64]struct{}
	sessions          map[int64]*model.ChatSession
	messageEvents     []time.Time
	startEvents       []time.Time
	rateLimitEvents   map[int64][]time.Time
	knownUsernames    map[string]int64
	subscriptions     map[int64]struct{}
	dialogStartsByDay map[string]map[int64]int
	referrerByUser    map[int64]int64
	referralCounts    map[int64]int
	paymentRequests   []time.Time
	subsGrantedEvents []time.Time

	paymentRequestsTotal int
	subsGrantedTotal     int
}

// Stats is the read-only aggregation snapshot served to admins.
type Stats struct {
	TotalUsers                int `json:"total_users"`
	ActiveDialogs             int `json:"active_dialogs"`
	Messages24h               int `json:"messages_24h"`
	Starts24h                 int `json:"starts_24h"`
	PaymentRequests24h        int `json:"payment_requests_24h"`
	SubscriptionsGranted24h   int `json:"subscriptions_granted_24h"`
	PaymentRequestsTotal      int `json:"payment_requests_total"`
	SubscriptionsGrantedTotal int `json:"subscriptions_granted_total"`
	PaidUsersTotal            int `json:"paid_users_total"`
	ReferralsTotal            int `json:"referrals_total"`
}

// Open constructs a Store backed by the snapshot file at path and hydrates
// it. A missing or unreadable snapshot yields an empty store.
func Open(path string, logger *zerolog.Logger) *Store {
	s := &Store{
		log:  logger,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
	s.reset()
	s.load()
	return s
}

func (s *Store) reset() {
	s.users = make(map[int64]struct{})
	s.sessions = make(map[int64]*model.ChatSession)
	s.messageEvents = nil
	s.startEvents = nil
	s.rateLimitEvents = make(map[int64][]time.Time)
	s.knownUsernames = make(map[string]int64)
	s.subscriptions = make(map[int64]struct{})
	s.dialogStartsByDay = make(map[string]map[int64]int)
	s.referrerByUser = make(map[int64]int64)
	s.referralCounts = make(map[int64]int)
	s.paymentRequests = nil
	s.subsGrantedEvents = nil
	s.paymentRequestsTotal = 0
	s.subsGrantedTotal = 0
}

// RegisterUser is idempotent: it adds the id to the known set and, when a
// username is present, (re)binds the case-insensitive lookup to this id.
func (s *Store) RegisterUser(userID int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	if normalized := model.NormalizeUsername(username); normalized != "" {
		s.knownUsernames[normalized] = userID
	}
	s.saveLocked()
}

// AllUserIDs returns every user ever registered, in unspecified order.
func (s *Store) AllUserIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids
}

// ResolveUser accepts a bare numeric id or a username with or without the
// leading "@". A miss is a normal outcome, reported via ok=false.
func (s *Store) ResolveUser(token string) (int64, bool) {
	value := strings.TrimSpace(token)
	value = strings.TrimPrefix(value, "@")
	if value == "" {
		return 0, false
	}
	// Only unsigned digit strings are ids; "-5" or "+7" are treated as
	// (unlikely) usernames, not negative ids.
	if value[0] >= '0' && value[0] <= '9' {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			return id, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.knownUsernames[strings.ToLower(value)]
	return id, ok
}

// TrackStart records one /start event in the 24h window.
func (s *Store) TrackStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.startEvents = trimOld(append(s.startEvents, now), now, eventWindow)
	s.saveLocked()
}

// HasSubscription reports whether the user is on the unlimited tier.
func (s *Store) HasSubscription(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscriptions[userID]
	return ok
}

// GrantSubscription adds the user to the subscription set and reports
// whether this call was the first grant. The grant event and the lifetime
// total are recorded unconditionally, even for repeat grants.
func (s *Store) GrantSubscription(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, alreadyHad := s.subscriptions[userID]
	s.subscriptions[userID] = struct{}{}
	now := s.now()
	s.subsGrantedEvents = trimOld(append(s.subsGrantedEvents, now), now, eventWindow)
	s.subsGrantedTotal++
	s.saveLocked()
	return !alreadyHad
}

// SubscriberCount returns the size of the subscription set.
func (s *Store) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions)
}

// TrackPaymentRequest records a payment-check request from the user.
func (s *Store) TrackPaymentRequest(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	now := s.now()
	s.paymentRequests = trimOld(append(s.paymentRequests, now), now, eventWindow)
	s.paymentRequestsTotal++
	s.saveLocked()
}

// PaymentRequests24h counts payment requests in the trailing day.
func (s *Store) PaymentRequests24h() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentRequests = trimOld(s.paymentRequests, s.now(), eventWindow)
	return len(s.paymentRequests)
}

// AddReferral binds invited to inviter. First-write-wins: a self-referral
// or an invited user with a recorded inviter leaves state untouched and
// returns false.
func (s *Store) AddReferral(inviterID, invitedID int64) bool {
	if inviterID == invitedID {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.referrerByUser[invitedID]; taken {
		return false
	}
	s.referrerByUser[invitedID] = inviterID
	s.referralCounts[inviterID]++
	s.saveLocked()
	return true
}

// ReferralCount defaults to 0 for unknown users.
func (s *Store) ReferralCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referralCounts[userID]
}

// SetSession installs the user's active session, replacing any previous
// one. Sessions are memory-only and not part of the snapshot.
func (s *Store) SetSession(userID int64, session *model.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

// GetSession returns the user's session or nil. The result is read-only
// for the caller: all mutation goes through AppendToSession, BeginDialog
// and ClearSession so that it happens under the store lock.
func (s *Store) GetSession(userID int64) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// SessionHistory returns the current session's id and a copy of its
// history, ok=false when the user has none. The copy lets the caller build
// a generation request without holding a live reference to shared state.
func (s *Store) SessionHistory(userID int64) (sessionID string, history []model.ChatMessage, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session == nil {
		return "", nil, false
	}
	return session.ID, append([]model.ChatMessage(nil), session.History...), true
}

// AppendToSession appends one message to the user's session, keeping the
// history bounded. The sessionID guard makes a turn that outlived its
// session harmless: when the session was replaced or cleared mid-flight
// the append is dropped and false is returned.
func (s *Store) AppendToSession(userID int64, sessionID, role, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session == nil || session.ID != sessionID {
		return false
	}
	session.Append(role, content)
	return true
}

// ClearSession removes and returns the user's session, nil when absent.
// The session is finished before release, so the returned value is
// quiescent: no store operation can reach it anymore.
func (s *Store) ClearSession(userID int64) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session != nil {
		session.Finish()
		delete(s.sessions, userID)
	}
	return session
}

// IncrementMessages bumps the active session's message counter and records
// a global message event. A user without a session is a no-op, not an
// error.
func (s *Store) IncrementMessages(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session == nil {
		return
	}
	session.MessagesCount++
	now := s.now()
	s.messageEvents = trimOld(append(s.messageEvents, now), now, eventWindow)
	s.saveLocked()
}

// Stats trims every 24h window and returns the aggregate counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.messageEvents = trimOld(s.messageEvents, now, eventWindow)
	s.startEvents = trimOld(s.startEvents, now, eventWindow)
	s.paymentRequests = trimOld(s.paymentRequests, now, eventWindow)
	s.subsGrantedEvents = trimOld(s.subsGrantedEvents, now, eventWindow)

	activeDialogs := 0
	for _, session := range s.sessions {
		if session.Active {
			activeDialogs++
		}
	}
	referralsTotal := 0
	for _, n := range s.referralCounts {
		referralsTotal += n
	}
	return Stats{
		TotalUsers:                len(s.users),
		ActiveDialogs:             activeDialogs,
		Messages24h:               len(s.messageEvents),
		Starts24h:                 len(s.startEvents),
		PaymentRequests24h:        len(s.paymentRequests),
		SubscriptionsGranted24h:   len(s.subsGrantedEvents),
		PaymentRequestsTotal:      s.paymentRequestsTotal,
		SubscriptionsGrantedTotal: s.subsGrantedTotal,
		PaidUsersTotal:            len(s.subscriptions),
		ReferralsTotal:            referralsTotal,
	}
}
