package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.Nop()
	return Open(filepath.Join(t.TempDir(), "bot_state.json"), &logger)
}

func TestRegisterAndResolveUser(t *testing.T) {
	s := newTestStore(t)
	s.RegisterUser(100, "Alice")

	for _, token := range []string{"@Alice", "alice", "ALICE", " @alice "} {
		id, ok := s.ResolveUser(token)
		if !ok || id != 100 {
			t.Errorf("ResolveUser(%q) = (%d, %v), want (100, true)", token, id, ok)
		}
	}

	// Bare numeric tokens resolve without a username binding.
	if id, ok := s.ResolveUser("555"); !ok || id != 555 {
		t.Errorf("ResolveUser(555) = (%d, %v), want (555, true)", id, ok)
	}
	if _, ok := s.ResolveUser("nobody"); ok {
		t.Error("unknown username should not resolve")
	}
	if _, ok := s.ResolveUser(""); ok {
		t.Error("empty token should not resolve")
	}

	// Signed tokens are username lookups, never negative or signed ids.
	for _, token := range []string{"-5", "+7", "-100"} {
		if id, ok := s.ResolveUser(token); ok {
			t.Errorf("ResolveUser(%q) = (%d, true), want a miss", token, id)
		}
	}
}

func TestRegisterUserRebindsUsername(t *testing.T) {
	s := newTestStore(t)
	s.RegisterUser(1, "nick")
	s.RegisterUser(2, "nick") // nick was recycled by Telegram

	if id, _ := s.ResolveUser("nick"); id != 2 {
		t.Errorf("stale username binding survived, got %d want 2", id)
	}
}

func TestAddReferral(t *testing.T) {
	s := newTestStore(t)

	if s.AddReferral(7, 7) {
		t.Error("self-referral must be rejected")
	}
	if !s.AddReferral(1, 2) {
		t.Error("first referral must succeed")
	}
	if s.AddReferral(3, 2) {
		t.Error("second inviter for the same invited user must be rejected")
	}
	if got := s.ReferralCount(1); got != 1 {
		t.Errorf("ReferralCount(1) = %d, want 1", got)
	}
	if got := s.ReferralCount(3); got != 0 {
		t.Errorf("ReferralCount(3) = %d, want 0", got)
	}
}

func TestGrantSubscriptionEventVsMembership(t *testing.T) {
	s := newTestStore(t)

	if !s.GrantSubscription(5) {
		t.Error("first grant should report true")
	}
	if s.GrantSubscription(5) {
		t.Error("repeat grant should report false")
	}
	if !s.HasSubscription(5) {
		t.Error("user should hold a subscription")
	}

	stats := s.Stats()
	if stats.SubscriptionsGrantedTotal != 2 {
		t.Errorf("grant events total = %d, want 2 (event log is not idempotent)", stats.SubscriptionsGrantedTotal)
	}
	if stats.PaidUsersTotal != 1 {
		t.Errorf("paid users = %d, want 1 (membership is idempotent)", stats.PaidUsersTotal)
	}
	if stats.SubscriptionsGranted24h != 2 {
		t.Errorf("grants in 24h window = %d, want 2", stats.SubscriptionsGranted24h)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	if s.GetSession(9) != nil {
		t.Fatal("no session expected")
	}
	sess := model.NewChatSession("a", 9)
	s.SetSession(9, sess)
	if got := s.GetSession(9); got != sess {
		t.Fatal("GetSession returned a different session")
	}

	cleared := s.ClearSession(9)
	if cleared != sess {
		t.Fatal("ClearSession should return the removed session")
	}
	if cleared.Active {
		t.Fatal("ClearSession should finish the session before release")
	}
	if s.GetSession(9) != nil {
		t.Fatal("session should be gone after ClearSession")
	}
	if s.ClearSession(9) != nil {
		t.Fatal("clearing an absent session should return nil")
	}
}

func TestBeginDialogReplacesAndDenies(t *testing.T) {
	s := newTestStore(t)

	first := model.NewChatSession("a", 9)
	old, allowed, used, limit, _ := s.BeginDialog(9, 3, first)
	if old != nil || !allowed || used != 0 || limit != 3 {
		t.Fatalf("first BeginDialog = (%v, %v, %d, %d)", old, allowed, used, limit)
	}

	second := model.NewChatSession("b", 9)
	old, allowed, _, _, _ = s.BeginDialog(9, 3, second)
	if !allowed || old != first {
		t.Fatal("replacement must return the previous session")
	}
	if old.Active {
		t.Fatal("replaced session must be finished")
	}

	third := model.NewChatSession("c", 9)
	if _, allowed, _, _, _ = s.BeginDialog(9, 3, third); !allowed {
		t.Fatal("third start must be within quota")
	}

	fourth := model.NewChatSession("d", 9)
	old, allowed, used, limit, _ = s.BeginDialog(9, 3, fourth)
	if allowed || old != nil || used != 3 || limit != 3 {
		t.Fatalf("denied BeginDialog = (%v, %v, %d, %d)", old, allowed, used, limit)
	}
	// Denial must leave the current session untouched.
	if got := s.GetSession(9); got != third {
		t.Fatal("denied start must not replace the session")
	}
	if !third.Active {
		t.Fatal("denied start must not finish the session")
	}
}

func TestAppendToSessionStaleIDDropped(t *testing.T) {
	s := newTestStore(t)

	if _, allowed, _, _, _ := s.BeginDialog(9, 3, model.NewChatSession("a", 9)); !allowed {
		t.Fatal("BeginDialog denied")
	}
	if !s.AppendToSession(9, "a", "user", "привет") {
		t.Fatal("append to the current session must succeed")
	}

	if _, allowed, _, _, _ := s.BeginDialog(9, 3, model.NewChatSession("b", 9)); !allowed {
		t.Fatal("BeginDialog denied")
	}

	// A turn finishing against the replaced session must be dropped.
	if s.AppendToSession(9, "a", "assistant", "поздний ответ") {
		t.Fatal("append with a stale session id must be dropped")
	}
	if !s.AppendToSession(9, "b", "user", "эй") {
		t.Fatal("append to the replacement must succeed")
	}

	id, history, ok := s.SessionHistory(9)
	if !ok || id != "b" || len(history) != 1 || history[0].Content != "эй" {
		t.Fatalf("SessionHistory = (%q, %v, %v)", id, history, ok)
	}

	s.ClearSession(9)
	if s.AppendToSession(9, "b", "assistant", "late") {
		t.Fatal("append after ClearSession must be dropped")
	}
}

func TestSessionHistoryReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	sess := model.NewChatSession("a", 9)
	s.SetSession(9, sess)
	s.AppendToSession(9, "a", "user", "один")

	_, history, ok := s.SessionHistory(9)
	if !ok || len(history) != 1 {
		t.Fatalf("SessionHistory = (%v, %v)", history, ok)
	}
	history[0].Content = "mutated"
	if sess.History[0].Content != "один" {
		t.Fatal("mutating the returned history must not touch the session")
	}
}

func TestIncrementMessages(t *testing.T) {
	s := newTestStore(t)

	// No active session: defensive no-op.
	s.IncrementMessages(3)
	if got := s.Stats().Messages24h; got != 0 {
		t.Fatalf("messages without session = %d, want 0", got)
	}

	sess := model.NewChatSession("b", 3)
	s.SetSession(3, sess)
	s.IncrementMessages(3)
	s.IncrementMessages(3)

	if sess.MessagesCount != 2 {
		t.Errorf("session counter = %d, want 2", sess.MessagesCount)
	}
	if got := s.Stats().Messages24h; got != 2 {
		t.Errorf("messages_24h = %d, want 2", got)
	}
}

func TestStatsWindowsEvict(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.TrackStart()
	s.TrackPaymentRequest(1)
	s.GrantSubscription(1)

	// Jump past the 24h window; lifetime totals must survive the trim.
	s.now = func() time.Time { return base.Add(25 * time.Hour) }
	stats := s.Stats()
	if stats.Starts24h != 0 || stats.PaymentRequests24h != 0 || stats.SubscriptionsGranted24h != 0 {
		t.Errorf("windowed counters should be empty after 25h, got %+v", stats)
	}
	if stats.PaymentRequestsTotal != 1 || stats.SubscriptionsGrantedTotal != 1 {
		t.Errorf("lifetime totals must survive the trim, got %+v", stats)
	}
	if stats.PaidUsersTotal != 1 {
		t.Errorf("paid users = %d, want 1", stats.PaidUsersTotal)
	}
}

func TestAllUserIDs(t *testing.T) {
	s := newTestStore(t)
	s.RegisterUser(1, "")
	s.RegisterUser(2, "")
	s.RegisterUser(2, "") // idempotent

	ids := s.AllUserIDs()
	if len(ids) != 2 {
		t.Fatalf("AllUserIDs returned %d ids, want 2", len(ids))
	}
}
