// File: internal/infra/adapters/telegram/texts_test.go
package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := zerolog.Nop()
	return store.Open(t.TempDir()+"/state.json", &logger)
}

func TestParseReferrerID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"/start ref_123", 123, true},
		{"/start 456", 456, true},
		{"/start", 0, false},
		{"/start ref_abc", 0, false},
		{"/start ref_", 0, false},
		{"/start ref_-5", 0, false},
		{"", 0, false},
		{"/start   ref_9", 9, true},
	}
	for _, tc := range cases {
		got, ok := parseReferrerID(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseReferrerID(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTypingDuration(t *testing.T) {
	if d := typingDuration(""); d != time.Second {
		t.Fatalf("empty reply: %v, want 1s", d)
	}
	if d := typingDuration("ок"); d != time.Second {
		t.Fatalf("short reply must clamp to 1s, got %v", d)
	}
	if d := typingDuration(strings.Repeat("а", 1000)); d != 14*time.Second {
		t.Fatalf("long reply must clamp to 14s, got %v", d)
	}
	// 100 runes: 0.9 + 3.5 = 4.4s
	d := typingDuration(strings.Repeat("а", 100))
	if d < 4300*time.Millisecond || d > 4500*time.Millisecond {
		t.Fatalf("100-rune reply: %v, want ~4.4s", d)
	}
}

func TestSearchDelayBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		if d := searchDelay(); d < 3*time.Second || d > 6*time.Second {
			t.Fatalf("searchDelay out of band: %v", d)
		}
	}
}

func TestStatusText(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.RegisterUser(2, "b")
	if !st.AddReferral(1, 2) {
		t.Fatal("AddReferral failed")
	}

	got := statusText(st, 1, 3)
	if !strings.Contains(got, "не активна ❌") {
		t.Fatalf("status must show no subscription: %q", got)
	}
	if !strings.Contains(got, "0/4") {
		t.Fatalf("status must show raised limit 0/4: %q", got)
	}
	if !strings.Contains(got, "Приглашено рефералов: 1") || !strings.Contains(got, "Бонус к лимиту: +1") {
		t.Fatalf("status must show referral bonus: %q", got)
	}

	st.GrantSubscription(1)
	got = statusText(st, 1, 3)
	if !strings.Contains(got, "активна ✅") || !strings.Contains(got, "безлимит") {
		t.Fatalf("subscribed status must show unlimited: %q", got)
	}
}

func TestSubscriptionTextShowsRequisites(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")

	got := subscriptionText(st, 1, 3, 500, "0000111122223333", "Т-банк")
	if !strings.Contains(got, "<code>0000111122223333</code>") {
		t.Fatalf("card must be rendered as code: %q", got)
	}
	if !strings.Contains(got, "500 ₽") || !strings.Contains(got, "Т-банк") {
		t.Fatalf("price and bank must be present: %q", got)
	}
}

func TestReferralText(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(7, "a")

	got := referralText(st, 7, 3, "my_bot")
	if !strings.Contains(got, "https://t.me/my_bot?start=ref_7") {
		t.Fatalf("referral link missing: %q", got)
	}

	got = referralText(st, 7, 3, "")
	if !strings.Contains(got, "Ссылка временно недоступна") {
		t.Fatalf("empty bot username must degrade gracefully: %q", got)
	}
}

func TestStatsReportText(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.TrackStart()
	st.TrackPaymentRequest(1)
	st.GrantSubscription(1)

	got := statsReportText(st.Stats())
	for _, line := range []string{
		"Всего пользователей: 1",
		"Новых запусков: 1",
		"Заявок на оплату всего: 1",
		"Выдано подписок всего: 1",
		"Пользователей с подпиской: 1",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("report missing %q:\n%s", line, got)
		}
	}
}
