// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
	"anonchat-telegram-bot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := zerolog.Nop()
	return store.Open(t.TempDir()+"/state.json", &logger)
}

// stubGenerator returns a fixed reply or error and remembers the last
// history it was handed. delay simulates a slow backend call.
type stubGenerator struct {
	mu          sync.Mutex
	reply       string
	err         error
	delay       time.Duration
	calls       int
	lastHistory []adapter.Message
}

func (s *stubGenerator) GenerateReply(_ context.Context, history []adapter.Message) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastHistory = append([]adapter.Message(nil), history...)
	reply, err, delay := s.reply, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

type auditEvent struct {
	kind      string
	userID    int64
	sessionID string
	messages  int
	text      string
}

// recordingAudit captures every sink call for assertion.
type recordingAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (r *recordingAudit) record(e auditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) ofKind(kind string) []auditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []auditEvent
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingAudit) Startup(_ context.Context, userID int64, username string) {
	r.record(auditEvent{kind: "startup", userID: userID, text: username})
}

func (r *recordingAudit) DialogStarted(_ context.Context, userID int64, sessionID string) {
	r.record(auditEvent{kind: "dialog_started", userID: userID, sessionID: sessionID})
}

func (r *recordingAudit) DialogFinished(_ context.Context, userID int64, sessionID string, messages int) {
	r.record(auditEvent{kind: "dialog_finished", userID: userID, sessionID: sessionID, messages: messages})
}

func (r *recordingAudit) APIError(_ context.Context, userID int64, errText string) {
	r.record(auditEvent{kind: "api_error", userID: userID, text: errText})
}

func (r *recordingAudit) PaymentRequest(_ context.Context, userID int64, username string) {
	r.record(auditEvent{kind: "payment_request", userID: userID, text: username})
}

func (r *recordingAudit) SubscriptionGranted(_ context.Context, _ int64, targetID int64, targetUsername string) {
	r.record(auditEvent{kind: "subscription_granted", userID: targetID, text: targetUsername})
}

func (r *recordingAudit) ReferralRegistered(_ context.Context, _ int64, invitedID int64, invitedUsername string) {
	r.record(auditEvent{kind: "referral_registered", userID: invitedID, text: invitedUsername})
}

// fakeSender records deliveries and can fail selected recipients.
type fakeSender struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string), failFor: make(map[int64]error)}
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}
