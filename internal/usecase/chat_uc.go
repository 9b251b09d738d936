// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain"
	"anonchat-telegram-bot/internal/domain/model"
	"anonchat-telegram-bot/internal/domain/ports/adapter"
	"anonchat-telegram-bot/internal/infra/logging"
	"anonchat-telegram-bot/internal/infra/metrics"
	"anonchat-telegram-bot/internal/store"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatUseCase drives the dialog lifecycle: quota-checked starts, the
// generation turn, and explicit ends.
type ChatUseCase interface {
	CanStart(userID int64) (allowed bool, used, limit int, unlimited bool)
	StartDialog(ctx context.Context, userID int64) (*model.ChatSession, error)
	SendMessage(ctx context.Context, userID int64, text string) (string, error)
	EndDialog(ctx context.Context, userID int64) *model.ChatSession
	ActiveSession(userID int64) *model.ChatSession
	RateLimited(userID int64) bool
}

type chatUC struct {
	store      *store.Store
	ai         adapter.Generator
	audit      adapter.AuditSink
	log        *zerolog.Logger
	baseLimit  int
	rateLimit  int
	ratePeriod time.Duration
}

func NewChatUseCase(st *store.Store, ai adapter.Generator, audit adapter.AuditSink, logger *zerolog.Logger, baseLimit, rateLimit int, ratePeriod time.Duration) *chatUC {
	return &chatUC{
		store:      st,
		ai:         ai,
		audit:      audit,
		log:        logger,
		baseLimit:  baseLimit,
		rateLimit:  rateLimit,
		ratePeriod: ratePeriod,
	}
}

func (c *chatUC) CanStart(userID int64) (bool, int, int, bool) {
	return c.store.CanStartDialog(userID, c.baseLimit)
}

// StartDialog creates a fresh session for the user. The quota check,
// session replacement and ledger bump are one atomic store operation, so
// concurrent starts cannot exceed the daily limit. A replaced session
// yields exactly one dialog-finished audit event with its final message
// count. Returns domain.ErrDailyLimitReached when the quota is exhausted.
func (c *chatUC) StartDialog(ctx context.Context, userID int64) (*model.ChatSession, error) {
	defer logging.TraceDuration(c.log, "ChatUC.StartDialog")()

	session := model.NewChatSession(uuid.NewString(), userID)
	old, allowed, _, _, _ := c.store.BeginDialog(userID, c.baseLimit, session)
	if !allowed {
		metrics.IncQuotaDenied()
		return nil, domain.ErrDailyLimitReached
	}

	if old != nil {
		metrics.IncDialogFinished()
		c.audit.DialogFinished(ctx, userID, old.ID, old.MessagesCount)
	}

	metrics.IncDialogStarted()
	c.audit.DialogStarted(ctx, userID, session.ID)
	return session, nil
}

// SendMessage runs one generation turn. The user's line is appended to the
// session history (under the store lock) before the backend call and stays
// there on failure, so a retry resends the unanswered turn; we
// deliberately do not deduplicate it. The rate-limit slot is likewise
// consumed before the call (see RateLimited), not refunded on failure.
// When the session is replaced or ended while generation is in flight the
// assistant reply is dropped instead of leaking into the new session.
func (c *chatUC) SendMessage(ctx context.Context, userID int64, text string) (string, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SendMessage")()

	sessionID, history, ok := c.store.SessionHistory(userID)
	if !ok {
		return "", domain.ErrNoActiveChat
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrInvalidArgument
	}
	if !c.store.AppendToSession(userID, sessionID, "user", text) {
		return "", domain.ErrNoActiveChat
	}

	messages := make([]adapter.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, adapter.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, adapter.Message{Role: "user", Content: text})

	reply, err := c.ai.GenerateReply(ctx, messages)
	if err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Int64("user_id", userID).Msg("generation failed")
		c.audit.APIError(ctx, userID, err.Error())
		return "", err
	}

	if c.store.AppendToSession(userID, sessionID, "assistant", reply) {
		c.store.IncrementMessages(userID)
	}
	metrics.IncChatMessage()
	return reply, nil
}

// EndDialog removes the user's session, nil when none. The store finishes
// the session before handing it back.
func (c *chatUC) EndDialog(ctx context.Context, userID int64) *model.ChatSession {
	session := c.store.ClearSession(userID)
	if session == nil {
		return nil
	}
	metrics.IncDialogFinished()
	c.audit.DialogFinished(ctx, userID, session.ID, session.MessagesCount)
	return session
}

func (c *chatUC) ActiveSession(userID int64) *model.ChatSession {
	return c.store.GetSession(userID)
}

// RateLimited consumes a message slot in the per-user sliding window.
func (c *chatUC) RateLimited(userID int64) bool {
	limited := c.store.IsRateLimited(userID, c.rateLimit, c.ratePeriod)
	if limited {
		metrics.IncRateLimited()
	}
	return limited
}
