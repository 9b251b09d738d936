package ai

import (
	"context"
	"time"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
)

var _ adapter.Generator = (*NoopGenerator)(nil)

// NoopGenerator is a local/dev stand-in that echoes a canned reply.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (a *NoopGenerator) GenerateReply(ctx context.Context, history []adapter.Message) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "это тестовый ответ)", nil
}
