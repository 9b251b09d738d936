package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
	derror "anonchat-telegram-bot/internal/error"
)

var _ adapter.Generator = (*FailoverGenerator)(nil)

// FailoverGenerator tries the primary provider and falls back to the
// secondary on transient failures. Auth and configuration faults are not
// retried: the fallback would only mask a broken deployment.
type FailoverGenerator struct {
	primary  adapter.Generator
	fallback adapter.Generator
	log      *zerolog.Logger
}

func NewFailoverGenerator(primary, fallback adapter.Generator, logger *zerolog.Logger) *FailoverGenerator {
	return &FailoverGenerator{primary: primary, fallback: fallback, log: logger}
}

func (f *FailoverGenerator) GenerateReply(ctx context.Context, history []adapter.Message) (string, error) {
	reply, err := f.primary.GenerateReply(ctx, history)
	if err == nil || f.fallback == nil || !retriable(err) {
		return reply, err
	}
	f.log.Warn().Err(err).Msg("primary generator failed, trying fallback")
	return f.fallback.GenerateReply(ctx, history)
}

func retriable(err error) bool {
	return errors.Is(err, derror.ErrRateLimited) ||
		errors.Is(err, derror.ErrTimeout) ||
		errors.Is(err, derror.ErrNetwork) ||
		errors.Is(err, derror.ErrModelUnavailable)
}
