// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/infra/logging"
	"anonchat-telegram-bot/internal/store"
)

var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Summary(ctx context.Context) store.Stats
}

type statsUC struct {
	store *store.Store
	log   *zerolog.Logger
}

func NewStatsUseCase(st *store.Store, logger *zerolog.Logger) *statsUC {
	return &statsUC{store: st, log: logger}
}

func (s *statsUC) Summary(ctx context.Context) store.Stats {
	defer logging.TraceDuration(s.log, "StatsUC.Summary")()
	return s.store.Stats()
}
