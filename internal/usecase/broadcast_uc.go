// File: internal/usecase/broadcast_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
	"anonchat-telegram-bot/internal/infra/logging"
	"anonchat-telegram-bot/internal/infra/metrics"
	"anonchat-telegram-bot/internal/store"
)

var _ BroadcastUseCase = (*broadcastUC)(nil)

// BroadcastUseCase sends an admin message to every known user,
// throttled so Telegram does not push back with 429s.
type BroadcastUseCase interface {
	Broadcast(ctx context.Context, text string) (delivered, failed int)
}

type broadcastUC struct {
	store    *store.Store
	sender   adapter.TelegramSender
	log      *zerolog.Logger
	throttle time.Duration
}

func NewBroadcastUseCase(st *store.Store, sender adapter.TelegramSender, logger *zerolog.Logger) *broadcastUC {
	return &broadcastUC{
		store:  st,
		sender: sender,
		log:    logger,
		// Telegram allows ~30 msg/s for bots, stay under it.
		throttle: 40 * time.Millisecond,
	}
}

// Broadcast delivers text to all registered users sequentially.
// A per-recipient failure is counted and logged, never aborts the run.
func (b *broadcastUC) Broadcast(ctx context.Context, text string) (int, int) {
	defer logging.TraceDuration(b.log, "BroadcastUC.Broadcast")()

	var delivered, failed int
	for _, id := range b.store.AllUserIDs() {
		select {
		case <-ctx.Done():
			b.log.Warn().Int("delivered", delivered).Int("failed", failed).Msg("broadcast cancelled")
			metrics.AddBroadcastResult(delivered, failed)
			return delivered, failed
		default:
		}
		if err := b.sender.SendMessage(ctx, id, text); err != nil {
			failed++
			b.log.Warn().Err(err).Int64("user_id", id).Msg("broadcast delivery failed")
		} else {
			delivered++
		}
		time.Sleep(b.throttle)
	}
	metrics.AddBroadcastResult(delivered, failed)
	return delivered, failed
}
