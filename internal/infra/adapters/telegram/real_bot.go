// File: internal/infra/adapters/telegram/real_bot.go
package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/config"
	"anonchat-telegram-bot/internal/domain/ports/adapter"
	"anonchat-telegram-bot/internal/infra/logging"
	"anonchat-telegram-bot/internal/store"
	"anonchat-telegram-bot/internal/usecase"
)

var _ adapter.TelegramSender = (*RealBotAdapter)(nil)

// RealBotAdapter polls Telegram for updates and fans them out to a worker
// pool. Routing is text-based: commands, then reply-keyboard buttons, then
// free text into the active dialog.
type RealBotAdapter struct {
	bot   *tgbotapi.BotAPI
	cfg   *config.Config
	store *store.Store
	log   *zerolog.Logger

	chat      usecase.ChatUseCase
	stats     usecase.StatsUseCase
	broadcast usecase.BroadcastUseCase
	audit     adapter.AuditSink

	admins      map[int64]struct{}
	botUsername string

	mu                sync.Mutex
	awaitingBroadcast map[int64]struct{}

	cancelPolling context.CancelFunc
}

// NewRealBotAdapter connects to the Bot API. Use cases are attached
// separately with Attach because the audit sink and broadcast sender are
// built on top of this adapter.
func NewRealBotAdapter(cfg *config.Config, st *store.Store, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if st == nil {
		return nil, errors.New("store is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}

	username := cfg.Bot.Username
	if username == "" {
		username = bot.Self.UserName
	}

	admins := make(map[int64]struct{}, len(cfg.Bot.AdminIDs))
	for _, id := range cfg.Bot.AdminIDs {
		admins[id] = struct{}{}
	}

	return &RealBotAdapter{
		bot:               bot,
		cfg:               cfg,
		store:             st,
		log:               logger,
		admins:            admins,
		botUsername:       username,
		awaitingBroadcast: make(map[int64]struct{}),
	}, nil
}

// Attach wires the use cases and audit sink in once they exist.
func (r *RealBotAdapter) Attach(chat usecase.ChatUseCase, stats usecase.StatsUseCase, broadcast usecase.BroadcastUseCase, audit adapter.AuditSink) {
	r.chat = chat
	r.stats = stats
	r.broadcast = broadcast
	r.audit = audit
}

func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	workers := r.cfg.Bot.Workers
	var wg sync.WaitGroup

	// One queue per worker, sharded by chat id: all updates from one chat
	// land on the same worker, so a single user's messages are handled
	// sequentially and in arrival order even while a generation call for
	// that user is still in flight.
	queues := make([]chan tgbotapi.Update, workers)
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, 32)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int, queue <-chan tgbotapi.Update) {
			defer wg.Done()
			for up := range queue {
				uctx := logging.WithTraceID(ctx, ulid.Make().String())
				if err := r.handleUpdate(uctx, up); err != nil {
					logging.With(uctx, r.log).Error().Err(err).Int("worker", id).Msg("update failed")
				}
			}
		}(i, queues[i])
	}

	r.log.Info().Str("bot", r.botUsername).Int("workers", workers).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			for _, q := range queues {
				close(q)
			}
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			queues[shardIndex(updateChatID(up), workers)] <- up
		}
	}
}

// updateChatID picks the shard key: the originating chat.
func updateChatID(up tgbotapi.Update) int64 {
	if up.Message != nil && up.Message.Chat != nil {
		return up.Message.Chat.ID
	}
	return 0
}

func shardIndex(chatID int64, workers int) int {
	return int(uint64(chatID) % uint64(workers))
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	user := msg.From
	chatID := msg.Chat.ID
	ctx = logging.WithTgID(ctx, user.ID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return r.handleStart(ctx, msg)
		case "admin":
			return r.handleAdmin(ctx, msg)
		case "stats":
			return r.handleStats(ctx, msg)
		case "grant_sub":
			return r.handleGrantSub(ctx, msg)
		case "broadcast":
			return r.handleBroadcastCommand(ctx, msg)
		default:
			return r.sendMenu(ctx, chatID, fallbackText)
		}
	}

	switch msg.Text {
	case BtnStart:
		r.store.RegisterUser(user.ID, user.UserName)
		return r.startDialogFlow(ctx, chatID, user.ID)
	case BtnNext:
		return r.handleNextDialog(ctx, msg)
	case BtnEnd:
		return r.handleEndDialog(ctx, msg)
	case BtnSubscription:
		return r.handleSubscription(ctx, msg)
	case BtnPaymentSent:
		return r.handlePaymentSent(ctx, msg)
	case BtnReferral:
		return r.handleReferral(ctx, msg)
	case BtnBackMenu:
		return r.sendMenu(ctx, chatID, backToMenuText)
	case BtnAbout:
		return r.sendHTML(ctx, chatID, aboutText, nil)
	case BtnSupport:
		return r.sendSupport(ctx, chatID)
	}

	if r.isAdmin(user.ID) && r.takeAwaitingBroadcast(user.ID) {
		return r.runBroadcast(ctx, msg)
	}

	if msg.Text != "" && r.chat.ActiveSession(user.ID) != nil {
		return r.handleChatMessage(ctx, msg)
	}
	return r.sendMenu(ctx, chatID, fallbackText)
}

func (r *RealBotAdapter) isAdmin(userID int64) bool {
	_, ok := r.admins[userID]
	return ok
}

// SendMessage implements adapter.TelegramSender.
func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// sendHTML sends an HTML-formatted message, optionally with a reply keyboard.
func (r *RealBotAdapter) sendHTML(ctx context.Context, chatID int64, text string, markup interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) sendMenu(ctx context.Context, chatID int64, text string) error {
	return r.sendHTML(ctx, chatID, text, mainMenuKeyboard())
}

func (r *RealBotAdapter) sendSupport(ctx context.Context, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, supportText)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := r.bot.Send(msg)
	return err
}

// sendTypingFor keeps the typing indicator alive for roughly d. Telegram
// drops the indicator after ~5s, so it is refreshed every 4.
func (r *RealBotAdapter) sendTypingFor(ctx context.Context, chatID int64, d time.Duration) {
	deadline := time.Now().Add(d)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return
		}
		if _, err := r.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			return
		}
		wait := 4 * time.Second
		if left < wait {
			wait = left
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (r *RealBotAdapter) takeAwaitingBroadcast(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.awaitingBroadcast[userID]; !ok {
		return false
	}
	delete(r.awaitingBroadcast, userID)
	return true
}

func (r *RealBotAdapter) markAwaitingBroadcast(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awaitingBroadcast[userID] = struct{}{}
}
