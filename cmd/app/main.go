// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"anonchat-telegram-bot/internal/config"
	"anonchat-telegram-bot/internal/domain/ports/adapter"
	aiAdapters "anonchat-telegram-bot/internal/infra/adapters/ai"
	tele "anonchat-telegram-bot/internal/infra/adapters/telegram"
	"anonchat-telegram-bot/internal/infra/audit"
	"anonchat-telegram-bot/internal/infra/logging"
	"anonchat-telegram-bot/internal/infra/metrics"
	"anonchat-telegram-bot/internal/infra/web"
	"anonchat-telegram-bot/internal/store"
	"anonchat-telegram-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, noop AI backend")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- State store ----
	st := store.Open(cfg.State.File, logger)

	// ---- AI backend (NScale, optional Gemini failover) ----
	var ai adapter.Generator
	if cfg.Runtime.Dev {
		ai = aiAdapters.NewNoopGenerator()
		logger.Info().Msg("AI backend: noop")
	} else {
		nscale, err := aiAdapters.NewNScaleAdapter(cfg.AI, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("nscale adapter")
		}
		ai = nscale
		logger.Info().Str("base", cfg.AI.BaseURL).Str("model", cfg.AI.Model).Msg("AI backend: nscale")

		if cfg.AI.GeminiKey != "" {
			persona := cfg.AI.PersonaPrompt
			if persona == "" {
				persona = aiAdapters.DefaultPersonaPrompt
			}
			gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.GeminiModel, cfg.AI.MaxTokens, persona)
			if err != nil {
				logger.Fatal().Err(err).Msg("gemini adapter")
			}
			ai = aiAdapters.NewFailoverGenerator(nscale, gemini, logger)
			logger.Info().Msg("AI failover: gemini")
		}
	}

	// ---- Telegram ----
	bot, err := tele.NewRealBotAdapter(cfg, st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	// ---- Audit channel ----
	auditSink := audit.NewChannelLogger(bot, cfg.Audit.ChannelID, cfg.Limits.SubscriptionRUB, logger)

	// ---- Use cases ----
	chatUC := usecase.NewChatUseCase(st, ai, auditSink, logger,
		cfg.Limits.DailyDialogs, cfg.Limits.RateMessages, cfg.Limits.RatePeriod())
	statsUC := usecase.NewStatsUseCase(st, logger)
	broadcastUC := usecase.NewBroadcastUseCase(st, bot, logger)

	bot.Attach(chatUC, statsUC, broadcastUC, auditSink)
	go func() {
		if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin HTTP API ----
	var server *http.Server
	if cfg.Admin.Port > 0 {
		srv := web.NewServer(statsUC, cfg.Admin.APIKey, !cfg.Runtime.Dev, logger)
		server = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: srv.Router()}
		go func() {
			logger.Info().Str("addr", server.Addr).Msg("admin api listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("admin api server")
			}
		}()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	bot.StopPolling()
	cancel()
	if server != nil {
		_ = server.Shutdown(context.Background())
	}
	st.Save()
}
