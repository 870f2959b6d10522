package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"maple-tracker/internal/api"
	"maple-tracker/internal/auth"
	"maple-tracker/internal/config"
	"maple-tracker/internal/discord"
	"maple-tracker/internal/maplestory"
	"maple-tracker/internal/progression"
	"maple-tracker/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local development keeps settings in .env; absence is fine.
	godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Loading configuration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Connecting to database failed")
	}
	defer st.Close()

	client := maplestory.NewClient(cfg.RankingBaseURL, cfg.WorldIndex, cfg.FetchTimeout, logger)
	fetcher := maplestory.NewFetcher(client, maplestory.FetcherConfig{}, logger)
	reconciler := progression.NewReconciler(st, fetcher, logger)

	var notify progression.NotifyFunc
	if cfg.DiscordWebhookURL != "" {
		notify = discord.NewWebhookClient(cfg.DiscordWebhookURL).NotifyPassSummary
		logger.Info().Msg("Discord notifications enabled")
	}

	scheduler := progression.NewScheduler(reconciler, notify, cfg.UpdateHourUTC, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var authService *auth.Service
	if cfg.JWTSecret != "" && cfg.JWTRefreshSecret != "" {
		authService, err = auth.NewService(cfg.JWTSecret, cfg.JWTRefreshSecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("Configuring auth failed")
		}
	} else {
		logger.Warn().Msg("JWT secrets not set, write endpoints disabled")
	}

	server := api.NewServer(st, progression.NewService(st), scheduler, authService, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
}
