package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DMounas/TradePulse-HFT/internal/alerts"
	"github.com/DMounas/TradePulse-HFT/internal/broadcast"
	"github.com/DMounas/TradePulse-HFT/internal/cache"
	"github.com/DMounas/TradePulse-HFT/internal/config"
	"github.com/DMounas/TradePulse-HFT/internal/database"
	"github.com/DMounas/TradePulse-HFT/internal/engine"
	"github.com/DMounas/TradePulse-HFT/internal/feed"
	"github.com/DMounas/TradePulse-HFT/internal/httpapi"
	"github.com/DMounas/TradePulse-HFT/internal/news"
	"github.com/DMounas/TradePulse-HFT/internal/portfolio"
	"github.com/DMounas/TradePulse-HFT/internal/ratelimit"
)

// shutdownTimeout bounds how long in-flight HTTP requests may run once
// a stop signal arrives.
const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting TradePulse server")

	// 3. PostgreSQL holds the executed trade history
	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	log.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("Connected to PostgreSQL")

	// 4. Redis keeps the latest snapshot for late joiners
	snapshots := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, component("cache"))
	defer snapshots.Close()

	// 5. Shared market state
	hub := broadcast.NewHub(component("hub"))
	ledger := portfolio.NewLedger(cfg.StartingUSD, cfg.TradeAmount)
	headlines := news.NewStore(100)

	// 6. Ingestion pipeline: upstream feed into the engine
	eng := engine.New(engine.Config{
		WindowSize:     cfg.WindowSize,
		WhaleThreshold: cfg.WhaleThreshold,
	}, hub, snapshots, component("engine"))

	notifier, err := alerts.New(cfg.TelegramToken, cfg.TelegramChatID, cfg.AlertCooldown, component("alerts"))
	if err != nil {
		log.Warn().Err(err).Msg("Telegram alerts disabled")
	} else if notifier != nil {
		eng.SetNotifier(notifier)
	}

	connector := &feed.Connector{
		URL:            cfg.FeedURL,
		ReconnectDelay: cfg.ReconnectDelay,
		Logger:         component("feed"),
		OnTick:         eng.HandleTick,
		OnConnect:      eng.Connected,
	}

	// 7. HTTP surface
	limiter := ratelimit.New(cfg.RateLimitMaxCalls, cfg.RateLimitWindow, component("ratelimit"))
	defer limiter.Close()

	handler := httpapi.NewHandler(db, ledger, headlines, snapshots, hub, limiter, db, component("http"))
	srv := handler.Setup(cfg.Port)

	go func() {
		log.Info().Int("port", cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- eng.Run(ctx, connector)
	}()

	// 8. Block until a signal arrives or the pipeline dies
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	engineExited := false
	select {
	case <-stop:
		log.Info().Msg("Shutdown signal received")
	case err := <-engineDone:
		engineExited = true
		if err != nil {
			log.Error().Err(err).Msg("Ingestion loop failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}

	cancel()
	if !engineExited {
		if err := <-engineDone; err != nil {
			log.Error().Err(err).Msg("Ingestion loop failed")
		}
	}

	log.Info().Msg("Server stopped")
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// component derives a child logger tagged with the subsystem name.
func component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
