package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/DMounas/TradePulse-HFT/internal/platform/http"
)

// tickers and templates mirror the headlines a small market-news wire
// would emit. The producer exists so the news endpoints have traffic
// during local development and demos.
var tickers = []string{"BTC", "ETH", "AAPL", "TSLA", "GOOGL", "NVDA"}

var templates = []struct {
	phrase    string
	sentiment string
}{
	{"surge hits record high", "POSITIVE"},
	{"faces massive lawsuit", "NEGATIVE"},
	{"announces new product line", "POSITIVE"},
	{"price drops significantly", "NEGATIVE"},
	{"CEO steps down", "NEGATIVE"},
	{"quarterly profits exceed expectations", "POSITIVE"},
	{"remains stable", "NEUTRAL"},
	{"market bulls are buying", "POSITIVE"},
	{"bears take control of market", "NEGATIVE"},
}

type headlinePayload struct {
	Ticker    string `json:"ticker"`
	Headline  string `json:"headline"`
	Sentiment string `json:"sentiment,omitempty"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	defaultTarget := os.Getenv("NEWS_TARGET_URL")
	if defaultTarget == "" {
		defaultTarget = "http://127.0.0.1:8080/ingest/news"
	}
	target := flag.String("target", defaultTarget, "news ingest endpoint")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	client := httpClient.NewClient(httpClient.ClientOptions{
		Timeout:         10 * time.Second,
		RequestsPerSec:  2,
		MaxRetryTimeout: 15 * time.Second,
	})

	log.Info().Str("target", *target).Msg("Starting headline producer")

	for ctx.Err() == nil {
		ticker := tickers[rand.Intn(len(tickers))]
		tpl := templates[rand.Intn(len(templates))]
		payload := headlinePayload{
			Ticker:    ticker,
			Headline:  fmt.Sprintf("%s %s amid market volatility.", ticker, tpl.phrase),
			Sentiment: tpl.sentiment,
		}

		if err := client.PostJSON(ctx, *target, payload); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Msg("Failed to deliver headline, is the server running?")
		} else {
			log.Info().Str("ticker", ticker).Str("headline", payload.Headline).Msg("Headline sent")
		}

		// A fresh headline every one to three seconds.
		delay := time.Duration(1000+rand.Intn(2000)) * time.Millisecond
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}

	log.Info().Msg("Producer stopped")
}

// setupSignalHandling cancels the root context on SIGINT or SIGTERM.
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}
