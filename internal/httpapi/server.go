package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/DMounas/TradePulse-HFT/internal/broadcast"
	"github.com/DMounas/TradePulse-HFT/internal/news"
	"github.com/DMounas/TradePulse-HFT/internal/portfolio"
	"github.com/DMounas/TradePulse-HFT/internal/ratelimit"
	"github.com/DMounas/TradePulse-HFT/models"
)

// SnapshotSource serves the most recent enriched event.
type SnapshotSource interface {
	Latest(ctx context.Context) ([]byte, error)
	Ping(ctx context.Context) error
}

// DBPinger reports database reachability for the health endpoint.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the REST and WebSocket surface of the platform.
type Handler struct {
	store     models.TradeStore
	ledger    *portfolio.Ledger
	headlines *news.Store
	cache     SnapshotSource
	hub       *broadcast.Hub
	limiter   *ratelimit.Limiter
	db        DBPinger
	logger    zerolog.Logger
}

func NewHandler(
	store models.TradeStore,
	ledger *portfolio.Ledger,
	headlines *news.Store,
	cache SnapshotSource,
	hub *broadcast.Hub,
	limiter *ratelimit.Limiter,
	db DBPinger,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		store:     store,
		ledger:    ledger,
		headlines: headlines,
		cache:     cache,
		hub:       hub,
		limiter:   limiter,
		db:        db,
		logger:    logger,
	}
}

// Setup builds the route table and returns the server ready to listen.
func (h *Handler) Setup(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: h.Routes(),
	}
}

// Routes assembles the mux with rate limiting on the REST endpoints.
// Health and the stream upgrade stay unthrottled: probes poll health
// aggressively and the stream is limited by the hub itself.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	limited := func(fn http.HandlerFunc) http.Handler {
		if h.limiter == nil {
			return fn
		}
		return h.limiter.Middleware(fn)
	}

	mux.Handle("/portfolio", limited(h.GetPortfolio))
	mux.Handle("/trade/execute", limited(h.ExecuteTrade))
	mux.Handle("/trade/history", limited(h.GetTradeHistory))
	mux.Handle("/market/latest", limited(h.GetMarketLatest))
	mux.Handle("/ingest/news", limited(h.IngestNews))
	mux.Handle("/news", limited(h.GetNews))
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/ws/stream", h.StreamWS)

	return corsMiddleware(mux)
}

// corsMiddleware mirrors the permissive policy the dashboard frontend
// expects.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sendJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func sendErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := map[string]string{
		"error": message,
	}
	json.NewEncoder(w).Encode(response)
}
