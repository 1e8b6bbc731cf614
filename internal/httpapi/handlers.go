package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gobwas/ws"

	"github.com/DMounas/TradePulse-HFT/internal/broadcast"
	"github.com/DMounas/TradePulse-HFT/models"
)

// historyLimit caps how many trades the history endpoint returns.
const historyLimit = 10

// newsLimit caps how many headlines the news endpoint returns.
const newsLimit = 20

type tradeRequest struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

type newsRequest struct {
	Ticker    string `json:"ticker"`
	Headline  string `json:"headline"`
	Sentiment string `json:"sentiment"`
}

// GetPortfolio returns the current paper-trading balances.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sendJSONResponse(w, h.ledger.Balances())
}

// ExecuteTrade applies a BUY or SELL at the caller's price and records
// the fill.
func (h *Handler) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 {
		sendErrorResponse(w, "Price must be positive", http.StatusBadRequest)
		return
	}

	side := strings.ToUpper(strings.TrimSpace(req.Type))

	var pf models.Portfolio
	var err error
	switch side {
	case models.TradeBuy:
		pf, err = h.ledger.Buy(req.Price)
	case models.TradeSell:
		pf, err = h.ledger.Sell(req.Price)
	default:
		sendErrorResponse(w, fmt.Sprintf("Unknown trade type: %s", req.Type), http.StatusBadRequest)
		return
	}
	if err != nil {
		sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.store.RecordTrade(r.Context(), side, req.Price, h.ledger.TradeAmount())
	if err != nil {
		h.logger.Error().Err(err).Str("type", side).Msg("Failed to record trade")
		sendErrorResponse(w, "Trade executed but not recorded", http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("type", side).
		Float64("price", req.Price).
		Int64("trade_id", id).
		Float64("usd", pf.USD).
		Float64("btc", pf.BTC).
		Msg("Trade executed")

	sendJSONResponse(w, map[string]interface{}{
		"status":    "executed",
		"trade_id":  id,
		"portfolio": pf,
	})
}

// GetTradeHistory returns the most recent fills, newest first.
func (h *Handler) GetTradeHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trades, err := h.store.RecentTrades(r.Context(), historyLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load trade history")
		sendErrorResponse(w, "Failed to load trade history", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}
	sendJSONResponse(w, trades)
}

// GetMarketLatest serves the last enriched event seen by the pipeline.
func (h *Handler) GetMarketLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := h.cache.Latest(r.Context())
	if err != nil {
		sendErrorResponse(w, "Snapshot store unavailable", http.StatusServiceUnavailable)
		return
	}
	if payload == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// IngestNews accepts one headline from the news generator.
func (h *Handler) IngestNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	headline := strings.TrimSpace(req.Headline)
	if ticker == "" || headline == "" {
		sendErrorResponse(w, "Both ticker and headline are required", http.StatusBadRequest)
		return
	}

	stored := h.headlines.Add(models.Headline{
		Ticker:    ticker,
		Headline:  headline,
		Sentiment: strings.ToUpper(strings.TrimSpace(req.Sentiment)),
	})

	sendJSONResponse(w, stored)
}

// GetNews returns recent headlines, newest first.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sendJSONResponse(w, h.headlines.Recent(newsLimit))
}

// HealthCheck reports the state of the backing services.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC(),
		"postgres":    h.checkPostgres(r),
		"redis":       h.checkRedis(r),
		"subscribers": h.hub.Count(),
	}
	sendJSONResponse(w, response)
}

func (h *Handler) checkPostgres(r *http.Request) string {
	if h.db == nil {
		return "disabled"
	}
	if err := h.db.PingContext(r.Context()); err != nil {
		return "disconnected"
	}
	return "connected"
}

func (h *Handler) checkRedis(r *http.Request) string {
	if h.cache == nil {
		return "disabled"
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		return "disconnected"
	}
	return "connected"
}

// StreamWS upgrades the connection and attaches it to the hub. A late
// joiner gets the latest snapshot before live events start flowing.
func (h *Handler) StreamWS(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := broadcast.NewClient(conn, h.hub, h.logger)

	if h.cache != nil {
		if snapshot, err := h.cache.Latest(r.Context()); err == nil && snapshot != nil {
			client.Enqueue(snapshot)
		}
	}

	h.hub.Register(client)
	client.Start()

	h.logger.Info().
		Str("subscriber", client.ID()).
		Int("total", h.hub.Count()).
		Msg("Stream subscriber connected")
}
