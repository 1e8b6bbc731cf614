package models

import "time"

// Trade sides accepted by the execution endpoint.
const (
	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// Status classifies the latest price against the rolling window.
type Status string

const (
	// StatusCalibrating means the window holds too few samples to judge.
	StatusCalibrating Status = "CALIBRATING"
	// StatusStable means the window has no variance at all.
	StatusStable Status = "STABLE"
	// StatusNormal means the price sits inside the expected band.
	StatusNormal Status = "NORMAL"
	// StatusPumpDetected means the price spiked above the band.
	StatusPumpDetected Status = "PUMP_DETECTED"
	// StatusDumpDetected means the price crashed below the band.
	StatusDumpDetected Status = "DUMP_DETECTED"
)

// Tick is a single trade decoded from the upstream feed.
type Tick struct {
	Price     float64
	Quantity  float64
	Timestamp time.Time
}

// Volume returns the notional size of the trade in quote currency.
func (t Tick) Volume() float64 {
	return t.Price * t.Quantity
}

// Classification is the statistical verdict for one tick.
type Classification struct {
	Status    Status  `json:"status"`
	ZScore    float64 `json:"z_score"`
	MeanPrice float64 `json:"mean_price"`
}

// EnrichedEvent is the payload fanned out to stream subscribers.
type EnrichedEvent struct {
	Price     float64        `json:"price"`
	Stats     Classification `json:"stats"`
	Volume    float64        `json:"volume"`
	IsWhale   bool           `json:"is_whale"`
	Timestamp time.Time      `json:"timestamp"`
}

// TradeRecord is a persisted BUY or SELL execution.
type TradeRecord struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Portfolio is a snapshot of the paper-trading balances.
type Portfolio struct {
	USD float64 `json:"usd"`
	BTC float64 `json:"btc"`
}

// Headline is one item from the simulated news feed.
type Headline struct {
	ID        int64     `json:"id"`
	Ticker    string    `json:"ticker"`
	Headline  string    `json:"headline"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
