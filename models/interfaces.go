package models

import "context"

// TradeStore persists executed trades and serves them back newest first.
type TradeStore interface {
	RecordTrade(ctx context.Context, tradeType string, price, amount float64) (int64, error)
	RecentTrades(ctx context.Context, limit int) ([]TradeRecord, error)
}
