package portfolio

import (
	"errors"
	"sync"

	"github.com/DMounas/TradePulse-HFT/models"
)

var (
	// ErrInsufficientFunds means the USD balance cannot cover the buy.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientBTC means the BTC balance cannot cover the sell.
	ErrInsufficientBTC = errors.New("insufficient BTC")
)

// Ledger is the in-memory paper-trading balance. Trades execute at a
// fixed BTC amount per order. The ledger is shared by request handlers
// and never touched by the ingestion loop.
type Ledger struct {
	mu          sync.Mutex
	usd         float64
	btc         float64
	tradeAmount float64
}

// NewLedger starts a ledger with the given USD balance and zero BTC.
func NewLedger(startingUSD, tradeAmount float64) *Ledger {
	return &Ledger{
		usd:         startingUSD,
		tradeAmount: tradeAmount,
	}
}

// TradeAmount is the fixed BTC size of every order.
func (l *Ledger) TradeAmount() float64 {
	return l.tradeAmount
}

// Buy debits USD for one order at the given price and credits BTC.
// The balances stay untouched when funds are short.
func (l *Ledger) Buy(price float64) (models.Portfolio, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cost := price * l.tradeAmount
	if l.usd < cost {
		return models.Portfolio{}, ErrInsufficientFunds
	}

	l.usd -= cost
	l.btc += l.tradeAmount
	return models.Portfolio{USD: l.usd, BTC: l.btc}, nil
}

// Sell debits BTC for one order at the given price and credits USD.
// The balances stay untouched when holdings are short.
func (l *Ledger) Sell(price float64) (models.Portfolio, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.btc < l.tradeAmount {
		return models.Portfolio{}, ErrInsufficientBTC
	}

	l.btc -= l.tradeAmount
	l.usd += price * l.tradeAmount
	return models.Portfolio{USD: l.usd, BTC: l.btc}, nil
}

// Balances returns the current snapshot.
func (l *Ledger) Balances() models.Portfolio {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.Portfolio{USD: l.usd, BTC: l.btc}
}
