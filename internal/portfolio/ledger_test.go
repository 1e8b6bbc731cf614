package portfolio

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBuyDebitsUSD(t *testing.T) {
	l := NewLedger(100000, 0.1)

	pf, err := l.Buy(60000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if !almostEqual(pf.USD, 94000) {
		t.Errorf("USD = %v, want 94000", pf.USD)
	}
	if !almostEqual(pf.BTC, 0.1) {
		t.Errorf("BTC = %v, want 0.1", pf.BTC)
	}
}

func TestSellCreditsUSD(t *testing.T) {
	l := NewLedger(100000, 0.1)
	if _, err := l.Buy(60000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	pf, err := l.Sell(62000)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	if !almostEqual(pf.USD, 100200) {
		t.Errorf("USD = %v, want 100200 after buying low and selling high", pf.USD)
	}
	if !almostEqual(pf.BTC, 0) {
		t.Errorf("BTC = %v, want 0", pf.BTC)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	l := NewLedger(100, 0.1)

	_, err := l.Buy(60000)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Buy error = %v, want ErrInsufficientFunds", err)
	}

	// A rejected order must not move the balances.
	pf := l.Balances()
	if !almostEqual(pf.USD, 100) || !almostEqual(pf.BTC, 0) {
		t.Errorf("balances after rejected buy = %+v, want unchanged", pf)
	}
}

func TestSellWithoutHoldings(t *testing.T) {
	l := NewLedger(100000, 0.1)

	_, err := l.Sell(60000)
	if !errors.Is(err, ErrInsufficientBTC) {
		t.Fatalf("Sell error = %v, want ErrInsufficientBTC", err)
	}

	pf := l.Balances()
	if !almostEqual(pf.USD, 100000) || !almostEqual(pf.BTC, 0) {
		t.Errorf("balances after rejected sell = %+v, want unchanged", pf)
	}
}

func TestBuyExactBalance(t *testing.T) {
	l := NewLedger(6000, 0.1)

	pf, err := l.Buy(60000)
	if err != nil {
		t.Fatalf("Buy with exactly enough USD: %v", err)
	}
	if !almostEqual(pf.USD, 0) {
		t.Errorf("USD = %v, want 0", pf.USD)
	}
}

func TestConcurrentTrades(t *testing.T) {
	l := NewLedger(100000, 0.1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Buy(1000)
		}()
	}
	wg.Wait()

	pf := l.Balances()
	if !almostEqual(pf.USD, 95000) {
		t.Errorf("USD = %v after 50 concurrent buys of $100, want 95000", pf.USD)
	}
	if !almostEqual(pf.BTC, 5) {
		t.Errorf("BTC = %v, want 5", pf.BTC)
	}
}
