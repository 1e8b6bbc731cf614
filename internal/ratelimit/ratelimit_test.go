package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(5, time.Minute, zerolog.Nop())
	defer l.Close()

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected inside the budget", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over the budget was admitted")
	}
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(2, time.Minute, zerolog.Nop())
	defer l.Close()

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Error("first client exceeded its budget")
	}

	if !l.Allow("10.0.0.2") {
		t.Error("second client was throttled by the first client's traffic")
	}
}

func TestTokensRefill(t *testing.T) {
	l := New(2, 100*time.Millisecond, zerolog.Nop())
	defer l.Close()

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Fatal("budget not exhausted when expected")
	}

	time.Sleep(120 * time.Millisecond)

	if !l.Allow("10.0.0.1") {
		t.Error("tokens did not refill after the window passed")
	}
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := New(1, time.Minute, zerolog.Nop())
	defer l.Close()

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/portfolio", nil)
	req.RemoteAddr = "10.0.0.9:54321"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("429 content type = %q, want application/json", ct)
	}
}
