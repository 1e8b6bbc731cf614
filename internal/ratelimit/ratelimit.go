package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client entry survives before the
// janitor drops it.
const staleAfter = 3 * time.Minute

// Limiter admits or rejects requests per client IP. Each client gets a
// token bucket holding maxCalls tokens refilled over the window, which
// caps sustained traffic at maxCalls per window while allowing short
// bursts up to the same size.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client

	maxCalls int
	window   time.Duration
	logger   zerolog.Logger
	stop     chan struct{}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func New(maxCalls int, window time.Duration, logger zerolog.Logger) *Limiter {
	l := &Limiter{
		clients:  make(map[string]*client),
		maxCalls: maxCalls,
		window:   window,
		logger:   logger,
		stop:     make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow reports whether the client identified by ip may proceed.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.maxCalls)), l.maxCalls),
		}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

// Middleware rejects over-limit clients with 429 before the wrapped
// handler runs.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			l.logger.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error": fmt.Sprintf("Rate limit exceeded. Max %d requests per %.0f seconds.", l.maxCalls, l.window.Seconds()),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the janitor goroutine.
func (l *Limiter) Close() {
	close(l.stop)
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-staleAfter)
			l.mu.Lock()
			for ip, c := range l.clients {
				if c.lastSeen.Before(cutoff) {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
