package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/DMounas/TradePulse-HFT/models"
)

// maxMessageBytes bounds a single upstream frame.
const maxMessageBytes = 1 << 20

// Connector maintains the persistent connection to the upstream trade
// stream and turns raw messages into ticks.
type Connector struct {
	URL            string
	ReconnectDelay time.Duration
	Logger         zerolog.Logger

	// OnTick receives every decoded trade in arrival order. It runs on
	// the read loop, so it must not block for long.
	OnTick func(models.Tick)

	// OnConnect, when set, fires after every successful dial.
	OnConnect func()
}

// Run connects and reads until the connection fails, then waits the
// fixed reconnect delay and dials again. Transient errors never
// escape; Run returns only once ctx is cancelled.
func (c *Connector) Run(ctx context.Context) error {
	delay := c.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(delay), ctx)
	return backoff.Retry(func() error {
		err := c.consume(ctx, delay)
		if ctx.Err() != nil {
			// Shutdown wins over the retry loop.
			return backoff.Permanent(ctx.Err())
		}
		c.Logger.Error().Err(err).Dur("retry_in", delay).Msg("Feed connection lost")
		return err
	}, policy)
}

// consume dials the stream and processes messages until the connection
// breaks or ctx is cancelled.
func (c *Connector) consume(ctx context.Context, delay time.Duration) error {
	conn, _, err := websocket.Dial(ctx, c.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.URL, err)
	}
	conn.SetReadLimit(maxMessageBytes)
	defer conn.Close(websocket.StatusNormalClosure, "shutdown")

	c.Logger.Info().Str("url", c.URL).Msg("Connected to upstream feed")
	if c.OnConnect != nil {
		c.OnConnect()
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		tick, ok, err := decodeTick(data)
		if err != nil {
			// A bad message pauses the loop but keeps the connection.
			c.Logger.Warn().Err(err).Msg("Malformed feed message")
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
			continue
		}
		if !ok {
			// Heartbeats and subscription acks are not trades.
			continue
		}

		if c.OnTick != nil {
			c.OnTick(tick)
		}
	}
}

// decodeTick extracts a trade from a raw feed message. The bool result
// is false for messages that are not trades at all, which is not an
// error. Prices and quantities arrive either as JSON numbers or as
// numeric strings depending on the venue.
func decodeTick(data []byte) (models.Tick, bool, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Tick{}, false, fmt.Errorf("invalid JSON: %w", err)
	}

	priceRaw, hasPrice := raw["p"]
	if !hasPrice {
		return models.Tick{}, false, nil
	}

	price, err := toFloat(priceRaw)
	if err != nil {
		return models.Tick{}, false, fmt.Errorf("invalid price: %w", err)
	}
	qty, err := toFloat(raw["q"])
	if err != nil {
		return models.Tick{}, false, fmt.Errorf("invalid quantity: %w", err)
	}

	return models.Tick{
		Price:     price,
		Quantity:  qty,
		Timestamp: time.Now().UTC(),
	}, true, nil
}

func toFloat(v interface{}) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case string:
		return strconv.ParseFloat(value, 64)
	case nil:
		return 0, fmt.Errorf("field missing")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
