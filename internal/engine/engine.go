package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/DMounas/TradePulse-HFT/internal/anomaly"
	"github.com/DMounas/TradePulse-HFT/internal/window"
	"github.com/DMounas/TradePulse-HFT/models"
)

// logInterval is how many ticks pass between progress log lines.
const logInterval = 500

// State is the lifecycle phase of the ingestion loop.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Feed delivers ticks until its context is cancelled.
type Feed interface {
	Run(ctx context.Context) error
}

// Publisher fans an encoded event out to stream subscribers.
type Publisher interface {
	Publish(payload []byte)
}

// SnapshotCache keeps the most recent event for late joiners.
type SnapshotCache interface {
	SetLatest(ctx context.Context, payload []byte) error
}

// Notifier is told about pump and dump verdicts.
type Notifier interface {
	Notify(event models.EnrichedEvent)
}

// Config holds the tunables of the ingestion loop.
type Config struct {
	WindowSize     int
	WhaleThreshold float64
}

// Engine is the ingestion loop: it receives ticks from the feed,
// updates the rolling window, classifies the price and hands the
// enriched event to the hub. All window access happens on the feed's
// read loop, so the window has exactly one writer.
type Engine struct {
	cfg    Config
	window *window.Window
	hub    Publisher
	cache  SnapshotCache
	alerts Notifier
	logger zerolog.Logger

	ctx       context.Context
	state     atomic.Int32
	processed int64
}

func New(cfg Config, hub Publisher, cache SnapshotCache, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:    cfg,
		window: window.New(cfg.WindowSize),
		hub:    hub,
		cache:  cache,
		logger: logger,
		ctx:    context.Background(),
	}
	e.state.Store(int32(StateStarting))
	return e
}

// SetNotifier attaches an optional anomaly notifier.
func (e *Engine) SetNotifier(n Notifier) {
	e.alerts = n
}

// State reports the current lifecycle phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// advance moves the lifecycle forward to target. Phases only ever move
// forward, so a late Stopping can never undo a Stopped.
func (e *Engine) advance(target State) {
	for {
		current := State(e.state.Load())
		if current >= target {
			return
		}
		if e.state.CompareAndSwap(int32(current), int32(target)) {
			return
		}
	}
}

// Connected marks the first successful upstream connection. Wire it as
// the feed's OnConnect callback.
func (e *Engine) Connected() {
	e.advance(StateRunning)
}

// Run drives the pipeline until ctx is cancelled. Transient feed
// errors are absorbed by the connector; Run returns nil on a clean
// shutdown.
func (e *Engine) Run(ctx context.Context, feed Feed) error {
	e.ctx = ctx
	e.logger.Info().Msg("Ingestion loop starting")

	watcher := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.advance(StateStopping)
		case <-watcher:
		}
	}()

	err := feed.Run(ctx)

	close(watcher)
	e.advance(StateStopping)
	e.advance(StateStopped)
	e.logger.Info().Int64("ticks", e.processed).Msg("Ingestion loop stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// HandleTick processes one decoded trade. It runs on the feed's read
// loop; a tick that arrives mid-shutdown is dropped whole rather than
// processed halfway.
func (e *Engine) HandleTick(tick models.Tick) {
	if e.ctx.Err() != nil {
		return
	}

	e.window.Push(tick.Price)
	stats := anomaly.Classify(e.window.Snapshot(), tick.Price)

	volume := tick.Volume()
	event := models.EnrichedEvent{
		Price:     tick.Price,
		Stats:     stats,
		Volume:    volume,
		IsWhale:   volume > e.cfg.WhaleThreshold,
		Timestamp: tick.Timestamp,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to encode event")
		return
	}

	e.hub.Publish(payload)

	if e.cache != nil {
		if err := e.cache.SetLatest(e.ctx, payload); err != nil {
			e.logger.Debug().Err(err).Msg("Snapshot cache write failed")
		}
	}

	switch stats.Status {
	case models.StatusPumpDetected, models.StatusDumpDetected:
		e.logger.Warn().
			Str("status", string(stats.Status)).
			Float64("price", tick.Price).
			Float64("z_score", stats.ZScore).
			Msg("Anomaly detected")
		if e.alerts != nil {
			e.alerts.Notify(event)
		}
	}

	e.processed++
	if e.processed%logInterval == 0 {
		e.logger.Info().
			Int64("ticks", e.processed).
			Str("status", string(stats.Status)).
			Float64("price", tick.Price).
			Msg("Pipeline progress")
	}
}
