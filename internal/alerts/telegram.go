package alerts

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/DMounas/TradePulse-HFT/models"
)

// sender is the slice of the bot API the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes pump and dump alerts to a Telegram chat. Repeated
// verdicts of the same status within the cooldown are suppressed so an
// anomaly burst produces one message, not hundreds.
type Notifier struct {
	bot      sender
	chatID   int64
	cooldown time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	lastSent map[models.Status]time.Time
}

// New authorizes the bot. A missing token or chat id disables alerts,
// which is signalled by a nil Notifier and a nil error.
func New(token string, chatID int64, cooldown time.Duration, logger zerolog.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorizing telegram bot: %w", err)
	}

	logger.Info().Str("username", bot.Self.UserName).Msg("Telegram alerts enabled")

	return &Notifier{
		bot:      bot,
		chatID:   chatID,
		cooldown: cooldown,
		logger:   logger,
		lastSent: make(map[models.Status]time.Time),
	}, nil
}

// Notify sends an alert for the event unless the same status fired
// within the cooldown. The actual send happens off the caller's
// goroutine so the ingestion loop never waits on the Telegram API.
func (n *Notifier) Notify(event models.EnrichedEvent) {
	n.mu.Lock()
	last, seen := n.lastSent[event.Stats.Status]
	if seen && time.Since(last) < n.cooldown {
		n.mu.Unlock()
		return
	}
	n.lastSent[event.Stats.Status] = time.Now()
	n.mu.Unlock()

	go n.send(event)
}

func (n *Notifier) send(event models.EnrichedEvent) {
	label := strings.ReplaceAll(string(event.Stats.Status), "_", " ")
	text := fmt.Sprintf(
		"*%s*\nPrice: $%.2f\nZ-score: %.2f (mean $%.2f)",
		label, event.Price, event.Stats.ZScore, event.Stats.MeanPrice,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("Failed to send Telegram alert")
		return
	}
	n.logger.Info().Str("status", string(event.Stats.Status)).Msg("Alert sent")
}
