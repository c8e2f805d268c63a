package notify

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Hezi12/rothschild-backoffice/internal/events"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// Telegram pushes operational alerts to the managers' chats: double
// bookings found while indexing and relocation races rejected by the
// server. Delivery is best effort; a failed send is logged, never
// propagated into the operation that triggered it.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// New connects the bot. Telegram's bot API tolerates about one message
// per second per chat, hence the limiter.
func New(token string, chatIDs []int64, logger *zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return &Telegram{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:  logger,
	}, nil
}

// Subscribe attaches the notifier to the engine's event bus.
func (t *Telegram) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.TopicIntegrityWarning, t.handleIntegrityWarning)
	bus.Subscribe(events.TopicRelocationConflict, t.handleRelocationConflict)
}

func (t *Telegram) handleIntegrityWarning(e events.Event) error {
	var p events.IntegrityEvent
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return err
	}
	t.broadcast(fmt.Sprintf(
		"⚠️ Double booking on room %s for %s: keeping %s, overlapped by %s",
		p.RoomID, models.DateKey(p.Date), p.KeptBookingID, p.LostBookingID))
	return nil
}

func (t *Telegram) handleRelocationConflict(e events.Event) error {
	var p events.RelocationEvent
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return err
	}
	t.broadcast(fmt.Sprintf(
		"❌ Relocation of booking %s to room %s on %s was rejected: %s",
		p.BookingID, p.TargetRoomID, models.DateKey(p.TargetDate), p.Reason))
	return nil
}

func (t *Telegram) broadcast(text string) {
	for _, chatID := range t.chatIDs {
		if err := t.limiter.Wait(context.Background()); err != nil {
			return
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		}
	}
}
