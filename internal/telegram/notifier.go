package telegram

import (
	"fmt"
	"log"

	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const excerptLimit = 200

// Notifier pings a Telegram chat when a visitor writes while no admin
// connection is live, so the admin knows to come back. It is a side listener on
// the hub: failures are logged and never reach the message send path.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier authorizes the bot and targets the given chat.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot authorization failed: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// Attach subscribes the notifier to the hub. The returned func detaches it.
func (n *Notifier) Attach(hub *chathub.Hub) func() {
	return hub.Subscribe(func(msg models.OutboundMessage, liveAdmins int) {
		if !ShouldNotify(msg, liveAdmins) {
			return
		}
		// Broadcast runs on the send path; keep network I/O off it.
		go n.notify(msg)
	})
}

// ShouldNotify reports whether a broadcast warrants a Telegram ping: only
// visitor-origin messages, and only when no admin connection is live.
func ShouldNotify(msg models.OutboundMessage, liveAdmins int) bool {
	return !msg.IsAdminReply && liveAdmins == 0
}

func (n *Notifier) notify(msg models.OutboundMessage) {
	text := fmt.Sprintf("New message in conversation #%d:\n%s", msg.ConversationID, Excerpt(msg.Content, excerptLimit))
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send telegram notification for conversation %d: %v", msg.ConversationID, err)
	}
}

// Excerpt truncates s to at most limit runes, appending an ellipsis when cut.
func Excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
