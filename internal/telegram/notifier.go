package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
)

// ChatNotifier delivers status toasts as short messages in one chat.
type ChatNotifier struct {
	bot    *bot.Bot
	chatID int64
}

func NewChatNotifier(b *bot.Bot, chatID int64) *ChatNotifier {
	return &ChatNotifier{bot: b, chatID: chatID}
}

func (n *ChatNotifier) Success(ctx context.Context, msg string) {
	n.send(ctx, "✅ "+msg)
}

func (n *ChatNotifier) Error(ctx context.Context, msg string) {
	n.send(ctx, "⚠️ "+msg)
}

func (n *ChatNotifier) send(ctx context.Context, text string) {
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: n.chatID, Text: text}); err != nil {
		slog.Warn("send notification", "chat_id", n.chatID, "error", err)
	}
}
