package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/middleware"
	tg "github.com/set-night/sketchbot/internal/telegram"
)

func (h *Handler) handleAsk(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	text := commandRest(update.Message.Text)
	if text == "" {
		h.reply(ctx, b, update.Message.Chat.ID, "Usage: /ask <question>")
		return
	}
	h.askAssistant(ctx, b, update.Message.Chat.ID, text)
}

// askAssistant forwards text to the design assistant and posts the reply,
// or the fallback reply when the call failed.
func (h *Handler) askAssistant(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	if ws.Assistant.Sending() {
		h.reply(ctx, b, chatID, "⏳ Wait for the answer to your previous message.")
		return
	}

	stop := tg.StartChatAction(ctx, b, chatID, models.ChatActionTyping)
	reply, err := ws.Assistant.Send(ctx, text)
	stop()
	if err != nil {
		h.opsLogger.LogError(err, fmt.Sprintf("assistant for chat %d", chatID))
	}
	if reply == nil {
		return
	}

	if err := tg.SendLongMessage(ctx, b, chatID, "🤖 "+reply.Text, nil); err != nil {
		slog.Error("send assistant reply", "chat_id", chatID, "error", err)
	}
}
