package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/middleware"
	tg "github.com/set-night/sketchbot/internal/telegram"
)

const helpText = "📋 *Commands:*\n" +
	"/signin <email> <password> — Sign in\n" +
	"/signup <email> <username> <password> — Create an account\n" +
	"/logout — Sign out\n" +
	"/whoami — Current account\n" +
	"/mode — Sketch → UI or Sketch → 3D Product\n" +
	"/generate <description> — Turn the sketch into a design\n" +
	"/ask <question> — Ask the design assistant\n" +
	"/history — Past generations and chats\n" +
	"/health — Backend status\n\n" +
	"Send a photo to upload a sketch (%s). Any other text goes to the assistant."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := update.Message.Chat.ID

	greeting := "👋 *Sketch to design*\n\n" + config.AssistantGreeting + "."
	session, err := ws.Sessions.Load(ctx)
	if err != nil {
		slog.Error("load session", "chat_id", chatID, "error", err)
	}
	if session != nil {
		greeting += fmt.Sprintf("\nSigned in as *%s*.", tg.EscapeMarkdown(session.Username))
	}
	greeting += fmt.Sprintf("\nMode: *%s*\n\n", ws.Generation.Mode().Label())

	text := greeting + fmt.Sprintf(helpText, config.AdvisoryUploadLimit)
	if err := tg.SendLongMessage(ctx, b, chatID, text, tg.ModeKeyboard(ws.Generation.Mode())); err != nil {
		slog.Error("send start message", "chat_id", chatID, "error", err)
	}
}
