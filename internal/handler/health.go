package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleHealth reports backend status. Admins always get a fresh probe plus
// the resolved endpoints.
func (h *Handler) handleHealth(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	isAdmin := update.Message.From != nil && h.cfg.IsAdmin(update.Message.From.ID)

	if isAdmin {
		h.health.Invalidate()
	}
	status, err := h.health.Get(ctx)

	var sb strings.Builder
	if err != nil {
		slog.Warn("health check", "error", err)
		sb.WriteString("🔴 Backend unreachable")
	} else {
		fmt.Fprintf(&sb, "🟢 Backend status: %s", status)
	}

	if isAdmin {
		ep := h.backend.Endpoints()
		fmt.Fprintf(&sb, "\n\nAPI base: %s\nGenerate: %s\nAssistant: %s\nStorage: %s",
			ep.APIBase(), ep.Generate, ep.Assistant, h.cfg.StorageBackend)
		if err != nil {
			fmt.Fprintf(&sb, "\nError: %v", err)
		}
	}
	h.reply(ctx, b, chatID, sb.String())
}
