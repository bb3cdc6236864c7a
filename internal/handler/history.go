package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/middleware"
	"github.com/set-night/sketchbot/internal/service"
	tg "github.com/set-night/sketchbot/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendHistoryPage(ctx, b, update.Message.Chat.ID, 0, 0)
}

func (h *Handler) handleHistoryPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil || cq.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})

	page, ok := tg.ParsePage(cq.Data, tg.CallbackHistoryPrefix)
	if !ok {
		return
	}
	msg := cq.Message.Message
	h.sendHistoryPage(ctx, b, msg.Chat.ID, page, msg.ID)
}

// sendHistoryPage renders one page of the history log. A non-zero
// messageID edits that message in place.
func (h *Handler) sendHistoryPage(ctx context.Context, b *bot.Bot, chatID int64, page, messageID int) {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	entries, err := ws.Sessions.LoadHistory(ctx)
	if err != nil {
		slog.Error("load history", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, "❌ Could not load history.")
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, b, chatID, "No history yet. Generate a design or ask the assistant.")
		return
	}

	items, page, totalPages := service.Paginate(entries, page, config.HistoryPerPage)
	text := renderHistory(items, len(entries))

	var markup models.ReplyMarkup
	if totalPages > 1 {
		markup = tg.InlineKeyboard(tg.PaginationRow(page, totalPages, tg.CallbackHistoryPrefix))
	}

	if messageID != 0 {
		err = tg.EditLongMessage(ctx, b, chatID, messageID, text, markup)
	} else {
		err = tg.SendLongMessage(ctx, b, chatID, text, markup)
	}
	if err != nil {
		slog.Error("send history page", "chat_id", chatID, "page", page, "error", err)
	}
}

func renderHistory(items []domain.HistoryEntry, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 *History* (%d)\n", total)

	for _, e := range items {
		sb.WriteString("\n")
		switch r := e.(type) {
		case domain.GenerationRecord:
			fmt.Fprintf(&sb, "🎨 *%s* · %s\n%s\n", r.Title, r.Timestamp, tg.EscapeMarkdown(r.Description))
			if r.ImageURL != "" && !strings.HasPrefix(r.ImageURL, "data:") {
				fmt.Fprintf(&sb, "%s\n", tg.EscapeMarkdown(r.ImageURL))
			}
		case domain.ChatRecord:
			fmt.Fprintf(&sb, "💬 *%s* · %s\n%s\n", r.Title, r.Timestamp, tg.EscapeMarkdown(r.Message))
		default:
			fmt.Fprintf(&sb, "• %s · %s\n", tg.EscapeMarkdown(e.Heading()), e.When())
		}
	}
	return sb.String()
}
