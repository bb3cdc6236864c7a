package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/middleware"
	tg "github.com/set-night/sketchbot/internal/telegram"
)

// handleSketchUpload stores an incoming photo or image document as the
// chat's sketch. A caption, if present, is used as the description right away.
func (h *Handler) handleSketchUpload(ctx context.Context, b *bot.Bot, update *models.Update) {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	fileID, filename, _ := tg.ImageAttachment(msg)
	data, remoteName, err := tg.DownloadFile(ctx, b, fileID)
	if err != nil {
		slog.Error("download sketch", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, "❌ Could not download the image from Telegram.")
		return
	}
	if filename == "" {
		filename = remoteName
	}

	if err := ws.Generation.Upload(ctx, bytes.NewReader(data), filename); err != nil {
		slog.Error("upload sketch", "chat_id", chatID, "error", err)
		return
	}

	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		h.generate(ctx, b, chatID, caption)
		return
	}
	h.reply(ctx, b, chatID, "Now describe what you want: /generate <description>")
}

func (h *Handler) handleGenerate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.generate(ctx, b, update.Message.Chat.ID, commandRest(update.Message.Text))
}

// generate runs one generation and sends the result as a photo. Progress,
// success and failure toasts come from the generation service.
func (h *Handler) generate(ctx context.Context, b *bot.Bot, chatID int64, description string) {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	stop := tg.StartChatAction(ctx, b, chatID, models.ChatActionUploadPhoto)
	res, err := ws.Generation.Generate(ctx, description)
	stop()
	if err != nil {
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			h.opsLogger.LogError(err, fmt.Sprintf("generate for chat %d", chatID))
		}
		return
	}

	caption := fmt.Sprintf("*%s*\n%s", res.Record.Title, tg.EscapeMarkdown(res.Record.Description))
	if r := []rune(caption); len(r) > 1024 {
		caption = string(r[:1021]) + "..."
	}

	data, err := ws.Generation.FetchResult(ctx)
	if err == nil {
		_, err = tg.SendPhotoBytes(ctx, b, chatID, data, config.SketchFilename, caption, nil)
	}
	if err != nil {
		slog.Warn("deliver generated image", "chat_id", chatID, "error", err)
		if res.Source.Kind == domain.ImageRemote {
			h.reply(ctx, b, chatID, "Your design is ready: "+res.ImageURL)
		} else {
			h.reply(ctx, b, chatID, "❌ The design was generated but could not be delivered.")
		}
	}
}

func (h *Handler) handleMode(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if arg := commandRest(update.Message.Text); arg != "" {
		mode, ok := domain.ParseMode(arg)
		if !ok {
			h.reply(ctx, b, chatID, "Usage: /mode [ui|3d]")
			return
		}
		ws.Generation.SetMode(mode)
	}

	current := ws.Generation.Mode()
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Generation mode: " + current.Label(),
		ReplyMarkup: tg.ModeKeyboard(current),
	})
	if err != nil {
		slog.Error("send mode keyboard", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) handleModeSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil || cq.Message.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	mode, ok := domain.ParseMode(strings.TrimPrefix(cq.Data, tg.CallbackModePrefix))
	if !ok {
		h.handleNoop(ctx, b, update)
		return
	}
	ws.Generation.SetMode(mode)

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            mode.Label(),
	})

	msg := cq.Message.Message
	_, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		ReplyMarkup: tg.ModeKeyboard(mode),
	})
	if err != nil {
		slog.Debug("refresh mode keyboard", "error", err)
	}
}
