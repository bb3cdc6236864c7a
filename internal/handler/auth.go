package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/middleware"
	"github.com/set-night/sketchbot/internal/service"
	tg "github.com/set-night/sketchbot/internal/telegram"
)

func (h *Handler) handleSignIn(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.reply(ctx, b, update.Message.Chat.ID, "Usage: /signin <email> <password>")
		return
	}
	h.submitAuth(ctx, b, update.Message, service.AuthSignIn, service.Credentials{
		Email:    args[0],
		Password: args[1],
	})
}

func (h *Handler) handleSignUp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	args := commandArgs(update.Message.Text)
	if len(args) != 3 {
		h.reply(ctx, b, update.Message.Chat.ID, "Usage: /signup <email> <username> <password>")
		return
	}
	h.submitAuth(ctx, b, update.Message, service.AuthSignUp, service.Credentials{
		Email:    args[0],
		Username: args[1],
		Password: args[2],
	})
}

// submitAuth deletes the message carrying the password before anything
// else, then submits the form. The auth service sends the outcome toast.
func (h *Handler) submitAuth(ctx context.Context, b *bot.Bot, msg *models.Message, mode service.AuthMode, creds service.Credentials) {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := msg.Chat.ID
	tg.DeleteMessage(ctx, b, chatID, msg.ID)

	session, err := ws.Auth.Submit(ctx, mode, creds)
	switch {
	case errors.Is(err, domain.ErrBusy):
		h.reply(ctx, b, chatID, "⏳ Still signing you in, please wait.")
		return
	case err != nil:
		var authErr *domain.AuthenticationError
		if !errors.As(err, &authErr) {
			h.opsLogger.LogError(err, fmt.Sprintf("%s for chat %d", mode, chatID))
		}
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("Welcome, %s!", session.Username))
}

func (h *Handler) handleLogout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	if err := ws.Auth.Logout(ctx); err != nil {
		slog.Error("logout", "chat_id", update.Message.Chat.ID, "error", err)
		h.reply(ctx, b, update.Message.Chat.ID, "❌ Could not sign out, please try again.")
	}
}

func (h *Handler) handleWhoAmI(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := update.Message.Chat.ID

	session, err := ws.Auth.Current(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		h.reply(ctx, b, chatID, "You are not signed in. Use /signin or /signup.")
		return
	}
	if err != nil {
		slog.Error("load session", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, "❌ Could not read your session.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 *%s* (id `%d`)\n", tg.EscapeMarkdown(session.Username), session.UserID)

	profile, err := ws.Auth.Profile(ctx)
	var authErr *domain.AuthenticationError
	switch {
	case errors.As(err, &authErr):
		sb.WriteString("⚠️ The backend no longer accepts this session. Sign in again.\n")
	case err != nil:
		slog.Warn("fetch profile", "chat_id", chatID, "error", err)
		sb.WriteString("Profile unavailable right now.\n")
	default:
		fmt.Fprintf(&sb, "Email: %s\n", tg.EscapeMarkdown(profile.Email))
		if profile.CreatedAt != "" {
			fmt.Fprintf(&sb, "Member since: %s\n", profile.CreatedAt)
		}
	}

	if info, err := service.InspectToken(session.Token); err == nil && !info.ExpiresAt.IsZero() {
		if ttl := service.TokenTTL(info, time.Now()); ttl > 0 {
			fmt.Fprintf(&sb, "Session expires in %s\n", ttl.Truncate(time.Minute))
		} else {
			sb.WriteString("Session token has expired.\n")
		}
	}

	if err := tg.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send whoami", "chat_id", chatID, "error", err)
	}
}
