package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/service"
)

type ctxKey string

const WorkspaceKey ctxKey = "workspace"

// GetWorkspace extracts the chat's workspace from context.
func GetWorkspace(ctx context.Context) *service.Workspace {
	ws, ok := ctx.Value(WorkspaceKey).(*service.Workspace)
	if !ok {
		return nil
	}
	return ws
}

// WithWorkspace stores ws in ctx.
func WithWorkspace(ctx context.Context, ws *service.Workspace) context.Context {
	return context.WithValue(ctx, WorkspaceKey, ws)
}

// WorkspaceLoader attaches the workspace of the update's chat. Only private
// chats get one: credentials are typed into the conversation, so group
// updates are dropped.
func WorkspaceLoader(workspaces *service.WorkspaceRegistry[int64]) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			chat, _, ok := updateChat(update)
			if !ok {
				return
			}
			if chat.Type != models.ChatTypePrivate {
				slog.Debug("ignoring non-private chat", "chat_id", chat.ID, "chat_type", chat.Type)
				return
			}
			next(WithWorkspace(ctx, workspaces.Get(chat.ID)), b, update)
		}
	}
}
