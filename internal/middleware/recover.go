package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/telegram"
)

// Recover returns middleware that recovers from panics and reports them to
// the ops chat.
func Recover(ops *telegram.OpsLogger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"update_id", update.ID,
						"stack", string(debug.Stack()),
					)
					ops.LogError(fmt.Errorf("panic: %v", r), "update handler")
				}
			}()
			next(ctx, b, update)
		}
	}
}
