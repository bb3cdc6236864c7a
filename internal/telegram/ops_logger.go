package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/sketchbot/internal/config"
)

// OpsLogger mirrors notable events into topics of an operator chat.
// It is a no-op when LOG_TELEGRAM_CHAT_ID is unset or before Bind.
type OpsLogger struct {
	bot atomic.Pointer[bot.Bot]
	cfg *config.Config
}

func NewOpsLogger(cfg *config.Config) *OpsLogger {
	return &OpsLogger{cfg: cfg}
}

// Bind sets the bot used to deliver log messages.
func (l *OpsLogger) Bind(b *bot.Bot) {
	l.bot.Store(b)
}

type LogType string

const (
	LogTypeError  LogType = "error"
	LogTypeSignup LogType = "signup"
)

func (l *OpsLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}
	b := l.bot.Load()
	if b == nil {
		return
	}
	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if r := []rune(message); len(r) > config.MaxTelegramMessageLen {
		message = string(r[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.OpsLogTimeout)
	defer cancel()

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send ops log", "type", logType, "error", err)
	}
}

func (l *OpsLogger) LogError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(where), err.Error(), time.Now().Format(time.DateTime))
	l.Log(LogTypeError, msg)
}

// LogSignup records a new backend account created from a chat.
func (l *OpsLogger) LogSignup(chatID int64, userID int64, username string) {
	msg := fmt.Sprintf("👤 *New Account*\n\n*Chat:* `%d`\n*User ID:* `%d`\n*Username:* %s",
		chatID, userID, EscapeMarkdown(username))
	l.Log(LogTypeSignup, msg)
}

func (l *OpsLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeSignup:
		return l.cfg.LogTopicSignup
	}
	return 0
}
