package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/service"
	"github.com/set-night/sketchbot/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
// Per-chat state lives in the workspace the middleware puts in the context.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	backend     *service.Backend
	health      *service.StatusCache
	opsLogger   *telegram.OpsLogger
	botUsername string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Backend     *service.Backend
	OpsLogger   *telegram.OpsLogger
	BotUsername string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		backend:     deps.Backend,
		health:      service.NewStatusCache(deps.Backend, config.HealthCacheTTL),
		opsLogger:   deps.OpsLogger,
		botUsername: deps.BotUsername,
	}
}
