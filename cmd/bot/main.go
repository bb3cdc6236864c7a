package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	sketchbot "github.com/set-night/sketchbot"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/handler"
	"github.com/set-night/sketchbot/internal/middleware"
	"github.com/set-night/sketchbot/internal/repository"
	"github.com/set-night/sketchbot/internal/service"
	"github.com/set-night/sketchbot/internal/storage"
	"github.com/set-night/sketchbot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if cfg.BotToken == "" {
		slog.Error("BOT_TOKEN is required")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	backend := service.NewBackend(cfg.Endpoints, cfg.RequestTimeout)
	slog.Info("backend endpoints resolved",
		"api_base", cfg.Endpoints.APIBase(),
		"generate", cfg.Endpoints.Generate,
		"assistant", cfg.Endpoints.Assistant,
	)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// The registry needs the bot for notifiers, and the bot needs the
	// registry for its middleware; b is assigned before updates flow.
	var b *bot.Bot

	// Bound to the bot once it exists; until then it only logs locally.
	opsLogger := telegram.NewOpsLogger(cfg)

	workspaces := service.NewWorkspaceRegistry(func(chatID int64) *service.Workspace {
		store := provider.Namespace("chat:" + strconv.FormatInt(chatID, 10))
		ws := service.NewWorkspace(backend, store, telegram.NewChatNotifier(b, chatID))
		if err := ws.Generation.SetGuidance(cfg.GuidanceScale); err != nil {
			slog.Warn("keeping default guidance", "chat_id", chatID, "error", err)
		}
		ws.Auth.OnSuccess(func(mode service.AuthMode, _ string, user domain.UserRef) {
			if mode == service.AuthSignUp {
				opsLogger.LogSignup(chatID, user.ID, user.Username)
			}
		})
		return ws
	})

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(opsLogger),
			middleware.Logging(),
			middleware.WorkspaceLoader(workspaces),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleDefault(ctx, b, update)
		}),
	}
	b, err = bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	opsLogger.Bind(b)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		Backend:     backend,
		OpsLogger:   opsLogger,
		BotUsername: me.Username,
	})

	// Register all handlers
	h.Register()

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID, "storage", cfg.StorageBackend)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully", "workspaces", workspaces.Len())
}

// openStorage builds the storage provider selected by STORAGE_BACKEND.
// The returned func releases its connections.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Provider, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		migrationsFS, err := fs.Sub(sketchbot.MigrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewKVStore(pool), pool.Close, nil

	case config.StorageRedis:
		r, err := storage.NewRedis(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, closeLogged("redis", r.Close), nil

	case config.StorageSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, closeLogged("sqlite", s.Close), nil
	}

	slog.Warn("using in-memory storage; sessions and history are lost on restart")
	return storage.NewMemory(), func() {}, nil
}

func closeLogged(name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			slog.Warn("close storage", "backend", name, "error", err)
		}
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
