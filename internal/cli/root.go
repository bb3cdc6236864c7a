// Package cli implements sketchctl, a terminal client for the sketch-to-design
// backend. Its session and history live in a local SQLite file, one
// namespace per --profile.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/service"
	"github.com/set-night/sketchbot/internal/storage"
	"github.com/spf13/cobra"
)

type options struct {
	dbPath   string
	profile  string
	apiBase  string
	logLevel string
}

// env is what a command needs once flags are parsed.
type env struct {
	cfg     *config.Config
	backend *service.Backend
	db      *storage.SQLite
	ws      *service.Workspace
}

func (e *env) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// reportedError marks an error the user has already been told about through
// the notifier, so Execute only sets the exit status.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// Execute is the main entry point called from main.go.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(version)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// NewRootCmd builds the sketchctl command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sketchctl",
		Short: "Turn sketches into UI and 3D designs from the terminal",
		Long: "sketchctl signs in to the design backend, uploads sketches, generates designs\n" +
			"and chats with the design assistant. State is kept per --profile.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), opts.logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "state database path (default <user config dir>/sketchbot/sketchctl.db)")
	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "default", "local profile; each has its own session and history")
	root.PersistentFlags().StringVar(&opts.apiBase, "api", "", "backend base URL (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "none", "debug, info, warn, error or none")

	root.AddCommand(
		newSignInCmd(opts),
		newSignUpCmd(opts),
		newLogoutCmd(opts),
		newWhoAmICmd(opts),
		newGenerateCmd(opts),
		newUploadCmd(opts),
		newChatCmd(opts),
		newHistoryCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

// open loads configuration, applies flag overrides and opens the profile's
// workspace. Callers must Close the result.
func (o *options) open(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.apiBase != "" {
		cfg.Endpoints = config.NewEndpoints(config.ResolveBase(o.apiBase, cfg.AppOrigin))
	}

	path := o.dbPath
	if path == "" {
		if path, err = defaultDBPath(); err != nil {
			return nil, err
		}
	}
	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	backend := service.NewBackend(cfg.Endpoints, cfg.RequestTimeout)
	notifier := newConsoleNotifier(cmd.ErrOrStderr())
	ws := service.NewWorkspace(backend, db.Namespace("profile:"+o.profile), notifier)
	if err := ws.Generation.SetGuidance(cfg.GuidanceScale); err != nil {
		db.Close()
		return nil, fmt.Errorf("GUIDANCE_SCALE: %w", err)
	}
	return &env{
		cfg:     cfg,
		backend: backend,
		db:      db,
		ws:      ws,
	}, nil
}

func defaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	dir = filepath.Join(dir, "sketchbot")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, "sketchctl.db"), nil
}

// withEnv wraps a command body that needs an open workspace.
func withEnv(opts *options, fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := opts.open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := e.Close(); err != nil {
				slog.Warn("close state database", "error", err)
			}
		}()
		return fn(cmd, args, e)
	}
}

func setupLogging(w io.Writer, level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "none" || level == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})))
}
