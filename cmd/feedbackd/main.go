package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mohdshuhaib/community-voice-53/internal/api"
	"github.com/mohdshuhaib/community-voice-53/internal/auth"
	"github.com/mohdshuhaib/community-voice-53/internal/config"
	"github.com/mohdshuhaib/community-voice-53/internal/db"
	"github.com/mohdshuhaib/community-voice-53/internal/engine"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/notify"
	"github.com/mohdshuhaib/community-voice-53/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that
// file, rotated by size. The returned function closes the file.
func setupLogger(logPath string) func() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	cleanup := func() {}
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		rotate := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cleanup = func() { rotate.Close() }
		stdoutW = io.MultiWriter(os.Stdout, rotate)
		stderrW = io.MultiWriter(os.Stderr, rotate)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup
}

const usage = `Usage: feedbackd [serve] [flags]
       feedbackd token --user <id> [--role MEMBER|ADMIN] [--ttl 168h] [flags]

Settings are read from .env, then FEEDBACK_* variables, then flags.

Flags:
`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "token") {
		cmd, args = args[0], args[1:]
	}

	cfg := config.Default()
	if err := cfg.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := pflag.NewFlagSet("feedbackd", pflag.ContinueOnError)
	cfg.AddFlags(fs)

	var userID, role string
	var ttl time.Duration
	if cmd == "token" {
		fs.StringVarP(&userID, "user", "u", "", "user id carried by the token")
		fs.StringVarP(&role, "role", "r", model.RoleMember, "role carried by the token")
		fs.DurationVar(&ttl, "ttl", auth.TokenExpiry, "token lifetime")
	}

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cmd == "token" {
		if err := printToken(cfg, userID, role, ttl); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	closeLog := setupLogger(cfg.LogPath)
	defer closeLog()

	if err := serve(cfg); err != nil {
		slog.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// openDatabase opens the database at cfg.DBPath and brings its schema up to date.
func openDatabase(cfg config.Config) (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

// signingKey derives the token key from the configured secret, or from the
// secret stored in the database (generated on first run).
func signingKey(ctx context.Context, cfg config.Config, database *sql.DB) ([]byte, error) {
	secret := cfg.Secret
	if secret == "" {
		var err error
		if secret, err = store.GetSigningSecret(ctx, database); err != nil {
			return nil, fmt.Errorf("loading signing secret: %w", err)
		}
	}
	return auth.DeriveKey(secret)
}

// printToken issues a token for an identity asserted by the operator.
func printToken(cfg config.Config, userID, role string, ttl time.Duration) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	key, err := signingKey(context.Background(), cfg, database)
	if err != nil {
		return err
	}
	token, err := auth.GenerateToken(key, userID, role, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func newNotifier(cfg config.Config) (notify.Notifier, error) {
	notifiers := notify.Multi{notify.LogNotifier{Logger: slog.Default()}}
	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(cfg.WebhookURL, &http.Client{Timeout: cfg.WebhookTimeout})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, webhook)
	}
	return notifiers, nil
}

func serve(cfg config.Config) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", cfg.DBPath)

	key, err := signingKey(context.Background(), cfg, database)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	e := engine.New(database, engine.Options{
		Notifier:      notifier,
		Logger:        slog.Default(),
		Location:      cfg.Location,
		NotifyTimeout: cfg.WebhookTimeout,
	})
	defer e.Wait()

	limiter := api.NewCallerRateLimiter(cfg.SubmitRate, cfg.SubmitBurst)
	handler := api.LoggingMiddleware(api.NewRouter(e, key, limiter))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "tz", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, waiting for notifications")
	return nil
}
