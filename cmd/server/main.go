package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"chatlite/internal/config"
	"chatlite/internal/httpapi"
	"chatlite/internal/realtime"
	"chatlite/internal/seed"
	"chatlite/internal/service"
	"chatlite/internal/store/memory"
	"chatlite/internal/store/postgres"
)

// socialStore is what main needs from a backend: the service contract plus seeding.
type socialStore interface {
	service.SocialStore
	seed.Target
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		store  socialStore
		dbPing func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if err := postgres.Migrate(context.Background(), pgPool); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}
		store = postgres.NewStore(pgPool)
		dbPing = pgPool.Ping
		logger.Info("using postgres store")
	} else {
		store = memory.New()
		logger.Info("using in-memory store")
	}

	if err := seedStore(context.Background(), logger, store, cfg.SeedFile); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger, cfg.WSOrigins)

	usersSvc := &service.UsersService{Store: store, Latency: cfg.Latency}
	friendsSvc := &service.FriendsService{Users: store, Friends: store, Latency: cfg.Latency}
	serversSvc := &service.ServersService{Store: store}
	messagesSvc := &service.MessagesService{Store: store, Publisher: hub}

	root := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:     logger,
		IsProd:     cfg.IsProd(),
		DBPing:     dbPing,
		Users:      usersSvc,
		Friends:    friendsSvc,
		Servers:    serversSvc,
		Messages:   messagesSvc,
		Realtime:   hub,
		DemoUserID: cfg.DemoUserID,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr, "latency", cfg.Latency)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func seedStore(ctx context.Context, logger *slog.Logger, target seed.Target, path string) error {
	ds, err := seed.Load(path)
	if err != nil {
		return err
	}
	applied, err := seed.Apply(ctx, target, ds)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	if !applied {
		logger.Info("seed skipped: store already has data")
		return nil
	}
	logger.Info("seeded demo data", "users", len(ds.Users), "servers", len(ds.Servers))
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
