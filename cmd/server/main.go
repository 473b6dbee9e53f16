package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rohits-web03/sitedrop/internal/api"
	"github.com/rohits-web03/sitedrop/internal/api/handlers"
	"github.com/rohits-web03/sitedrop/internal/bot"
	"github.com/rohits-web03/sitedrop/internal/config"
	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/observability"
	"github.com/rohits-web03/sitedrop/internal/repositories"
	"github.com/rohits-web03/sitedrop/internal/session"
	"github.com/rohits-web03/sitedrop/internal/transport/telegram"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// recordStore is what the server needs from either record backend.
type recordStore interface {
	deploy.RecordStore
	handlers.DeploymentFinder
	IsReady(ctx context.Context) bool
	Name() string
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := observability.Init(cfg.Environment)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	records, err := openRecords(cfg)
	if err != nil {
		return err
	}
	if !records.IsReady(ctx) {
		return fmt.Errorf("%s is not reachable", records.Name())
	}
	log.Info("record store ready", "store", records.Name())

	client, err := hosting.NewClient(ctx, hosting.Config{
		BaseURL:      cfg.Hosting.BaseURL,
		APIKey:       cfg.Hosting.APIKey,
		TokenURL:     cfg.Hosting.TokenURL,
		ClientID:     cfg.Hosting.ClientID,
		ClientSecret: cfg.Hosting.ClientSecret,
		Timeout:      cfg.Hosting.Timeout,
	})
	if err != nil {
		return fmt.Errorf("hosting client: %w", err)
	}

	opts := []deploy.Option{deploy.WithLimits(deploy.Limits{MaxFileSize: cfg.MaxFileSize})}
	var artifacts handlers.ArtifactPresigner
	if cfg.R2.Enabled() {
		store, err := repositories.NewR2Storage(repositories.R2Options{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			Region:          cfg.R2.Region,
			Endpoint:        cfg.R2.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("r2 storage: %w", err)
		}
		opts = append(opts, deploy.WithArchiver(store))
		artifacts = store
		log.Info("artifact archiving enabled", "bucket", cfg.R2.BucketName)
	}

	svc := deploy.NewService(sessions, client, records, deploy.NewAdminSet(cfg.AdminIDs...), opts...)
	router := bot.NewRouter(svc)
	dispatcher := bot.NewDispatcher()

	h := &handlers.Handler{
		Router:      router,
		Dispatcher:  dispatcher,
		Service:     svc,
		Deployments: records,
		Hosting:     client,
		MaxFileSize: svc.Limits().MaxFileSize,
		StartedAt:   time.Now(),
	}
	if artifacts != nil {
		h.Artifacts = artifacts
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(api.RouterConfig{
			JWTSecret: cfg.JWTSecret,
			Cors:      cfg.CorsConfig,
			Handler:   h,
		}),
		// Uploads and deploys can take a while; the rest stays tight.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting SiteDrop server", "port", cfg.Port, "admins", len(cfg.AdminIDs))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})

	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(telegram.Config{
			Token:       cfg.Telegram.Token,
			PollTimeout: cfg.Telegram.PollTimeout,
			Debug:       cfg.Telegram.Debug,
		}, router, dispatcher)
		if err != nil {
			return err
		}
		g.Go(func() error { return adapter.Run(gctx) })
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, chat events only arrive over HTTP")
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Error("dispatcher shutdown", "error", err, "active_chats", dispatcher.Active())
		}
		return nil
	})

	return g.Wait()
}

func openSessions(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.SessionBackend != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return session.NewRedisStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
}

func openRecords(cfg config.Config) (recordStore, error) {
	if cfg.RecordBackend == "memory" {
		return repositories.NewMemoryDeploymentStore(), nil
	}
	db, err := repositories.ConnectDatabase(cfg.DB_URL)
	if err != nil {
		return nil, err
	}
	return repositories.NewDeploymentRepository(db), nil
}
