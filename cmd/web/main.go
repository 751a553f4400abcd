package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/events"
	"github.com/AdamBeresnev/bracket-engine/internal/logger"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/scheduler"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/wallet"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const migrationsDir = "migrations"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, ServiceName: "bracket-engine"})
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Auth.SessionLifetime

	repo, closeStore, err := openStore(ctx, cfg.Store, sessionManager, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := events.NewHub(log)
	publishers := events.Multi{events.NewLogPublisher(log), hub}
	if cfg.NATS.URL != "" {
		nats, err := events.NewNATSPublisher(ctx, events.NATSConfig{URL: cfg.NATS.URL, Stream: cfg.NATS.Stream}, log)
		if err != nil {
			return err
		}
		defer nats.Close()
		publishers = append(publishers, nats)
	}

	dispatcher := wallet.NewDispatcher(wallet.NewMemoryWallet(cfg.Engine.WalletStartingBalance), log, cfg.Engine.IntentMaxAttempts)
	svc := service.NewTournamentService(repo, dispatcher, publishers, log,
		service.WithActivationQuorum(cfg.Engine.ActivationQuorum))
	sched := scheduler.NewScheduler(svc, cfg.Engine.SchedulerInterval, log)

	middleware.InitAuth(cfg.Auth, log)

	app := &application{
		svc:            svc,
		hub:            hub,
		sessionManager: sessionManager,
		logger:         log,
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(app, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		sched.Start(ctx)
		return nil
	})
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore builds the tournament repository for the configured driver.
// Persistent drivers get the in-process cache in front; sqlite also keeps
// the sessions.
func openStore(ctx context.Context, cfg config.StoreConfig, sessionManager *scs.SessionManager, log *zap.Logger) (store.Repository, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		return store.NewMemoryStore(), func() {}, nil

	case "sqlite", "postgres":
		driver := "sqlite3"
		if cfg.Driver == "postgres" {
			driver = "postgres"
		}
		database, err := openSQL(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if driver == "sqlite3" {
			sessionManager.Store = sqlite3store.New(database.DB)
		}
		return store.NewCached(store.NewSQLStore(database)), func() { database.Close() }, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		log.Info("connected to redis", zap.String("addr", opts.Addr))
		return store.NewCached(store.NewRedisStore(rdb)), func() { rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openSQL(driver, dsn string) (*sqlx.DB, error) {
	database, err := db.InitDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database.DB, driver, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}
