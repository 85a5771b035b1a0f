package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/osse101/SpinVault_Go/internal/bootstrap"
	"github.com/osse101/SpinVault_Go/internal/config"
	"github.com/osse101/SpinVault_Go/internal/ledger"
	"github.com/osse101/SpinVault_Go/internal/reward"
	"github.com/osse101/SpinVault_Go/internal/server"
	"github.com/osse101/SpinVault_Go/internal/spin"
	"github.com/osse101/SpinVault_Go/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	// Production must not silently fall back to defaults
	if cfg.Environment == "production" {
		if err := config.ValidateEnv(cfg.StoreBackend); err != nil {
			slog.Error("Invalid production environment", "error", err)
			os.Exit(1)
		}
	}
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	if err := run(cfg); err != nil {
		slog.Error("Fatal startup error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return errors.Join(errors.New(bootstrap.ErrMsgInvalidLocale), err)
	}

	store, dbPool, err := bootstrap.InitializeStore(ctx, cfg)
	if err != nil {
		return err
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return err
	}
	shutdown := bootstrap.ShutdownComponents{ResilientPublisher: publisher, DBPool: dbPool}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		bootstrap.GracefulShutdown(shutdownCtx, shutdown)
	}()

	if err := bootstrap.RegisterEventHandlers(bus); err != nil {
		return err
	}

	catalog, err := bootstrap.LoadWheelCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	reconciler := ledger.NewReconciler(store, publisher)
	claims := ledger.NewClaimLedger(store, reconciler, publisher, ledger.NewFormatter(tag))
	resolver := reward.NewResolver(catalog, reward.NewSource(), reward.DefaultPointerDegrees)
	spins := spin.NewService(store, resolver, reconciler, publisher)

	// The pool outlives ctx so reconciliation keeps running until shutdown stops it
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start(context.Background())
	shutdown.WorkerPool = pool

	deps := server.Deps{
		Claims:   claims,
		Balances: reconciler,
		Spins:    spins,
		Detector: server.NewSuspiciousActivityDetector(),
	}
	// Assigned only when present so the interfaces stay nil, not typed-nil
	if dbPool != nil {
		deps.DBPool = dbPool
	}

	if cfg.VaultEnabled() {
		g, redisClient, err := bootstrap.InitializeGuard(ctx, cfg)
		if err != nil {
			return err
		}
		shutdown.Redis = redisClient

		vc, err := bootstrap.InitializeVault(cfg, bootstrap.VaultDependencies{Guard: g, Jobs: pool, Publisher: publisher})
		if err != nil {
			return err
		}
		deps.Vault = vc.Orchestrator
		deps.Accounts = vc.Builder
		deps.Node = vc.Client
	}

	srv := server.NewServer(server.Config{
		Port:        cfg.Port,
		APIKey:      cfg.APIKey,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}, deps)
	shutdown.Server = srv

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
