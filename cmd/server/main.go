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

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/httpapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/app"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/config"
	pg "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/logger"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/server"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server stopped with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()

	repos, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	svcs := app.NewServices(repos, cfg, log, nil)

	grpcServer := server.New(cfg.Server.ListenAddr, server.Services{
		Leave:      svcs.Leave,
		Balances:   svcs.Balances,
		Attendance: svcs.Attendance,
		Payroll:    svcs.Payroll,
	}, log.WithField("component", "grpc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})

	if cfg.Server.HTTPListenAddr != "" {
		handler := httpapi.NewHandler(httpapi.Deps{
			Leave:      svcs.Leave,
			Balances:   svcs.Balances,
			Attendance: svcs.Attendance,
			Payroll:    svcs.Payroll,
			Logger:     log.WithField("component", "http"),
		})
		httpServer := &http.Server{
			Addr:              cfg.Server.HTTPListenAddr,
			Handler:           httpapi.NewRouter(handler, cfg.Server.AllowedOrigins, log.WithField("component", "http")),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			log.WithField("addr", cfg.Server.HTTPListenAddr).Info("HTTP gateway listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve HTTP: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (app.Repositories, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		if cfg.Storage.SeedPath != "" {
			if err := store.LoadSeedFile(cfg.Storage.SeedPath); err != nil {
				return app.Repositories{}, nil, err
			}
		}
		log.WithField("seed", cfg.Storage.SeedPath).Warn("using in-memory storage; data is lost on exit")
		return app.MemoryRepositories(store), func() {}, nil
	default:
		pool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return app.Repositories{}, nil, fmt.Errorf("init database pool: %w", err)
		}
		log.WithFields(logrus.Fields{"host": cfg.Database.Host, "database": cfg.Database.Name}).Info("connected to PostgreSQL")
		return app.PostgresRepositories(pool), pool.Close, nil
	}
}
