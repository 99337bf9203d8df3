// Command sr-server starts the Stockroom HTTP API and its gRPC health listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/config"
	"github.com/and161185/stockroom/internal/kv"
	"github.com/and161185/stockroom/internal/limiter"
	"github.com/and161185/stockroom/internal/logging"
	"github.com/and161185/stockroom/internal/metrics"
	"github.com/and161185/stockroom/internal/migrate"
	"github.com/and161185/stockroom/internal/repository/postgres"
	grpcserver "github.com/and161185/stockroom/internal/server/grpc"
	httpserver "github.com/and161185/stockroom/internal/server/http"
	"github.com/and161185/stockroom/internal/service"
	"github.com/and161185/stockroom/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	shutdownTimeout = 10 * time.Second
	healthInterval  = 5 * time.Second
	kvPrefix        = "sr:"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("healthAddr", cfg.GRPC.HealthAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.DB.Migrate {
		if err := migrate.Up(ctx, cfg.DB.DSN, logger); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}

	db, err := postgres.New(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()

	rc, err := kv.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	store := kv.NewRedis(rc, kvPrefix)

	// Repositories
	users := postgres.NewUserRepo(db)
	authUsers := postgres.NewAuthUserRepo(db)
	spaces := postgres.NewSpaceRepo(db)
	items := postgres.NewItemRepo(db)
	inventories := postgres.NewInventoryRepo(db)

	var lim limiter.Limiter = limiter.Nop{}
	if cfg.Limiter.MaxFails > 0 {
		lim = limiter.NewPG(db.Pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)
	}

	m := metrics.New()
	tokens := token.NewService(store, []byte(cfg.JWT.AccessKey), []byte(cfg.JWT.RefreshKey), logger)

	// Services
	resolver := service.NewSpaceResolver(spaces, logger)
	propagation := service.NewPropagationService(items, inventories, resolver, m, logger)
	authSvc := service.NewAuthService(authUsers, users, tokens, lim, logger, service.WithAuthRecorder(m))
	spaceSvc := service.NewSpaceService(spaces, resolver, logger)
	itemSvc := service.NewItemService(items, spaces, propagation, logger)
	invSvc := service.NewInventoryService(items, inventories, logger)

	router := httpserver.NewRouter(httpserver.Deps{
		Auth:        authSvc,
		Spaces:      spaceSvc,
		Items:       itemSvc,
		Inventories: invSvc,
		Propagation: propagation,
		Ready:       map[string]httpserver.Pinger{"postgres": db, "redis": store},
		Observer:    m,
		Metrics:     m.Handler(),
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	newHealth := func() *grpcserver.Health {
		hs := grpcserver.NewHealth(logger.Named("health"), map[string]grpcserver.Pinger{"postgres": db, "redis": store})
		if cfg.Log.Development {
			hs.EnableReflection()
		}
		return hs
	}
	return serve(ctx, logger, srv, cfg.GRPC.HealthAddr, newHealth)
}

// serve runs srv and, when healthAddr is set, the health listener until ctx
// is done or either fails. The health port is bound before HTTP starts.
func serve(ctx context.Context, logger *zap.Logger, srv *http.Server, healthAddr string, newHealth func() *grpcserver.Health) error {
	var healthLis net.Listener
	if healthAddr != "" {
		var err error
		healthLis, err = net.Listen("tcp", healthAddr)
		if err != nil {
			return fmt.Errorf("listen health: %w", err)
		}
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var hs *grpcserver.Health
	if healthLis != nil {
		hs = newHealth()
		go hs.Run(ctx, healthInterval)
		go func() {
			logger.Info("health listening", zap.String("addr", healthAddr))
			if err := hs.Serve(healthLis); err != nil {
				errCh <- fmt.Errorf("health: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	if hs != nil {
		hs.Shutdown(shutdownTimeout)
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return runErr
}
