package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/budgetbuddy/backend/internal/auth"
	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/config"
	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/metrics"
	"github.com/budgetbuddy/backend/internal/middleware"
	"github.com/budgetbuddy/backend/internal/service"
	"github.com/budgetbuddy/backend/internal/storage/sqlite"
	"github.com/budgetbuddy/backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	idempotency, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer idempotency.Close()

	bus := events.New()
	m := metrics.New()
	m.Subscribe(bus)

	engine := ledger.New(store, ledger.WithBus(bus))
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	requireAuth := middleware.RequireAuth(jwtManager)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", service.Health)
	mux.Handle("GET /metrics", m.Handler())

	service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, slog.Default()).Register(mux, requireAuth)
	service.NewLedgerService(engine, idempotency, cfg.Cache.IdempotencyTTL, cfg.Ledger.Currency).Register(mux, requireAuth)
	service.NewExpenseService(store, bus, cfg.Ledger.Currency, cfg.Budget.AllowanceMinor).Register(mux, requireAuth)
	service.NewSavingsService(store, bus, cfg.Ledger.Currency).Register(mux, requireAuth)
	service.NewOnboardingService(store).Register(mux, requireAuth)

	if cfg.Server.StaticDir != "" {
		static, err := newStaticHandler(cfg.Server.StaticDir)
		if err != nil {
			return err
		}
		slog.Info("Serving static files", "path", static.dir)
		mux.Handle("/", static)
	}

	handler := middleware.CORS(cfg.Server.AllowedOrigin)(middleware.Logging(m.Instrument(mux)))

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		// h2c lets clients speak HTTP/2 without TLS.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting",
			"address", srv.Addr,
			"mode", cfg.Server.Mode,
			"currency", cfg.Ledger.Currency,
			"url", fmt.Sprintf("http://localhost%s", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newCache picks Redis when an address is configured and falls back to the
// in-process cache otherwise.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		slog.Info("Idempotency cache initialized", "backend", "memory")
		return cache.NewMemory(), nil
	}
	c, err := cache.NewRedis(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "budgetbuddy:",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("Idempotency cache initialized", "backend", "redis", "addr", cfg.RedisAddr)
	return c, nil
}
