package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"schoolhr/internal/domain/attendance"
	"schoolhr/internal/domain/audit"
	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/domain/payroll"
	"schoolhr/internal/platform/config"
	cryptoutil "schoolhr/internal/platform/crypto"
	"schoolhr/internal/platform/db"
	"schoolhr/internal/platform/idempotency"
	"schoolhr/internal/platform/logger"
	"schoolhr/internal/platform/memstore"
	"schoolhr/internal/platform/metrics"
	attendancehandler "schoolhr/internal/transport/http/handlers/attendance"
	audithandler "schoolhr/internal/transport/http/handlers/audit"
	authhandler "schoolhr/internal/transport/http/handlers/auth"
	corehandler "schoolhr/internal/transport/http/handlers/core"
	payrollhandler "schoolhr/internal/transport/http/handlers/payroll"
	"schoolhr/internal/transport/http/middleware"
)

const devJWTSecret = "dev-only-change-me"

type pinger interface {
	Ping(ctx context.Context) error
}

// stores bundles the persistence ports for one driver.
type stores struct {
	core       core.StoreAPI
	attendance attendance.StoreAPI
	payroll    payroll.StoreAPI
	auth       auth.StoreAPI
	audit      audit.Store
	ready      pinger
	close      func()
}

type App struct {
	Config  config.Config
	Router  http.Handler
	Logger  *slog.Logger
	closers []func()
}

// Close releases the store and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New wires the stores, services and HTTP surface for cfg.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New(cfg)
	slog.SetDefault(log)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	app := &App{Config: cfg, Logger: log}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, st.close)

	loc, err := cfg.Location()
	if err != nil {
		app.Close()
		return nil, err
	}
	attendanceService := attendance.NewService(st.attendance, st.core)
	attendanceService.WithLocation(loc)

	payrollService := payroll.NewService(st.payroll, attendanceService)
	payrollService.Workers = cfg.PayrollWorkers
	payrollService.Title = cfg.BankFileTitle
	payrollService.Currency = cfg.Currency

	idem, closeIdem, err := openIdempotency(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeIdem)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	perms := auth.StaticPermissions{}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.ready.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if collector != nil {
		router.Handle("/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(auth.NewService(st.auth, cfg.JWTSecret, cfg.TokenTTL))
		r.Post("/auth/login", authHandler.HandleLogin)

		corehandler.NewHandler(st.core, perms).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService, st.audit, perms, idem, collector).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, st.audit, perms, collector, cfg.SchoolName).RegisterRoutes(r)
		audithandler.NewHandler(st.audit, perms).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mem := memstore.New()
		if err := mem.SeedDemo(cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return stores{}, fmt.Errorf("seed memory store: %w", err)
		}
		slog.Info("using in-memory store", "schoolId", memstore.DemoSchoolID)
		return stores{core: mem, attendance: mem, payroll: mem, auth: mem, audit: mem, ready: mem, close: func() {}}, nil
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		schoolID, err := db.Seed(ctx, pool, cfg)
		if err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("seed: %w", err)
		}
		slog.Info("seeded school", "schoolId", schoolID, "name", cfg.SchoolName)
	}
	crypto, err := cryptoutil.New(cfg.BankDataKey)
	if err != nil {
		pool.Close()
		return stores{}, fmt.Errorf("bank data key: %w", err)
	}
	auditService := audit.New(pool)
	return stores{
		core:       core.NewStore(pool, crypto),
		attendance: attendance.NewStore(pool),
		payroll:    payroll.NewStore(pool),
		auth:       auth.NewStore(pool),
		audit:      auditService,
		ready:      pool,
		close:      pool.Close,
	}, nil
}

func openIdempotency(ctx context.Context, cfg config.Config) (idempotency.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), func() {}, nil
	}
	client, err := idempotency.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("redis connect: %w", err)
	}
	return idempotency.NewRedisStore(client, cfg.IdempotencyTTL), func() { _ = client.Close() }, nil
}

// Run loads configuration, serves until SIGINT or SIGTERM, then drains.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("schoolhr listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
