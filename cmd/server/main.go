// Package main is the entry point of the degree progress API.
//
// The server evaluates student plans against target programs and exposes
// progress, unmet requirements, course suggestions, prerequisite checks and
// CSV export over HTTP. PostgreSQL holds catalogs, programs and plans when
// DATABASE_URL is set; otherwise an in-memory store seeded from YAML files is
// used. Redis caches computed reports when enabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transferhub/transfer-hub/config"
	"github.com/transferhub/transfer-hub/internal/application/command"
	"github.com/transferhub/transfer-hub/internal/application/eventhandler"
	"github.com/transferhub/transfer-hub/internal/application/query"
	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
	"github.com/transferhub/transfer-hub/internal/infrastructure/catalogfile"
	"github.com/transferhub/transfer-hub/internal/infrastructure/messaging"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/memory"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/postgres"
	"github.com/transferhub/transfer-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/transferhub/transfer-hub/internal/interface/http"
	"github.com/transferhub/transfer-hub/internal/interface/http/handlers"
	"github.com/transferhub/transfer-hub/pkg/logger"
	"github.com/transferhub/transfer-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    cfg.Observability.LogFormat,
		AddCaller: true,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
	)
	defer log.Sync()

	log.Info("starting degree progress server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("address", cfg.HTTP.Addr()),
	)
	logFeatures(cfg.Features, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.SetTimeout(healthCheckTimeout)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Storage
	// ─────────────────────────────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	if st.ping != nil {
		checker.AddCheck("postgres", st.ping)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Progress cache and events
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 4,
		Logger:         log,
		EnableMetrics:  true,
	})
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn("event bus close failed", logger.Err(err))
		}
	}()

	var progressCache query.ProgressCache
	if cache := openCache(ctx, cfg, log); cache != nil {
		defer func() { _ = cache.Close() }()
		checker.AddCheck("redis", handlers.NewPingCheck(cache))

		pc := redis.NewProgressCache(cache, cfg.Audit.CacheTTL)
		progressCache = pc
		invalidator := eventhandler.NewInvalidateProgressOnPlanChange(pc, log, eventhandler.DefaultInvalidateProgressConfig())
		if err := invalidator.Register(bus); err != nil {
			return fmt.Errorf("register cache invalidator: %w", err)
		}
		flusher := eventhandler.NewInvalidateProgressOnCatalogReload(pc, log, eventhandler.DefaultInvalidateProgressConfig())
		if err := flusher.Register(bus); err != nil {
			return fmt.Errorf("register cache flusher: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Seed data
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Seed.CatalogFile != "" || len(cfg.Seed.PlanFiles) > 0 {
		importer := catalogfile.NewImporter(st.courses, st.programs, st.plans, log)
		stats, plans, err := importer.ImportFiles(ctx, cfg.Seed.CatalogFile, cfg.Seed.PlanFiles)
		if err != nil {
			return fmt.Errorf("seed import: %w", err)
		}
		log.Info("seed data imported",
			logger.Int("courses", stats.Courses),
			logger.Int("equivalencies", stats.Equivalencies),
			logger.Int("programs", stats.Programs),
			logger.Int("plans", len(plans)),
		)
		if err := bus.Publish(shared.NewCatalogReloadedEvent(stats.Courses, stats.Equivalencies, stats.Programs)); err != nil {
			log.Warn("event publish failed", logger.Err(err))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	base := audit.DefaultOptions()
	base.UnknownConstraints = audit.UnknownConstraintPolicy(cfg.Audit.UnknownConstraints)
	base.SuggestionLimit = cfg.Audit.SuggestionLimit
	options := query.NewOptionsResolver(base, cfg.Features)

	defaultView, err := audit.ParseView(cfg.Audit.DefaultView)
	if err != nil {
		return fmt.Errorf("default view: %w", err)
	}
	progressCfg := query.GetPlanProgressHandlerConfig{DefaultView: defaultView}

	loader := query.NewSnapshotLoader(st.plans, st.programs, st.courses, log, query.DefaultSnapshotLoaderConfig())
	progress := query.NewGetPlanProgressHandler(loader, options, progressCache, log, progressCfg)

	planHandler := handlers.NewPlanHandler(
		progress,
		query.NewGetUnmetRequirementsHandler(progress),
		query.NewSuggestCoursesHandler(loader, options, log, progressCfg),
		command.NewAddPlannedCourseHandler(st.plans, st.courses, st.programs, cfg.Features, bus, log),
		command.NewRemovePlannedCourseHandler(st.plans, bus, log),
		log,
	)
	prereqHandler := handlers.NewPrerequisiteHandler(query.NewPrerequisiteHandler(st.courses, st.plans, loader), log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	routerCfg := httpapi.RouterConfig{
		Plans:          planHandler,
		Prerequisites:  prereqHandler,
		Health:         handlers.NewHealthHandler(checker),
		Logger:         log,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}
	if cfg.HTTP.AdminEnabled {
		routerCfg.Features = handlers.NewFeatureHandler(cfg.Features, log)
		log.Warn("feature flag admin endpoints enabled")
	}
	router := httpapi.NewRouter(routerCfg)

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	server := httpapi.NewServer(serverCfg, router, log)
	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Err(err))
	}

	log.Info("server stopped", logger.Duration("uptime", server.Uptime()))
	return nil
}

const healthCheckTimeout = 3 * time.Second

// logFeatures records the effective flag configuration at startup.
func logFeatures(ff *config.FeatureFlags, log *logger.Logger) {
	features := ff.GetAllFeatures()
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := features[name]
		log.Info("feature flag",
			logger.String("name", name),
			logger.Bool("enabled", f.Enabled),
			logger.Int("rollout_percent", f.RolloutPercent),
		)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE
// ══════════════════════════════════════════════════════════════════════════════

type courseStore interface {
	catalog.Repository
	catalog.Writer
}

type programStore interface {
	program.Repository
	program.Writer
}

type planStore interface {
	plan.Repository
	plan.Writer
}

type stores struct {
	courses  courseStore
	programs programStore
	plans    planStore
	ping     handlers.HealthCheckFunc
	close    func()
}

// openStores connects to PostgreSQL when configured, falling back to the
// in-memory store.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		courses := memory.NewCourseRepository()
		return &stores{
			courses:  courses,
			programs: memory.NewProgramRepository(),
			plans:    memory.NewPlanRepository(courses),
			close:    func() {},
		}, nil
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	retryCfg := retry.Config{
		MaxAttempts:  cfg.Database.ConnectAttempts,
		InitialDelay: cfg.Database.ConnectBackoff,
		MaxDelay:     cfg.Database.ConnectBackoff * 16,
	}
	conn, err := retry.Do(ctx, retryCfg, func(ctx context.Context) (*postgres.Connection, error) {
		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			log.Warn("postgres connect attempt failed", logger.Err(err))
		}
		return conn, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info("connected to postgres")

	migrator := postgres.NewMigrator(conn)
	if cfg.Database.AutoMigrate {
		if err := migrator.Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if status, err := migrator.Status(ctx); err == nil {
		for _, m := range status {
			if !m.IsApplied {
				log.Warn("migration pending", logger.Int("version", m.Version), logger.String("name", m.Name))
			}
		}
	}

	return &stores{
		courses:  postgres.NewCourseRepository(conn),
		programs: postgres.NewProgramRepository(conn),
		plans:    postgres.NewPlanRepository(conn),
		ping:     postgresCheck(conn),
		close:    conn.Close,
	}, nil
}

// openCache returns nil when Redis is disabled or unreachable; progress is
// then evaluated on every request.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Cache {
	if cfg.Redis.Disabled {
		log.Info("progress cache disabled")
		return nil
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.Redis.URL
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	cache, err := retry.Do(ctx, retry.Config{MaxAttempts: 3}, func(ctx context.Context) (*redis.Cache, error) {
		cache, err := redis.NewCache(ctx, redisCfg)
		if err != nil && !errors.Is(err, redis.ErrCacheConnection) {
			return nil, retry.Permanent(err)
		}
		return cache, err
	})
	if err != nil {
		log.Warn("redis unavailable, running without progress cache", logger.Err(err))
		return nil
	}
	log.Info("connected to redis", logger.String("address", redisCfg.Addr()))
	return cache
}

// postgresCheck reports the pool unhealthy when the ping fails.
func postgresCheck(conn *postgres.Connection) handlers.HealthCheckFunc {
	return func(ctx context.Context) error {
		status, err := conn.Health(ctx)
		if err != nil {
			return err
		}
		if !status.Healthy {
			return errors.New(status.Error)
		}
		return nil
	}
}
