package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/catalog"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/config"
	handler "github.com/apper-canvas/stylehub-crypto-chip/internal/handler/http"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/notify"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
	badgerstore "github.com/apper-canvas/stylehub-crypto-chip/internal/repository/badger"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository/memory"
	redisstore "github.com/apper-canvas/stylehub-crypto-chip/internal/repository/redis"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/database"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/health"
	pkgkafka "github.com/apper-canvas/stylehub-crypto-chip/pkg/kafka"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/tracing"
)

// ServiceName identifies the storefront in logs, metrics, traces and events.
const ServiceName = "stylehub"

// Version is overridden at build time.
var Version = "dev"

const (
	catalogRetryMin = time.Second
	catalogRetryMax = 30 * time.Second
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	catalog    *service.CatalogService
	fileSource *catalog.FileSource
	sessions   *store.Manager

	pool          *pgxpool.Pool
	rdb           *redis.Client
	badger        *badgerstore.Store
	producer      *pkgkafka.Producer
	traceShutdown tracing.Shutdown

	handler    http.Handler
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// The catalog is loaded by Run so that a slow or failing source does not
// block startup.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.traceShutdown = shutdown

	healthHandler := health.NewHandler()

	source, err := a.newCatalogSource(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	a.catalog = service.NewCatalogService(source, logger)
	healthHandler.Register("catalog", func(context.Context) error {
		if !a.catalog.Loaded() {
			return errors.New("catalog not loaded")
		}
		return nil
	})

	kv, err := a.newKeyValueStore(ctx)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	healthHandler.Register("storage", kv.Ping)

	notifiers := []notify.Notifier{notify.NewLogNotifier(logger), notify.ContextCollector{}}
	if cfg.KafkaEnabled {
		producerCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		producerCfg.Async = true
		a.producer = pkgkafka.NewProducer(producerCfg, logger)
		notifiers = append(notifiers, notify.NewKafkaNotifier(a.producer, ServiceName, logger))
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.sessions = store.NewManager(kv, notify.NewMulti(logger, notifiers...), logger,
		store.WithIdleTimeout(cfg.SessionTTL()),
		store.WithMaxSessions(cfg.MaxOpenSessions),
	)
	healthHandler.RegisterOptional("persistence", func(context.Context) error {
		if !a.sessions.PersistenceHealthy() {
			return errors.New("some shopper state has not been persisted")
		}
		return nil
	})

	a.handler = handler.NewRouter(a.catalog, a.sessions, healthHandler, handler.RouterConfig{
		ServiceName:    ServiceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) newCatalogSource(ctx context.Context, healthHandler *health.Handler) (catalog.Source, error) {
	switch a.cfg.CatalogSource {
	case config.CatalogFile:
		a.fileSource = catalog.NewFileSource(a.cfg.CatalogPath, a.logger)
		return a.fileSource, nil
	case config.CatalogHTTP:
		return catalog.NewHTTPSource(a.cfg.CatalogURL, a.logger), nil
	case config.CatalogPostgres:
		pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
			Host:            a.cfg.PostgresHost,
			Port:            a.cfg.PostgresPort,
			User:            a.cfg.PostgresUser,
			Password:        a.cfg.PostgresPassword,
			DBName:          a.cfg.PostgresDB,
			SSLMode:         a.cfg.PostgresSSLMode,
			ApplicationName: ServiceName,
			ReadOnly:        true,
			MaxConns:        a.cfg.PostgresMaxConns,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to catalog database: %w", err)
		}
		a.pool = pool
		src := catalog.NewPostgresSource(pool, a.logger)
		healthHandler.RegisterOptional("postgres", src.Ping)
		return src, nil
	default:
		return catalog.NewEmbeddedSource(), nil
	}
}

func (a *App) newKeyValueStore(ctx context.Context) (repository.KeyValueStore, error) {
	switch a.cfg.StorageBackend {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:       a.cfg.RedisHost,
			Port:       a.cfg.RedisPort,
			Password:   a.cfg.RedisPassword,
			DB:         a.cfg.RedisDB,
			ClientName: ServiceName,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("host", a.cfg.RedisHost),
			slog.Int("db", a.cfg.RedisDB),
		)
		return redisstore.New(rdb, a.cfg.SessionTTL()), nil
	case config.StorageBadger:
		db, err := badgerstore.Open(badgerstore.Config{Path: a.cfg.BadgerPath, Logger: a.logger})
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		a.badger = db
		return db, nil
	default:
		a.logger.Warn("using in-memory storage, shopper state is lost on restart")
		return memory.New(), nil
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Catalog returns the catalog service.
func (a *App) Catalog() *service.CatalogService {
	return a.catalog
}

// Run loads the catalog, starts the HTTP server and, when configured, the
// catalog file watcher. It blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.loadCatalog(gctx)
		return nil
	})

	if a.fileSource != nil && a.cfg.CatalogWatch {
		g.Go(func() error {
			a.logger.Info("watching catalog file", slog.String("path", a.fileSource.Path()))
			return a.fileSource.Watch(gctx, a.catalog.Reload)
		})
	}

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// loadCatalog keeps trying until the first load succeeds. Until then catalog
// endpoints answer 503.
func (a *App) loadCatalog(ctx context.Context) {
	delay := catalogRetryMin
	for {
		if err := a.catalog.Load(ctx); err == nil {
			return
		}
		a.logger.Warn("retrying catalog load", slog.Duration("in", delay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, catalogRetryMax)
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	if err := a.traceShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.badger != nil {
		if err := a.badger.Close(); err != nil {
			a.logger.Error("badger close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
