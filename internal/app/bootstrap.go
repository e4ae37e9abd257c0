package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gunvolt24/order-pipeline/config"
	cachenoop "github.com/Gunvolt24/order-pipeline/internal/cache/noop"
	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	cacheredis "github.com/Gunvolt24/order-pipeline/internal/cache/redis"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	"github.com/Gunvolt24/order-pipeline/internal/repo/postgres"
	rest "github.com/Gunvolt24/order-pipeline/internal/transport/http"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
	"github.com/Gunvolt24/order-pipeline/pkg/logger"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
	"github.com/Gunvolt24/order-pipeline/pkg/telemetry"
)

// App — собранный API-сервер и его внешние интерфейсы.
type App struct {
	Logger          ports.Logger
	HTTPServer      *http.Server
	gracefulTimeout time.Duration
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// Bootstrap — собирает API-сервер: логгер, метрики, трейсинг, Postgres,
// кэш (redis или noop), публикатор очереди, сервисы и роутер.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.Prod)
	if err != nil {
		return nil, func() {}, err
	}

	metrics.MustRegister()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Кэш всегда мягкий: недоступный Redis деградирует до noop,
	// сервис продолжает работать от БД.
	kv, closeKV := connectCache(ctx, cfg.Cache, logg)
	orderCache := ordercache.NewStore(kv, logg, ordercache.Config{
		DetailTTL: cfg.Cache.DetailTTL,
		ListTTL:   cfg.Cache.ListTTL,
		TempTTL:   cfg.Cache.TempTTL,
	})

	publisher := queue.NewPublisher(queue.PublisherConfig{
		Brokers: cfg.Queue.Brokers,
		Topic:   cfg.Queue.Topic,
	}, logg)

	orderRepo := postgres.NewOrderRepository(pool)
	readService := usecase.NewOrderReadService(orderRepo, orderCache, logg)
	writeService := usecase.NewOrderWriteService(publisher, orderRepo, orderCache, logg)

	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	httpHandler := rest.NewHandler(readService, writeService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		gracefulTimeout: cfg.HTTP.ShutdownTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if tErr := shutdownTrace(context.Background()); tErr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", tErr)
		}
		if pErr := publisher.Close(); pErr != nil {
			logg.Warnf(ctx, "publisher close error: %v", pErr)
		}
		closeKV()
		pool.Close()
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}

	return app, cleanup, nil
}

// connectCache — подключение кэша по конфигурации. Ошибка подключения —
// предупреждение и noop, никогда не отказ старта.
func connectCache(ctx context.Context, cfg config.Cache, log ports.Logger) (ports.KeyValueCache, func()) {
	if !cfg.Enabled {
		log.Infof(ctx, "cache disabled by config")
		return cachenoop.KV{}, func() {}
	}

	kv, err := cacheredis.Connect(ctx, cfg.URL, log)
	if err != nil {
		log.Warnf(ctx, "redis unavailable, falling back to noop cache: %v", err)
		return cachenoop.KV{}, func() {}
	}

	log.Infof(ctx, "redis cache connected url=%s", cfg.URL)
	return kv, func() {
		if cErr := kv.Close(); cErr != nil {
			log.Warnf(ctx, "redis close error: %v", cErr)
		}
	}
}

// Run — запускает HTTP-сервер, ждёт отмены контекста или ошибки,
// затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		a.Logger.Warnf(ctx, "http server error: %v", err)
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	a.Logger.Infof(ctx, "api server stopped")
	return nil
}
