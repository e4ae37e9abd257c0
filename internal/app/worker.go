package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/order-pipeline/config"
	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	"github.com/Gunvolt24/order-pipeline/internal/repo/postgres"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
	"github.com/Gunvolt24/order-pipeline/pkg/logger"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
)

// Worker — собранный воркер очереди: единственный писатель в БД.
type Worker struct {
	Logger        ports.Logger
	Consumer      ports.MessageConsumer
	metricsServer *http.Server
}

// BootstrapWorker — собирает воркер: миграции, топики очереди, кэш
// (для инвалидации после коммита), обработчик job и консьюмер.
func BootstrapWorker(ctx context.Context, cfg *config.Config) (*Worker, Cleanup, error) {
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.Prod)
	if err != nil {
		return nil, func() {}, err
	}

	metrics.MustRegister()

	// Схему ведёт воркер: он единственный писатель в БД.
	if err := postgres.Migrate(cfg.Postgres.DSN); err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}
	logg.Infof(ctx, "migrations applied")

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Основной топик и DLQ создаются заранее: одна партиция — FIFO.
	for _, topic := range []string{cfg.Queue.Topic, dlqTopicName(cfg.Queue)} {
		if err := queue.EnsureTopic(ctx, cfg.Queue.Brokers, topic); err != nil {
			logg.Warnf(ctx, "ensure topic %q: %v", topic, err)
		}
	}

	kv, closeKV := connectCache(ctx, cfg.Cache, logg)
	orderCache := ordercache.NewStore(kv, logg, ordercache.Config{
		DetailTTL: cfg.Cache.DetailTTL,
		ListTTL:   cfg.Cache.ListTTL,
		TempTTL:   cfg.Cache.TempTTL,
	})

	orderRepo := postgres.NewOrderRepository(pool)
	jobService := usecase.NewJobService(orderRepo, orderCache, logg)

	consumerCfg := queue.ConsumerConfig{
		Brokers:        cfg.Queue.Brokers,
		GroupID:        cfg.Queue.GroupID,
		Topic:          cfg.Queue.Topic,
		StartOffset:    cfg.Queue.StartOffset,
		ProcessTimeout: cfg.Queue.ProcessTimeout,
		RetryInitial:   cfg.Queue.RetryInitial,
		RetryMax:       cfg.Queue.RetryMax,
		MaxAttempts:    cfg.Queue.MaxAttempts,
		DLQTopic:       cfg.Queue.DLQTopic,
	}
	consumer := queue.NewConsumer(&consumerCfg, jobService, logg)

	metricsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	worker := &Worker{
		Logger:        logg,
		Consumer:      consumer,
		metricsServer: metricsSrv,
	}

	cleanup := func() {
		if cErr := consumer.Close(); cErr != nil {
			logg.Warnf(ctx, "consumer close error: %v", cErr)
		}
		closeKV()
		pool.Close()
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}

	return worker, cleanup, nil
}

// dlqTopicName — имя DLQ-топика по конфигурации (<topic>.dlq, если не задано).
func dlqTopicName(q config.Queue) string {
	if q.DLQTopic != "" {
		return q.DLQTopic
	}
	return q.Topic + ".dlq"
}

// Run — запускает слушатель метрик и цикл консьюмера; блокируется
// до отмены контекста или фатальной ошибки цикла.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		w.Logger.Infof(ctx, "metrics listener starting (addr=%s)", w.metricsServer.Addr)
		if err := w.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.Logger.Warnf(ctx, "metrics listener error: %v", err)
		}
	}()

	w.Logger.Infof(ctx, "queue consumer starting")
	err := w.Consumer.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if sErr := w.metricsServer.Shutdown(shutdownCtx); sErr != nil {
		w.Logger.Warnf(ctx, "metrics listener shutdown failed: %v", sErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	w.Logger.Infof(ctx, "worker stopped")
	return nil
}
