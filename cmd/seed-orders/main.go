package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/order-pipeline/config"
	cacheredis "github.com/Gunvolt24/order-pipeline/internal/cache/redis"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	"github.com/Gunvolt24/order-pipeline/internal/repo/postgres"
	"github.com/Gunvolt24/order-pipeline/pkg/logger"

	"github.com/google/uuid"
)

var customers = []string{
	"Alice Johnson", "Bob Smith", "Carol White", "Dan Brown", "Eve Davis",
	"Frank Miller", "Grace Lee", "Henry Wilson",
}

var itemNames = []string{
	"keyboard", "mouse", "monitor", "usb hub", "webcam", "headset", "dock station",
}

// CLI-утилита наполнения пайплайна: публикует пачку create-job в очередь;
// с флагом -reset предварительно чистит таблицы и ключи кэша.
func main() {
	count := flag.Int("n", 20, "number of create jobs to publish")
	reset := flag.Bool("reset", false, "truncate orders tables and flush cache keys before seeding")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	ctx := context.Background()

	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.Prod)
	if err != nil {
		fatal("init logger: %v", err)
	}
	defer func() { _ = cleanupLogger() }()

	if *reset {
		if err := resetState(ctx, &cfg, logg); err != nil {
			fatal("reset: %v", err)
		}
		fmt.Fprintln(os.Stderr, "tables truncated, cache cleared")
	}

	publisher := queue.NewPublisher(queue.PublisherConfig{
		Brokers: cfg.Queue.Brokers,
		Topic:   cfg.Queue.Topic,
	}, logg)
	defer func() { _ = publisher.Close() }()

	published := 0
	for i := 0; i < *count; i++ {
		job := domain.NewCreateJob(randomOrder())
		jobID, err := publisher.Publish(ctx, &job)
		if err != nil {
			fatal("publish job %d/%d: %v", i+1, *count, err)
		}
		published++
		fmt.Printf("queued job_id=%s order_id=%s\n", jobID, job.OrderID())
	}

	fmt.Fprintf(os.Stderr, "seeded %d create jobs into %q\n", published, cfg.Queue.Topic)
}

// randomOrder — заказ со случайным клиентом и 1-3 позициями.
func randomOrder() *domain.Order {
	items := make([]domain.Item, 1+rand.Intn(3))
	for i := range items {
		items[i] = domain.Item{
			Name:     itemNames[rand.Intn(len(itemNames))],
			Quantity: 1 + rand.Intn(5),
		}
	}
	return &domain.Order{
		ID:           uuid.NewString(),
		CustomerName: customers[rand.Intn(len(customers))],
		Status:       domain.StatusReceived,
		Items:        items,
	}
}

// resetState — очистка таблиц и всех ключей кэша пайплайна.
func resetState(ctx context.Context, cfg *config.Config, logg *logger.ZapLogger) error {
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	if cfg.Cache.Enabled {
		kv, err := cacheredis.Connect(ctx, cfg.Cache.URL, logg)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		defer func() { _ = kv.Close() }()

		for _, pattern := range []string{"orders:*", "temp_order:*"} {
			kv.DeleteMatching(ctx, pattern)
		}
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
