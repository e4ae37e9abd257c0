package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Publisher удовлетворяет порту JobPublisher.
var _ ports.JobPublisher = (*Publisher)(nil)

// ErrUnavailable — брокер недоступен или публикация не подтверждена.
// Job НЕ сохранён: вызывающий обязан не оставлять после себя overlay.
var ErrUnavailable = errors.New("queue unavailable")

// PublisherConfig — настройки публикации.
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher — публикатор job в долговечную очередь. Writer создаётся
// лениво и общий для всех конкурентных HTTP-обработчиков, поэтому
// connect-or-reuse-then-publish выполняется под мьютексом; после ошибки
// writer сбрасывается, следующий вызов переподключится.
type Publisher struct {
	cfg PublisherConfig
	log ports.Logger

	mu     sync.Mutex
	writer *kafka.Writer
}

// NewPublisher — конструктор Publisher.
func NewPublisher(cfg PublisherConfig, log ports.Logger) *Publisher {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Publisher{cfg: cfg, log: log}
}

// Publish — enqueue(job) -> job_id. Назначает job_id (uuid), если пуст,
// и возвращает его только после подтверждения брокера (RequireAll).
// Ключ сообщения — order_id: при росте числа партиций порядок
// по одному заказу сохранится.
func (p *Publisher) Publish(ctx context.Context, job *domain.Job) (string, error) {
	if job == nil {
		return "", fmt.Errorf("%w: nil job", domain.ErrMalformedJob)
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	writer := p.ensureWriter()
	if err := writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.OrderID()),
		Value: raw,
	}); err != nil {
		// Сбрасываем writer: следующий Publish начнёт с чистого подключения.
		_ = writer.Close()
		p.writer = nil
		p.log.Errorf(ctx, "publish failed job_id=%s type=%s err=%v", job.JobID, job.Type, err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	metrics.JobsPublished.WithLabelValues(string(job.Type)).Inc()
	p.log.Infof(ctx, "job published job_id=%s type=%s order_id=%s", job.JobID, job.Type, job.OrderID())
	return job.JobID, nil
}

// ensureWriter — вернуть существующий writer или создать новый.
// Вызывается только под p.mu.
func (p *Publisher) ensureWriter() *kafka.Writer {
	if p.writer != nil {
		return p.writer
	}
	p.writer = &kafka.Writer{
		Addr:  kafka.TCP(p.cfg.Brokers...),
		Topic: p.cfg.Topic,
		// Hash по ключу: все job одного заказа попадают в одну партицию.
		Balancer: &kafka.Hash{},
		// Подтверждение всеми репликами — аналог persistent delivery.
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: p.cfg.WriteTimeout,
	}
	return p.writer
}

// Close — закрывает writer, если он был создан.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
