package queue

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// errDeadLetterUnavailable — ни применить, ни похоронить сообщение не удалось;
// цикл останавливается, чтобы не нарушить порядок по ключу.
var errDeadLetterUnavailable = errors.New("message not resolved: dead-letter topic unavailable")

// reader — минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// dlqWriter — контракт над kafka.Writer для DLQ (тоже ради моков).
type dlqWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// jobProcessor — зависимость на бизнес-логику:
// парсит job и применяет его к хранилищу в транзакции.
type jobProcessor interface {
	ProcessFromMessage(ctx context.Context, raw []byte) error
}

// Consumer — единственный потребитель очереди. Строгий FIFO по смыслу
// prefetch=1: одно сообщение обрабатывается до конца (коммит или DLQ),
// и лишь потом берётся следующее. Задержка коммита БД естественно
// ограничивает темп разбора очереди.
type Consumer struct {
	reader    reader
	dlq       dlqWriter
	processor jobProcessor
	log       ports.Logger

	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	maxAttempts    int
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer — конструктор. readerConfig() настроен на ручной коммит оффсетов.
func NewConsumer(cfg *ConsumerConfig, processor jobProcessor, log ports.Logger) *Consumer {
	r := kafka.NewReader(cfg.readerConfig())

	dlq := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.dlqTopic(),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	// Параметры по умолчанию (если не заданы в конфиге)
	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 30 * time.Second
	}

	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = 1 * time.Second
	}

	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	return &Consumer{
		reader:         r,
		dlq:            dlq,
		processor:      processor,
		log:            log,
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		maxAttempts:    attempts,
		// jitterRand — источник случайности, чтобы рассинхронизировать повторы.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run — основной цикл:
// 1) читаем сообщение без автокоммита;
// 2) применяем job с повторами на месте (handleMessage): тот же job
//    не отпускается, пока не применён, не признан мусором или не ушёл в DLQ —
//    иначе сломается порядок по ключу;
// 3) затем коммитим оффсет и берём следующее сообщение.
// Отмена контекста останавливает приём новых сообщений; текущее
// сообщение всегда дорабатывается до конца (см. detachedCtx).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.retryInitial

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Иначе - временная ошибка брокера/сети. Ожидаем и повторяем
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		// Успешный FetchMessage -> сбрасываем интервал ожидания
		retry = c.retryInitial
		metrics.JobsConsumed.WithLabelValues(rc.Topic).Inc()

		if shouldCommit := c.handleMessage(ctx, rc.Topic, &msg); shouldCommit {
			c.commitSafely(&msg)
		} else {
			// Сообщение не доведено до исхода (DLQ недоступен):
			// останавливаемся, перезапуск вернёт его на доставку.
			return errDeadLetterUnavailable
		}
	}
}

// Close — закрывает reader и DLQ-writer. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
		if dlqErr := c.dlq.Close(); retErr == nil {
			retErr = dlqErr
		}
	})
	return retErr
}
