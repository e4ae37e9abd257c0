package queue

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// handleMessage доводит одно сообщение до исхода: применено, пропущено
// как мусор или отправлено в DLQ — и тогда возвращает true (коммитить).
// false только в одном случае: DLQ недоступен и сообщение должно
// остаться в основном топике до перезапуска.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	backoff := c.retryInitial

	for attempt := 1; ; attempt++ {
		err := c.processOnce(msg.Value)

		switch {
		case err == nil:
			// Счётчик обработанных job ведёт сам обработчик: там известен тип.
			return true
		case errors.Is(err, domain.ErrUnknownJobType), errors.Is(err, domain.ErrMalformedJob):
			// Мусорное сообщение: повтор бесполезен, логируем и пропускаем навсегда.
			metrics.JobsFailed.WithLabelValues(topic).Inc()
			c.log.Warnf(ctx, "bad message offset=%d: %v (skipped)", msg.Offset, err)
			return true
		default:
			// Временная ошибка (БД/сеть/таймаут): повторяем тот же job на месте.
			// Отпустить его без исхода нельзя — следующий job того же заказа
			// обогнал бы текущий.
			metrics.JobsFailed.WithLabelValues(topic).Inc()
			if attempt >= c.maxAttempts {
				return c.deadLetter(ctx, topic, msg, err)
			}
			sleep := c.withJitterEqual(backoff)
			c.log.Warnf(ctx, "process failed offset=%d attempt=%d/%d: %v (retry in %s)",
				msg.Offset, attempt, c.maxAttempts, err, sleep)
			// Повторы не прерываем отменой Run-контекста: сообщение дорабатывается.
			time.Sleep(sleep)
			backoff = c.nextBackoff(backoff)
		}
	}
}

// processOnce — одна попытка применения job. Контекст отвязан от Run:
// завершение воркера не отменяет транзакцию на середине сообщения,
// лимит даёт только processTimeout.
func (c *Consumer) processOnce(raw []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.processTimeout)
	defer cancel()
	return c.processor.ProcessFromMessage(ctx, raw)
}

// deadLetter — после исчерпания попыток сырое сообщение уезжает в DLQ,
// оффсет коммитится: молча ронять job нельзя, блокировать очередь — тоже.
func (c *Consumer) deadLetter(ctx context.Context, topic string, msg *kafka.Message, cause error) bool {
	dlqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.dlq.WriteMessages(dlqCtx, kafka.Message{Key: msg.Key, Value: msg.Value}); err != nil {
		// DLQ тоже недоступен — без коммита сообщение вернёт перезапуск воркера.
		c.log.Errorf(ctx, "dead-letter failed offset=%d cause=%v dlq_err=%v", msg.Offset, cause, err)
		return false
	}
	metrics.JobsDeadLettered.WithLabelValues(topic).Inc()
	c.log.Errorf(ctx, "message dead-lettered offset=%d after %d attempts: %v", msg.Offset, c.maxAttempts, cause)
	return true
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
// Отдельный контекст: коммит должен пройти и при отменённом Run-контексте.
func (c *Consumer) commitSafely(msg *kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — умеренная случайность: половина задержки фиксирована,
// вторая половина — случайная.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}
