package ports

import (
	"context"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

// JobPublisher — порт публикации job в долговечную очередь.
// Контракт: enqueue(job) -> job_id. Реализация назначает job_id,
// если он пуст, и возвращает его после подтверждения брокера.
// Любая ошибка означает, что job НЕ был надёжно сохранён.
type JobPublisher interface {
	Publish(ctx context.Context, job *domain.Job) (string, error)
}
