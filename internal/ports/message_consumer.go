package ports

import "context"

// MessageConsumer — цикл потребления очереди (воркер).
// Run блокируется до отмены контекста; Close освобождает ресурсы брокера.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
