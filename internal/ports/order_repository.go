package ports

import (
	"context"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

// OrderRepository — источник истины (Postgres). Каждая мутация —
// одна транзакция; флаг bool сообщает, затронула ли она строку,
// чтобы обработчики job могли отличить no-op от применённой записи.
type OrderRepository interface {
	// Create — вставить заказ с позициями; (false, nil), если id уже существует.
	Create(ctx context.Context, order *domain.Order) (bool, error)

	// GetByID — заказ по id; (nil, nil), если записи нет.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// List — страница заказов, created_at DESC.
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)

	// UpdateStatus — сменить статус; (false, nil), если заказа нет.
	UpdateStatus(ctx context.Context, orderID, status string) (bool, error)

	// Delete — удалить заказ и позиции (каскад); (false, nil), если заказа нет.
	Delete(ctx context.Context, orderID string) (bool, error)
}
