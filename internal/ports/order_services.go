package ports

import (
	"context"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

// OrderReadService — сервис чтения заказов (overlay → кэш → БД).
type OrderReadService interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) (*domain.OrderPage, error)
}

// OrderWriteService — сервис записи: превращает провалидированный ввод
// в job и квитанцию «queued»; сами данные БД меняет воркер.
type OrderWriteService interface {
	CreateOrder(ctx context.Context, req *domain.NewOrderRequest) (*domain.WriteReceipt, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.WriteReceipt, error)
	DeleteOrder(ctx context.Context, orderID string) (*domain.WriteReceipt, error)
}
