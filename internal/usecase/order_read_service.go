package usecase

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
)

// OrderReadService — сценарии чтения: overlay → кэш → БД.
// Overlay побеждает всегда, иначе GET сразу после записи вернёт
// состояние до ещё не применённого job.
type OrderReadService struct {
	repo  ports.OrderRepository
	cache *ordercache.Store
	log   ports.Logger
}

// NewOrderReadService — конструктор OrderReadService.
func NewOrderReadService(repo ports.OrderRepository, cache *ordercache.Store, log ports.Logger) *OrderReadService {
	return &OrderReadService{repo: repo, cache: cache, log: log}
}

// GetOrder — заказ по id. Промах обоих слоёв кэша уходит в БД;
// снимок из БД кэшируется с джиттером TTL. (nil, nil) — заказа нет.
func (s *OrderReadService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if overlay, ok := s.cache.GetOverlay(ctx, orderID); ok {
		return overlay, nil
	}
	if detail, ok := s.cache.GetDetail(ctx, orderID); ok {
		return detail, nil
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, nil
	}

	s.cache.SetDetail(ctx, order)
	return order, nil
}

// ListOrders — страница заказов. Ключ страницы включает текущую версию
// списка: после любой записи версия растёт, и все старые страницы
// становятся промахами разом, без перечисления ключей.
func (s *OrderReadService) ListOrders(ctx context.Context, limit, offset int) (*domain.OrderPage, error) {
	version := s.cache.ListVersion(ctx)
	if page, ok := s.cache.GetList(ctx, version, limit, offset); ok {
		return page, nil
	}

	orders, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	page := &domain.OrderPage{
		Count:      len(orders),
		NextOffset: offset + len(orders),
		Orders:     orders,
	}
	s.cache.SetList(ctx, version, limit, offset, page)
	return page, nil
}
