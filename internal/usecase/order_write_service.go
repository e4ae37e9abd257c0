package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/validate"
)

// OrderWriteService — сценарии записи. Сервис НЕ трогает БД:
// провалидированный ввод превращается в job, job уходит в очередь,
// клиент получает квитанцию «queued». Видимость до коммита
// обеспечивают overlay-снимки в кэше.
type OrderWriteService struct {
	publisher ports.JobPublisher
	repo      ports.OrderRepository
	cache     *ordercache.Store
	log       ports.Logger
}

// NewOrderWriteService — конструктор OrderWriteService.
func NewOrderWriteService(
	publisher ports.JobPublisher,
	repo ports.OrderRepository,
	cache *ordercache.Store,
	log ports.Logger,
) *OrderWriteService {
	return &OrderWriteService{publisher: publisher, repo: repo, cache: cache, log: log}
}

// CreateOrder — принять заказ: назначить id, поставить create-job в очередь,
// положить оптимистичный overlay-снимок. Порядок строгий: сначала очередь,
// потом кэш — если публикация не удалась, клиент не увидит заказ-призрак.
func (s *OrderWriteService) CreateOrder(ctx context.Context, req *domain.NewOrderRequest) (*domain.WriteReceipt, error) {
	if err := validate.NewOrder(req); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:           uuid.NewString(),
		CustomerName: req.CustomerName,
		Status:       domain.StatusReceived,
		CreatedAt:    time.Now().UTC(),
		Items:        append([]domain.Item(nil), req.Items...),
	}

	job := domain.NewCreateJob(order)
	jobID, err := s.publisher.Publish(ctx, &job)
	if err != nil {
		return nil, fmt.Errorf("publish create job: %w", err)
	}

	s.cache.SetOverlay(ctx, order)
	s.cache.Invalidate(ctx, order.ID)

	s.log.Infof(ctx, "create job queued job_id=%s order_id=%s", jobID, order.ID)
	return s.receipt(jobID, domain.JobCreateOrder, order.ID, "order accepted for creation"), nil
}

// UpdateOrderStatus — поставить job на смену статуса. Существование заказа
// проверяется по последнему видимому снимку (overlay → кэш → БД),
// чтобы не отвечать 202 на заведомо несуществующий id.
func (s *OrderWriteService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.WriteReceipt, error) {
	if err := validate.Status(status); err != nil {
		return nil, err
	}

	view, err := s.currentView(ctx, orderID)
	if err != nil {
		return nil, err
	}

	job := domain.NewUpdateStatusJob(orderID, status)
	jobID, err := s.publisher.Publish(ctx, &job)
	if err != nil {
		return nil, fmt.Errorf("publish update job: %w", err)
	}

	s.applyExpectedStatus(ctx, view, status)

	s.log.Infof(ctx, "update job queued job_id=%s order_id=%s status=%s", jobID, orderID, status)
	return s.receipt(jobID, domain.JobUpdateOrderStatus, orderID, "status update accepted"), nil
}

// DeleteOrder — поставить job на удаление. До коммита заказ остаётся
// видимым со статусом-надгробием «deleting».
func (s *OrderWriteService) DeleteOrder(ctx context.Context, orderID string) (*domain.WriteReceipt, error) {
	view, err := s.currentView(ctx, orderID)
	if err != nil {
		return nil, err
	}

	job := domain.NewDeleteJob(orderID)
	jobID, err := s.publisher.Publish(ctx, &job)
	if err != nil {
		return nil, fmt.Errorf("publish delete job: %w", err)
	}

	s.applyExpectedStatus(ctx, view, domain.StatusDeleting)

	s.log.Infof(ctx, "delete job queued job_id=%s order_id=%s", jobID, orderID)
	return s.receipt(jobID, domain.JobDeleteOrder, orderID, "order accepted for deletion"), nil
}

// currentView — последний видимый снимок заказа: overlay → детальный кэш → БД.
// nil-снимок из БД означает, что заказа нет нигде.
func (s *OrderWriteService) currentView(ctx context.Context, orderID string) (*domain.Order, error) {
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
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return order, nil
}

// applyExpectedStatus — показать ожидаемый статус до коммита: обновить
// overlay и детальный снимок там, где они есть; если кэш пуст — положить
// новый overlay из последнего видимого снимка.
func (s *OrderWriteService) applyExpectedStatus(ctx context.Context, view *domain.Order, status string) {
	if merged := s.cache.MergeStatus(ctx, view.ID, status); merged == nil {
		expected := view.Clone()
		expected.Status = status
		s.cache.SetOverlay(ctx, expected)
	}
	s.cache.Invalidate(ctx, "")
}

func (s *OrderWriteService) receipt(jobID string, jobType domain.JobType, orderID, message string) *domain.WriteReceipt {
	return &domain.WriteReceipt{
		JobID:   jobID,
		JobType: jobType,
		Status:  "queued",
		OrderID: orderID,
		Message: message,
	}
}
