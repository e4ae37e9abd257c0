package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
)

// JobService — применение job воркером: единственный писатель в БД.
// Каждый job идемпотентен, потому что очередь гарантирует at-least-once:
// повторная доставка не должна менять итоговое состояние.
type JobService struct {
	repo  ports.OrderRepository
	cache *ordercache.Store
	log   ports.Logger
}

// NewJobService — конструктор JobService.
func NewJobService(repo ports.OrderRepository, cache *ordercache.Store, log ports.Logger) *JobService {
	return &JobService{repo: repo, cache: cache, log: log}
}

// ProcessFromMessage — разобрать сырое сообщение очереди и применить job.
// ErrUnknownJobType/ErrMalformedJob пробрасываются как есть: консьюмер
// по ним коммитит и пропускает сообщение, не тратя попытки на повтор.
func (s *JobService) ProcessFromMessage(ctx context.Context, raw []byte) error {
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return err
	}
	return s.Process(ctx, &job)
}

// Process — исчерпывающий switch по типу job. Неизвестный тип сюда
// не доходит: его отбрасывает ещё Unmarshal.
func (s *JobService) Process(ctx context.Context, job *domain.Job) error {
	var err error
	switch job.Type {
	case domain.JobCreateOrder:
		err = s.applyCreate(ctx, job)
	case domain.JobUpdateOrderStatus:
		err = s.applyUpdate(ctx, job)
	case domain.JobDeleteOrder:
		err = s.applyDelete(ctx, job)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownJobType, job.Type)
	}
	if err != nil {
		return err
	}

	metrics.JobsProcessed.WithLabelValues(string(job.Type)).Inc()
	return nil
}

// applyCreate — вставка заказа. Повторная доставка того же job
// упирается в существующий id и становится no-op.
func (s *JobService) applyCreate(ctx context.Context, job *domain.Job) error {
	p := job.Create
	order := &domain.Order{
		ID:           p.OrderID,
		CustomerName: p.CustomerName,
		Status:       p.Status,
		Items:        append([]domain.Item(nil), p.Items...),
	}

	inserted, err := s.repo.Create(ctx, order)
	if err != nil {
		return fmt.Errorf("create order %s: %w", p.OrderID, err)
	}
	if !inserted {
		s.log.Infof(ctx, "order already exists order_id=%s job_id=%s (skipped)", p.OrderID, job.JobID)
		return nil
	}

	s.afterCommit(ctx, p.OrderID)
	s.log.Infof(ctx, "order created order_id=%s job_id=%s", p.OrderID, job.JobID)
	return nil
}

// applyUpdate — смена статуса. Отсутствующий заказ — no-op с warn:
// update мог приехать после delete того же заказа.
func (s *JobService) applyUpdate(ctx context.Context, job *domain.Job) error {
	p := job.Update

	matched, err := s.repo.UpdateStatus(ctx, p.OrderID, p.Status)
	if err != nil {
		return fmt.Errorf("update order %s: %w", p.OrderID, err)
	}
	if !matched {
		s.log.Warnf(ctx, "update for missing order order_id=%s job_id=%s (skipped)", p.OrderID, job.JobID)
		return nil
	}

	s.afterCommit(ctx, p.OrderID)
	s.log.Infof(ctx, "order status updated order_id=%s status=%s job_id=%s", p.OrderID, p.Status, job.JobID)
	return nil
}

// applyDelete — удаление заказа с позициями. Повторная доставка — no-op.
func (s *JobService) applyDelete(ctx context.Context, job *domain.Job) error {
	p := job.Delete

	matched, err := s.repo.Delete(ctx, p.OrderID)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", p.OrderID, err)
	}
	if !matched {
		s.log.Warnf(ctx, "delete for missing order order_id=%s job_id=%s (skipped)", p.OrderID, job.JobID)
		return nil
	}

	s.afterCommit(ctx, p.OrderID)
	s.log.Infof(ctx, "order deleted order_id=%s job_id=%s", p.OrderID, job.JobID)
	return nil
}

// afterCommit — после успешной транзакции снести overlay и детальный
// снимок и поднять версию списка: следующий GET увидит данные из БД.
func (s *JobService) afterCommit(ctx context.Context, orderID string) {
	s.cache.DeleteOverlay(ctx, orderID)
	s.cache.Invalidate(ctx, orderID)
}
