package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports/mocks"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
	"github.com/Gunvolt24/order-pipeline/pkg/validate"
)

// fakeKV — in-memory кэш для тестов сервисов (TTL игнорируется).
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	counter int64
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string][]byte)} }

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == "orders:list:version" {
		if f.counter == 0 {
			return nil, false
		}
		return []byte(fmt.Sprintf("%d", f.counter)), true
	}
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

func (f *fakeKV) Incr(_ context.Context, _ string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	return f.counter
}

func (f *fakeKV) DeleteMatching(_ context.Context, pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for k := range f.data {
		if k == pattern || (wildcard && strings.HasPrefix(k, prefix)) {
			delete(f.data, k)
		}
	}
}

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newCache() (*ordercache.Store, *fakeKV) {
	kv := newFakeKV()
	return ordercache.NewStore(kv, noopLogger{}, ordercache.Config{
		DetailTTL: 30 * time.Second,
		ListTTL:   30 * time.Second,
		TempTTL:   60 * time.Second,
	}), kv
}

func validRequest() *domain.NewOrderRequest {
	return &domain.NewOrderRequest{
		CustomerName: "John Smith",
		Items:        []domain.Item{{Name: "widget", Quantity: 2}},
	}
}

func TestCreateOrder_QueuedAndVisibleBeforeCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	pub := mocks.NewMockJobPublisher(ctrl)
	repo := mocks.NewMockOrderRepository(ctrl)

	pub.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *domain.Job) (string, error) {
			if job.Type != domain.JobCreateOrder || job.Create == nil {
				t.Fatalf("wrong job published: %+v", job)
			}
			return "job-1", nil
		})

	svc := usecase.NewOrderWriteService(pub, repo, cache, noopLogger{})

	receipt, err := svc.CreateOrder(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if receipt.JobID != "job-1" || receipt.Status != "queued" || receipt.OrderID == "" {
		t.Fatalf("receipt wrong: %+v", receipt)
	}
	if receipt.OrderID == receipt.JobID {
		t.Fatal("order_id must differ from job_id")
	}

	// Read-your-write: заказ виден из overlay ещё до работы воркера.
	read := usecase.NewOrderReadService(repo, cache, noopLogger{})
	got, err := read.GetOrder(context.Background(), receipt.OrderID)
	if err != nil || got == nil {
		t.Fatalf("overlay read failed: order=%v err=%v", got, err)
	}
	if got.Status != domain.StatusReceived || got.CustomerName != "John Smith" {
		t.Fatalf("overlay content wrong: %+v", got)
	}
}

func TestCreateOrder_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	svc := usecase.NewOrderWriteService(
		mocks.NewMockJobPublisher(ctrl), mocks.NewMockOrderRepository(ctrl), cache, noopLogger{})

	_, err := svc.CreateOrder(context.Background(), &domain.NewOrderRequest{})
	if !errors.Is(err, validate.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestCreateOrder_PublishFails_NoOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, kv := newCache()
	pub := mocks.NewMockJobPublisher(ctrl)
	repo := mocks.NewMockOrderRepository(ctrl)

	pub.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("%w: broker down", queue.ErrUnavailable))

	svc := usecase.NewOrderWriteService(pub, repo, cache, noopLogger{})

	_, err := svc.CreateOrder(context.Background(), validRequest())
	if !errors.Is(err, queue.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}

	// Никаких snapshot-ов после неуспешной публикации.
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.data) != 0 || kv.counter != 0 {
		t.Fatalf("cache polluted after failed publish: %v", kv.data)
	}
}

func TestUpdateOrderStatus_MergesExpectedStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	pub := mocks.NewMockJobPublisher(ctrl)
	repo := mocks.NewMockOrderRepository(ctrl)

	cache.SetDetail(context.Background(), &domain.Order{
		ID: "ord-1", CustomerName: "John", Status: domain.StatusReceived,
	})

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return("job-2", nil)

	svc := usecase.NewOrderWriteService(pub, repo, cache, noopLogger{})

	receipt, err := svc.UpdateOrderStatus(context.Background(), "ord-1", domain.StatusShipped)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if receipt.JobType != domain.JobUpdateOrderStatus || receipt.OrderID != "ord-1" {
		t.Fatalf("receipt wrong: %+v", receipt)
	}

	detail, ok := cache.GetDetail(context.Background(), "ord-1")
	if !ok || detail.Status != domain.StatusShipped {
		t.Fatalf("detail not merged: ok=%v %+v", ok, detail)
	}
}

func TestUpdateOrderStatus_MissingEverywhere_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	pub := mocks.NewMockJobPublisher(ctrl)
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, nil)

	svc := usecase.NewOrderWriteService(pub, repo, cache, noopLogger{})

	_, err := svc.UpdateOrderStatus(context.Background(), "ghost", domain.StatusShipped)
	if !errors.Is(err, usecase.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestDeleteOrder_TombstoneVisible(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	pub := mocks.NewMockJobPublisher(ctrl)
	repo := mocks.NewMockOrderRepository(ctrl)

	// Заказ есть только в БД: overlay с надгробием строится из снимка БД.
	repo.EXPECT().GetByID(gomock.Any(), "ord-2").Return(&domain.Order{
		ID: "ord-2", CustomerName: "Jane", Status: domain.StatusShipped,
	}, nil)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return("job-3", nil)

	svc := usecase.NewOrderWriteService(pub, repo, cache, noopLogger{})

	receipt, err := svc.DeleteOrder(context.Background(), "ord-2")
	if err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if receipt.JobType != domain.JobDeleteOrder {
		t.Fatalf("receipt wrong: %+v", receipt)
	}

	overlay, ok := cache.GetOverlay(context.Background(), "ord-2")
	if !ok || overlay.Status != domain.StatusDeleting {
		t.Fatalf("tombstone overlay wrong: ok=%v %+v", ok, overlay)
	}
}
