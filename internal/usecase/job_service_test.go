package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports/mocks"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
)

func marshalJob(t *testing.T, job domain.Job) []byte {
	t.Helper()
	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return raw
}

func TestProcess_Create_InsertsAndInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	// Overlay существует до коммита и должен исчезнуть после.
	cache.SetOverlay(context.Background(), &domain.Order{ID: "ord-1", Status: domain.StatusReceived})

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *domain.Order) (bool, error) {
			if order.ID != "ord-1" || len(order.Items) != 1 {
				t.Fatalf("order from payload wrong: %+v", order)
			}
			return true, nil
		})

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	job := domain.NewCreateJob(&domain.Order{
		ID: "ord-1", CustomerName: "John", Status: domain.StatusReceived,
		Items: []domain.Item{{Name: "widget", Quantity: 1}},
	})
	job.JobID = "job-1"

	if err := svc.ProcessFromMessage(context.Background(), marshalJob(t, job)); err != nil {
		t.Fatalf("ProcessFromMessage: %v", err)
	}

	if _, ok := cache.GetOverlay(context.Background(), "ord-1"); ok {
		t.Fatal("overlay survived commit")
	}
	if v := cache.ListVersion(context.Background()); v == 0 {
		t.Fatal("list version not bumped after commit")
	}
}

func TestProcess_Create_Redelivery_NoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	// Повторная доставка: строка уже есть, вставка сообщает false.
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	job := domain.NewCreateJob(&domain.Order{
		ID: "ord-1", CustomerName: "John", Status: domain.StatusReceived,
		Items: []domain.Item{{Name: "widget", Quantity: 1}},
	})

	if err := svc.ProcessFromMessage(context.Background(), marshalJob(t, job)); err != nil {
		t.Fatalf("redelivered create must be no-op, got %v", err)
	}
}

func TestProcess_Update_MissingRow_NoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().UpdateStatus(gomock.Any(), "ghost", domain.StatusShipped).Return(false, nil)

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	job := domain.NewUpdateStatusJob("ghost", domain.StatusShipped)
	if err := svc.ProcessFromMessage(context.Background(), marshalJob(t, job)); err != nil {
		t.Fatalf("update for missing row must be no-op, got %v", err)
	}
}

func TestProcess_Delete_AppliesAndCleansCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	cache.SetDetail(context.Background(), &domain.Order{ID: "ord-2", Status: domain.StatusDeleting})
	repo.EXPECT().Delete(gomock.Any(), "ord-2").Return(true, nil)

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	job := domain.NewDeleteJob("ord-2")
	if err := svc.ProcessFromMessage(context.Background(), marshalJob(t, job)); err != nil {
		t.Fatalf("ProcessFromMessage: %v", err)
	}

	if _, ok := cache.GetDetail(context.Background(), "ord-2"); ok {
		t.Fatal("detail snapshot survived delete")
	}
}

func TestProcess_TransientStoreError_Propagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().UpdateStatus(gomock.Any(), "ord-3", domain.StatusShipped).
		Return(false, errors.New("connection refused"))

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	job := domain.NewUpdateStatusJob("ord-3", domain.StatusShipped)
	err := svc.ProcessFromMessage(context.Background(), marshalJob(t, job))
	if err == nil {
		t.Fatal("transient error must propagate for retry")
	}
	if errors.Is(err, domain.ErrMalformedJob) || errors.Is(err, domain.ErrUnknownJobType) {
		t.Fatalf("transient error must not look like poison: %v", err)
	}
}

func TestProcessFromMessage_Poison(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	svc := usecase.NewJobService(repo, cache, noopLogger{})

	if err := svc.ProcessFromMessage(context.Background(), []byte(`{"type":"drop_tables"}`)); !errors.Is(err, domain.ErrUnknownJobType) {
		t.Fatalf("want ErrUnknownJobType, got %v", err)
	}
	if err := svc.ProcessFromMessage(context.Background(), []byte(`not json`)); !errors.Is(err, domain.ErrMalformedJob) {
		t.Fatalf("want ErrMalformedJob, got %v", err)
	}
}
