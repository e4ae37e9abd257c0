package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports/mocks"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
)

func TestGetOrder_OverlayWinsOverStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	// В БД старый статус, в overlay — ожидаемый новый; репозиторий
	// не должен вызываться вовсе.
	cache.SetOverlay(context.Background(), &domain.Order{
		ID: "ord-1", Status: domain.StatusDeleting,
	})

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	got, err := svc.GetOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got == nil || got.Status != domain.StatusDeleting {
		t.Fatalf("overlay must win: %+v", got)
	}
}

func TestGetOrder_StoreHitPopulatesDetail(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	want := &domain.Order{ID: "ord-2", CustomerName: "John", Status: domain.StatusReceived}
	repo.EXPECT().GetByID(gomock.Any(), "ord-2").Return(want, nil).Times(1)

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	got, err := svc.GetOrder(context.Background(), "ord-2")
	if err != nil || got == nil || got.ID != "ord-2" {
		t.Fatalf("store read wrong: order=%v err=%v", got, err)
	}

	// Второй запрос обслуживается детальным снимком (ровно один вызов репозитория).
	got2, err := svc.GetOrder(context.Background(), "ord-2")
	if err != nil || got2 == nil || got2.ID != "ord-2" {
		t.Fatalf("cached read wrong: order=%v err=%v", got2, err)
	}
}

func TestGetOrder_MissingEverywhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, nil)

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	got, err := svc.GetOrder(context.Background(), "ghost")
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", got, err)
	}
}

func TestGetOrder_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().GetByID(gomock.Any(), "ord-3").Return(nil, errors.New("db down"))

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	if _, err := svc.GetOrder(context.Background(), "ord-3"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestListOrders_PageShapeAndCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	orders := []*domain.Order{
		{ID: "b", Status: domain.StatusReceived},
		{ID: "a", Status: domain.StatusShipped},
	}
	repo.EXPECT().List(gomock.Any(), 50, 0).Return(orders, nil).Times(1)

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	page, err := svc.ListOrders(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if page.Count != 2 || page.NextOffset != 2 || len(page.Orders) != 2 {
		t.Fatalf("page shape wrong: %+v", page)
	}

	// Повторный запрос под той же версией — из кэша.
	if _, err := svc.ListOrders(context.Background(), 50, 0); err != nil {
		t.Fatalf("cached ListOrders: %v", err)
	}
}

func TestListOrders_InvalidationForcesStoreRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, _ := newCache()
	repo := mocks.NewMockOrderRepository(ctrl)

	repo.EXPECT().List(gomock.Any(), 50, 0).Return(nil, nil).Times(2)

	svc := usecase.NewOrderReadService(repo, cache, noopLogger{})

	if _, err := svc.ListOrders(context.Background(), 50, 0); err != nil {
		t.Fatalf("first ListOrders: %v", err)
	}

	// Запись подняла версию — закэшированная страница больше не видна.
	cache.Invalidate(context.Background(), "")

	if _, err := svc.ListOrders(context.Background(), 50, 0); err != nil {
		t.Fatalf("second ListOrders: %v", err)
	}
}
