//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	pgrepo "github.com/Gunvolt24/order-pipeline/internal/repo/postgres"
	"github.com/Gunvolt24/order-pipeline/internal/testutil"
)

func TestOrderRepository_CRUD_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	repo := pgrepo.NewOrderRepository(pg.Pool)

	ord := testutil.MakeOrder(testutil.WithItems(2))

	// Вставка и повторная вставка того же id.
	inserted, err := repo.Create(ctx, &ord)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.Create(ctx, &ord)
	require.NoError(t, err)
	require.False(t, inserted, "redelivered create must be a no-op")

	// Чтение: статус по умолчанию и позиции на месте.
	got, err := repo.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, ord.ID, got.ID)
	require.Equal(t, domain.StatusReceived, got.Status)
	require.Len(t, got.Items, 2)
	require.False(t, got.CreatedAt.IsZero(), "created_at must be set by the database")

	// Смена статуса.
	matched, err := repo.UpdateStatus(ctx, ord.ID, domain.StatusShipped)
	require.NoError(t, err)
	require.True(t, matched)

	got, err = repo.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, got.Status)

	// Отсутствующий заказ — (false, nil), не ошибка.
	matched, err = repo.UpdateStatus(ctx, "ghost", domain.StatusShipped)
	require.NoError(t, err)
	require.False(t, matched)

	// Удаление с каскадом позиций.
	matched, err = repo.Delete(ctx, ord.ID)
	require.NoError(t, err)
	require.True(t, matched)

	got, err = repo.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	var itemCount int
	require.NoError(t, pg.Pool.QueryRow(ctx,
		`SELECT count(*) FROM order_items WHERE order_id = $1`, ord.ID).Scan(&itemCount))
	require.Zero(t, itemCount, "items must be removed by cascade")
}

func TestOrderRepository_List_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	repo := pgrepo.NewOrderRepository(pg.Pool)

	for i := 0; i < 5; i++ {
		ord := testutil.MakeOrder()
		inserted, err := repo.Create(ctx, &ord)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	page, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for _, o := range page {
		require.NotEmpty(t, o.Items, "items must be joined into the page")
	}

	rest, err := repo.List(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
}
