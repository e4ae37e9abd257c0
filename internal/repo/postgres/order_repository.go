package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Проверка, что OrderRepository удовлетворяет порту OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — реализация репозитория заказов на Postgres (pgxpool).
// Каждая мутация — одна транзакция: именно она (а не блокировки в коде)
// защищает согласованность заказа с позициями.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository — конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

// Create — транзакционно вставляет заказ и его позиции.
// ON CONFLICT DO NOTHING делает повторную доставку create-job безопасной:
// (false, nil) означает, что заказ с таким id уже есть и вставка пропущена.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (bool, error) {
	if order == nil || order.ID == "" {
		return false, errors.New("order is empty or order_id is required")
	}
	if order.CustomerName == "" {
		return false, errors.New("customer_name is required")
	}

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	status := order.Status
	if status == "" {
		status = domain.StatusReceived
	}

	tag, err := transaction.Exec(ctx, `
		INSERT INTO orders (id, customer_name, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, order.ID, order.CustomerName, status)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Заказ уже существует — позиции не трогаем, коммитить нечего.
		return false, nil
	}

	if len(order.Items) > 0 {
		if err := copyItems(ctx, transaction, order.ID, order.Items); err != nil {
			return false, err
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// GetByID — заказ с позициями по id. Если записи нет, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order

	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_name, status, created_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&order.ID, &order.CustomerName, &order.Status, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT name, quantity
		FROM order_items WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("items rows: %w", err)
	}

	return &order, nil
}

// List — страница заказов (created_at DESC, при равенстве — id DESC для
// стабильного порядка). Два запроса на страницу: база + позиции, склейка в памяти.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_name, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	byID := make(map[string]*domain.Order, limit)
	ids := make([]string, 0, limit)

	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.Status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil // пустая страница
	}

	iRows, err := r.pool.Query(ctx, `
		SELECT order_id, name, quantity
		FROM order_items
		WHERE order_id = ANY($1::text[])
		ORDER BY order_id, id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer iRows.Close()

	for iRows.Next() {
		var id string
		var item domain.Item
		if err := iRows.Scan(&id, &item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if order := byID[id]; order != nil {
			order.Items = append(order.Items, item)
		}
	}
	if err := iRows.Err(); err != nil {
		return nil, fmt.Errorf("items rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus — смена статуса. (false, nil) при отсутствующем заказе:
// для обработчика job это ожидаемая гонка, а не ошибка.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1
	`, orderID, status)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete — удаляет заказ; позиции уходят каскадом (FK ON DELETE CASCADE).
// (false, nil), если заказа уже нет.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM orders WHERE id = $1
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// copyItems — вставка позиций через COPY (CopyFromRows); быстрее, чем INSERT в цикле.
func copyItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.Item) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{orderID, item.Name, item.Quantity})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "name", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	return nil
}
