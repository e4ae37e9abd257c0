//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// Мини-генератор валидного заказа.
func MakeOrder(opts ...func(*domain.Order)) domain.Order {
	o := domain.Order{
		ID:           "ord-" + UniqSuffix(),
		CustomerName: "John Smith",
		Status:       domain.StatusReceived,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Items: []domain.Item{
			{Name: "Widget", Quantity: 1},
		},
	}

	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func WithOrderID(id string) func(*domain.Order) {
	return func(o *domain.Order) { o.ID = id }
}

func WithCustomer(name string) func(*domain.Order) {
	return func(o *domain.Order) { o.CustomerName = name }
}

func WithStatus(status string) func(*domain.Order) {
	return func(o *domain.Order) { o.Status = status }
}

func WithItems(n int) func(*domain.Order) {
	return func(o *domain.Order) {
		o.Items = make([]domain.Item, 0, n)
		for i := 0; i < n; i++ {
			o.Items = append(o.Items, domain.Item{
				Name:     "Item-" + UniqSuffix(),
				Quantity: i + 1,
			})
		}
	}
}

// MakeNewOrderRequest — валидный ввод POST /orders.
func MakeNewOrderRequest() domain.NewOrderRequest {
	return domain.NewOrderRequest{
		CustomerName: "Jane Doe",
		Items: []domain.Item{
			{Name: "Widget", Quantity: 2},
		},
	}
}
