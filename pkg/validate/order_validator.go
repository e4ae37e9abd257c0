package validate

import (
	"errors"
	"fmt"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

// ErrInvalidInput — базовая (sentinel error) ошибка валидации ввода.
// HTTP-слой превращает её в 400 до того, как какой-либо job попадёт в очередь.
var ErrInvalidInput = errors.New("invalid order input")

// NewOrder — проверяет ввод на создание заказа: непустое имя клиента
// и хотя бы одна позиция с положительным количеством.
func NewOrder(req *domain.NewOrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request must include 'customer_name' and 'items'", ErrInvalidInput)
	}
	if req.CustomerName == "" {
		return fmt.Errorf("%w: 'customer_name' is required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: 'items' must be a non-empty list", ErrInvalidInput)
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return fmt.Errorf("%w: items[%d] requires 'name'", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d] quantity must be greater than zero", ErrInvalidInput, i)
		}
	}
	return nil
}

// Status — проверяет новый статус заказа. Набор статусов открытый,
// требуется только непустая строка.
func Status(status string) error {
	if status == "" {
		return fmt.Errorf("%w: 'status' is required", ErrInvalidInput)
	}
	return nil
}
