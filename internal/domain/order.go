package domain

import "time"

// Статусы заказа. Набор открытый: в БД статус хранится строкой,
// PATCH может принести значение вне этого списка.
const (
	StatusReceived   = "received"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"

	// StatusDeleting — «надгробие»: заказ ещё есть в БД,
	// но job на удаление уже поставлен в очередь.
	StatusDeleting = "deleting"
)

// Item — позиция заказа. Живёт только внутри Order
// и удаляется каскадно вместе с ним.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order — заказ. ID назначается продюсером (API) до постановки job
// в очередь, а не базой; CreatedAt выставляет БД при коммите.
// До коммита в overlay-снимке лежит предварительное время.
type Order struct {
	ID           string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Items        []Item    `json:"items"`
}

// Clone — копия заказа, чтобы внешние изменения не отражались
// на данных внутри кэша/overlay.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cloned := *o
	if o.Items != nil {
		cloned.Items = append([]Item(nil), o.Items...)
	}
	return &cloned
}
