package domain

// NewOrderRequest — провалидированный ввод на создание заказа.
type NewOrderRequest struct {
	CustomerName string `json:"customer_name"`
	Items        []Item `json:"items"`
}

// WriteReceipt — квитанция «принято в очередь». Никогда не несёт
// финального состояния: коммит асинхронный.
type WriteReceipt struct {
	JobID   string  `json:"job_id"`
	JobType JobType `json:"job_type"`
	Status  string  `json:"status"`
	OrderID string  `json:"order_id"`
	Message string  `json:"message"`
}

// OrderPage — страница списка заказов (ответ GET /orders).
type OrderPage struct {
	Count      int      `json:"count"`
	NextOffset int      `json:"next_offset"`
	Orders     []*Order `json:"orders"`
}
