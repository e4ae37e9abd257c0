package usecase

import "errors"

// ErrOrderNotFound — заказ не видел ни overlay, ни кэш, ни БД.
// HTTP-слой превращает её в 404.
var ErrOrderNotFound = errors.New("order not found")
