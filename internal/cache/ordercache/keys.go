package ordercache

import "fmt"

// Схема ключей. Версия списка входит в ключ страницы, поэтому
// инвалидация всех страниц — один атомарный Incr без перечисления ключей.
const (
	listVersionKey  = "orders:list:version"
	detailKeyPrefix = "orders:detail:"
	tempKeyPrefix   = "temp_order:"
)

func detailKey(orderID string) string { return detailKeyPrefix + orderID }

func tempKey(orderID string) string { return tempKeyPrefix + orderID }

func listKey(version int64, limit, offset int) string {
	return fmt.Sprintf("orders:list:%d:%d:%d", version, limit, offset)
}
