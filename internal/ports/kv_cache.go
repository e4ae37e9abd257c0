package ports

import (
	"context"
	"time"
)

// KeyValueCache — порт кэша (best-effort, не источник истины).
// Требования к реализации: каждая операция soft-fail — ошибки соединения,
// таймауты и прочее логируются и превращаются в промах/no-op,
// в путь запроса они не попадают никогда.
type KeyValueCache interface {
	// Get — вернуть значение по ключу; (nil, false) при промахе/ошибке.
	Get(ctx context.Context, key string) ([]byte, bool)

	// SetWithTTL — записать значение с TTL; ttl <= 0 — no-op.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Incr — атомарный инкремент счётчика; 0 при ошибке/отключённом кэше.
	Incr(ctx context.Context, key string) int64

	// DeleteMatching — удалить ключи по glob-шаблону (например "orders:detail:*").
	DeleteMatching(ctx context.Context, pattern string)
}
