package noop

import (
	"context"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/ports"
)

// Проверка, что KV удовлетворяет порту KeyValueCache.
var _ ports.KeyValueCache = KV{}

// KV — выключенный кэш: всегда промах, все записи — no-op.
// Благодаря ему вызывающие слои нигде не ветвятся на «включён ли кэш»;
// счётчик версий при выключенном кэше читается как 0.
type KV struct{}

func (KV) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (KV) SetWithTTL(context.Context, string, []byte, time.Duration) {}

func (KV) Incr(context.Context, string) int64 { return 0 }

func (KV) DeleteMatching(context.Context, string) {}
