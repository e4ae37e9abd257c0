// Пакет migrations — встроенные goose-миграции схемы заказов.
// Их применяет воркер на старте (cmd/worker) и интеграционные тесты.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
