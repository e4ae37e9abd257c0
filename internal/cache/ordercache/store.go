// Пакет ordercache — слой снимков и overlay поверх кэш-порта.
// Кэш никогда не источник истины: любая ошибка (де)сериализации
// трактуется как промах, запись — best-effort.
package ordercache

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/metrics"
)

// Store — кэш заказов: детальные снимки, версионированные страницы списка
// и temp-overlay для ещё не закоммиченных записей.
type Store struct {
	kv  ports.KeyValueCache
	log ports.Logger

	detailTTL time.Duration // снимок заказа, ±10% джиттера
	listTTL   time.Duration // страница списка, ±10% джиттера
	tempTTL   time.Duration // overlay, короткий, без джиттера
}

// Config — TTL-ы слоя.
type Config struct {
	DetailTTL time.Duration
	ListTTL   time.Duration
	TempTTL   time.Duration
}

// NewStore — конструктор Store.
func NewStore(kv ports.KeyValueCache, log ports.Logger, cfg Config) *Store {
	return &Store{
		kv:        kv,
		log:       log,
		detailTTL: cfg.DetailTTL,
		listTTL:   cfg.ListTTL,
		tempTTL:   cfg.TempTTL,
	}
}

// ListVersion — текущая версия списка; 0, если кэш выключен или ключа нет.
func (s *Store) ListVersion(ctx context.Context) int64 {
	raw, ok := s.kv.Get(ctx, listVersionKey)
	if !ok {
		return 0
	}
	version, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return version
}

// Invalidate — инкремент версии списка (все страницы устаревают разом)
// и сброс детального снимка заказа, если id задан.
func (s *Store) Invalidate(ctx context.Context, orderID string) {
	version := s.kv.Incr(ctx, listVersionKey)
	metrics.ListVersion.Set(float64(version))
	metrics.CacheOps.WithLabelValues("invalidate").Inc()

	if orderID != "" {
		s.kv.DeleteMatching(ctx, detailKey(orderID))
	}
}

// GetDetail — детальный снимок заказа.
func (s *Store) GetDetail(ctx context.Context, orderID string) (*domain.Order, bool) {
	return s.getOrder(ctx, detailKey(orderID))
}

// SetDetail — записать детальный снимок с джиттером TTL,
// чтобы под равномерным трафиком снимки не истекали синхронно.
func (s *Store) SetDetail(ctx context.Context, order *domain.Order) {
	s.setJSON(ctx, detailKey(order.ID), order, jitteredTTL(s.detailTTL))
}

// GetOverlay — temp-снимок ещё не закоммиченной записи.
func (s *Store) GetOverlay(ctx context.Context, orderID string) (*domain.Order, bool) {
	order, ok := s.getOrder(ctx, tempKey(orderID))
	if ok {
		metrics.CacheOps.WithLabelValues("overlay_hit").Inc()
	}
	return order, ok
}

// SetOverlay — оптимистичный снимок записи, которая ещё едет через очередь.
// Короткий TTL: к его истечению воркер обычно уже применил job.
func (s *Store) SetOverlay(ctx context.Context, order *domain.Order) {
	s.setJSON(ctx, tempKey(order.ID), order, s.tempTTL)
}

// DeleteOverlay — убрать overlay (публикация job не удалась,
// оптимистичный снимок не должен остаться видимым).
func (s *Store) DeleteOverlay(ctx context.Context, orderID string) {
	s.kv.DeleteMatching(ctx, tempKey(orderID))
}

// GetList — страница списка под ключом (версия, пагинация).
func (s *Store) GetList(ctx context.Context, version int64, limit, offset int) (*domain.OrderPage, bool) {
	raw, ok := s.kv.Get(ctx, listKey(version, limit, offset))
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	var page domain.OrderPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.log.Warnf(ctx, "cache payload malformed key=%s err=%v", listKey(version, limit, offset), err)
		return nil, false
	}
	metrics.CacheOps.WithLabelValues("hit").Inc()
	return &page, true
}

// SetList — закэшировать страницу списка.
func (s *Store) SetList(ctx context.Context, version int64, limit, offset int, page *domain.OrderPage) {
	s.setJSON(ctx, listKey(version, limit, offset), page, jitteredTTL(s.listTTL))
}

// MergeStatus — влить ожидаемый статус в overlay и в детальный снимок
// (там, где они есть), чтобы GET сразу после PATCH/DELETE показывал
// ожидаемое состояние, а не протухшее. Возвращает последний видимый
// снимок заказа (nil, если в кэше его нигде нет).
func (s *Store) MergeStatus(ctx context.Context, orderID, status string) *domain.Order {
	var seen *domain.Order

	if overlay, ok := s.getOrder(ctx, tempKey(orderID)); ok {
		overlay.Status = status
		s.SetOverlay(ctx, overlay)
		seen = overlay
	}
	if detail, ok := s.getOrder(ctx, detailKey(orderID)); ok {
		detail.Status = status
		s.SetDetail(ctx, detail)
		if seen == nil {
			seen = detail
		}
	}
	return seen
}

// ----- вспомогательные -----

func (s *Store) getOrder(ctx context.Context, key string) (*domain.Order, bool) {
	raw, ok := s.kv.Get(ctx, key)
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		s.log.Warnf(ctx, "cache payload malformed key=%s err=%v", key, err)
		return nil, false
	}
	metrics.CacheOps.WithLabelValues("hit").Inc()
	return &order, true
}

func (s *Store) setJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warnf(ctx, "cache payload marshal failed key=%s err=%v", key, err)
		return
	}
	s.kv.SetWithTTL(ctx, key, raw, ttl)
	metrics.CacheOps.WithLabelValues("write").Inc()
}

// jitteredTTL — базовый TTL ± до 10% случайного разброса; защита от
// синхронного истечения множества ключей («thundering herd»).
func jitteredTTL(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	factor := 0.9 + rand.Float64()*0.2
	d := time.Duration(float64(base) * factor)
	if d < time.Second {
		d = time.Second
	}
	return d
}
