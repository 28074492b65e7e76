package service

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Antenna/internal/cli/apperr"
	"Antenna/internal/cli/model"
	"Antenna/internal/cli/observer"
	"Antenna/internal/cli/repo"
)

// Разделы, которые синхронизирует кэш.
const (
	SectionOpen   = "Open"
	SectionClosed = "Closed"
)

var syncSections = []struct {
	name string
	open bool
}{
	{SectionOpen, true},
	{SectionClosed, false},
}

// SummariesSource отдаёт все сводки раздела (в приложении это *client.Client).
type SummariesSource interface {
	Summaries(ctx context.Context, section string) ([]model.RadarSummary, error)
}

// CacheObserver получает id обновлённых и удалённых радаров после синхронизации.
// Актуальное состояние следует читать из кэша.
type CacheObserver interface {
	RadarsUpdated(updated, removed []int64)
}

// CacheObserverFunc позволяет использовать функцию как CacheObserver.
type CacheObserverFunc func(updated, removed []int64)

// RadarsUpdated реализует CacheObserver.
func (f CacheObserverFunc) RadarsUpdated(updated, removed []int64) { f(updated, removed) }

// SyncResult — итог одной синхронизации.
type SyncResult struct {
	Updated []int64
	Removed []int64
	At      time.Time
}

// RadarCache синхронизирует локальный кэш радаров с bugreporter.
type RadarCache struct {
	src       SummariesSource
	repo      repo.RadarRepository
	accounts  repo.AccountStore
	appleID   string
	logger    *zap.SugaredLogger
	observers *observer.Set[CacheObserver]
	now       func() time.Time

	mu sync.Mutex // одна синхронизация за раз
}

// CacheOption настраивает RadarCache.
type CacheOption func(*RadarCache)

// WithAccount включает запись времени последней синхронизации для appleID.
func WithAccount(store repo.AccountStore, appleID string) CacheOption {
	return func(c *RadarCache) {
		c.accounts = store
		c.appleID = appleID
	}
}

// WithCacheLogger задаёт логгер.
func WithCacheLogger(l *zap.SugaredLogger) CacheOption {
	return func(c *RadarCache) { c.logger = l }
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) CacheOption {
	return func(c *RadarCache) { c.now = now }
}

// NewRadarCache создаёт кэш поверх источника сводок и репозитория.
func NewRadarCache(src SummariesSource, r repo.RadarRepository, opts ...CacheOption) *RadarCache {
	c := &RadarCache{
		src:       src,
		repo:      r,
		logger:    zap.NewNop().Sugar(),
		observers: observer.NewSet[CacheObserver](),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AddObserver регистрирует наблюдателя кэша.
func (c *RadarCache) AddObserver(o CacheObserver) string { return c.observers.Add(o) }

// RemoveObserver снимает наблюдателя кэша.
func (c *RadarCache) RemoveObserver(id string) { c.observers.Remove(id) }

// Sync параллельно загружает разделы Open и Closed, сохраняет их и удаляет радары,
// которых сервер больше не возвращает. При ошибке загрузки кэш не меняется.
func (c *RadarCache) Sync(ctx context.Context) (SyncResult, error) {
	const op = "sync"
	c.mu.Lock()
	defer c.mu.Unlock()

	fetched := make([][]model.RadarSummary, len(syncSections))
	g, gctx := errgroup.WithContext(ctx)
	for i, sec := range syncSections {
		i, sec := i, sec
		g.Go(func() error {
			list, err := c.src.Summaries(gctx, sec.name)
			if err != nil {
				return err
			}
			fetched[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warnw("sync fetch failed", "error", err)
		return SyncResult{}, err
	}

	now := c.now()
	batches := make([]repo.SectionBatch, len(syncSections))
	for i, sec := range syncSections {
		batches[i] = repo.SectionBatch{Section: sec.name, Open: sec.open, Summaries: fetched[i]}
	}
	// запись всех разделов и удаление атомарны: при ошибке кэш остаётся прежним
	updated, removed, err := c.repo.ApplySync(ctx, batches, now)
	if err != nil {
		return SyncResult{}, apperr.New(op, apperr.StorageFailure, err)
	}
	updated = uniqueSorted(updated)

	if c.accounts != nil && c.appleID != "" {
		if err := c.accounts.SaveLastSyncAt(c.appleID, now.UTC().Format(time.RFC3339Nano)); err != nil {
			// кэш уже обновлён, поэтому только предупреждаем
			c.logger.Warnw("save last sync time", "error", err)
		}
	}
	c.logger.Infow("sync finished", "updated", len(updated), "removed", len(removed))

	if len(updated) > 0 || len(removed) > 0 {
		c.observers.Each(func(o CacheObserver) { o.RadarsUpdated(updated, removed) })
	}
	return SyncResult{Updated: updated, Removed: removed, At: now}, nil
}

// LastSyncAt возвращает время последней успешной синхронизации; ok=false, если её не было.
func (c *RadarCache) LastSyncAt() (time.Time, bool, error) {
	if c.accounts == nil || c.appleID == "" {
		return time.Time{}, false, nil
	}
	raw, err := c.accounts.LoadLastSyncAt(c.appleID)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && raw == "") {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, apperr.New("last sync", apperr.StorageFailure, err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, apperr.New("last sync", apperr.StorageFailure, err)
	}
	return t, true, nil
}

// RadarsWithOpenState возвращает открытые или закрытые радары из кэша.
func (c *RadarCache) RadarsWithOpenState(ctx context.Context, open bool) ([]model.CachedRadar, error) {
	list, err := c.repo.RadarsWithOpenState(ctx, open)
	if err != nil {
		return nil, apperr.New("radars", apperr.StorageFailure, err)
	}
	return list, nil
}

// RadarsUpdatedSince возвращает радары, обновлённые в кэше после since.
func (c *RadarCache) RadarsUpdatedSince(ctx context.Context, since time.Time) ([]model.CachedRadar, error) {
	list, err := c.repo.RadarsUpdatedSince(ctx, since)
	if err != nil {
		return nil, apperr.New("radars", apperr.StorageFailure, err)
	}
	return list, nil
}

func uniqueSorted(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if n := len(out); n > 0 && out[n-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ErrNoAccount — аккаунт для кэша не выбран.
var ErrNoAccount = errors.New("no active account: run login first")
