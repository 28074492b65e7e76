package repo

import (
	"context"
	"time"

	"Antenna/internal/cli/model"
)

// SectionBatch — полный список сводок одного раздела.
type SectionBatch struct {
	Section   string
	Open      bool
	Summaries []model.RadarSummary
}

// RadarRepository определяет порт доступа к локальному кэшу радаров.
type RadarRepository interface {
	// ApplySync одной транзакцией сохраняет все разделы и удаляет радары, которых в них нет.
	// Возвращает id новых или изменившихся радаров и id удалённых.
	// При ошибке кэш остаётся в прежнем состоянии.
	ApplySync(ctx context.Context, batches []SectionBatch, now time.Time) (updated, removed []int64, err error)

	// RadarsWithOpenState возвращает открытые (open=true) или закрытые радары.
	RadarsWithOpenState(ctx context.Context, open bool) ([]model.CachedRadar, error)

	// RadarsUpdatedSince возвращает радары, изменившиеся в кэше строго после since.
	RadarsUpdatedSince(ctx context.Context, since time.Time) ([]model.CachedRadar, error)

	Close() error
}
