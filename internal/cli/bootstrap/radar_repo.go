package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"Antenna/internal/cli/repo"
	reposqlite "Antenna/internal/cli/repo/sqlite"
)

// OpenRadarRepo открывает кэш радаров для appleID, выполняет миграции и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenRadarRepo(ctx context.Context, appleID string) (repo.RadarRepository, func() error, error) {
	if appleID == "" {
		return nil, nil, errors.New("нет активного аккаунта: выполните login")
	}
	r, _, err := reposqlite.OpenForAccount(appleID)
	if err != nil {
		return nil, nil, fmt.Errorf("open radar cache: %w", err)
	}
	if err := r.Migrate(ctx); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("migrate radar cache: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}
