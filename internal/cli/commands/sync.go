package commands

import (
	"context"
	"fmt"

	"Antenna/internal/cli/bootstrap"
	fsrepo "Antenna/internal/cli/repo/fs"
	"Antenna/internal/cli/service"
	"Antenna/internal/config"
)

type syncCmd struct{}

func (syncCmd) Name() string { return "sync" }
func (syncCmd) Description() string {
	return "Синхронизировать локальный кэш радаров (Open и Closed)"
}
func (syncCmd) Usage() string { return "sync" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	appleID, err := activeAccount(cfg)
	if err != nil {
		return err
	}
	c, err := loggedInClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	r, done, err := bootstrap.OpenRadarRepo(ctx, appleID)
	if err != nil {
		return err
	}
	defer done()

	cache := service.NewRadarCache(c, r,
		service.WithAccount(fsrepo.PrefsFSStore{}, appleID),
		service.WithCacheLogger(Logger),
	)
	fmt.Fprintln(Out, "→ Синхронизация кэша…")
	res, err := cache.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Обновлено: %d, удалено: %d\n", len(res.Updated), len(res.Removed))
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
