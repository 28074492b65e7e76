package commands

import (
	"context"
	"fmt"
	"time"

	"Antenna/internal/cli/bootstrap"
	fsrepo "Antenna/internal/cli/repo/fs"
	"Antenna/internal/cli/service"
	"Antenna/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show the active account and cache state" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	appleID, err := activeAccount(cfg)
	if err != nil {
		return err
	}
	r, done, err := bootstrap.OpenRadarRepo(ctx, appleID)
	if err != nil {
		return err
	}
	defer done()
	cache := service.NewRadarCache(nil, r, service.WithAccount(fsrepo.PrefsFSStore{}, appleID))

	open, err := cache.RadarsWithOpenState(ctx, true)
	if err != nil {
		return err
	}
	closed, err := cache.RadarsWithOpenState(ctx, false)
	if err != nil {
		return err
	}
	last, ok, err := cache.LastSyncAt()
	if err != nil {
		return err
	}

	c := newClient(cfg, nil)
	defer c.Close()

	fmt.Fprintln(Out, "Account:", appleID)
	fmt.Fprintln(Out, "URL:    ", c.BaseURL())
	if ok {
		fmt.Fprintln(Out, "Synced: ", last.Local().Format(time.RFC3339))
	} else {
		fmt.Fprintln(Out, "Synced:  never")
	}
	fmt.Fprintf(Out, "Cached:  %d open, %d closed\n", len(open), len(closed))
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
