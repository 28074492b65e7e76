package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Antenna/internal/cli/bootstrap"
	"Antenna/internal/cli/model"
	"Antenna/internal/cli/service"
	"Antenna/internal/config"
)

type radarsCmd struct{}

func (radarsCmd) Name() string        { return "radars" }
func (radarsCmd) Description() string { return "List cached radars (no network)" }
func (radarsCmd) Usage() string       { return "radars [open|closed|since <RFC3339>]" }

func (radarsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	mode := "open"
	if len(args) > 0 {
		mode = strings.ToLower(args[0])
	}
	var since time.Time
	switch {
	case (mode == "open" || mode == "closed") && len(args) <= 1:
	case mode == "since" && len(args) == 2:
		t, err := time.Parse(time.RFC3339, args[1])
		if err != nil {
			return ErrUsage
		}
		since = t
	default:
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
	cache := service.NewRadarCache(nil, r)

	var list []model.CachedRadar
	switch mode {
	case "since":
		list, err = cache.RadarsUpdatedSince(ctx, since)
	default:
		list, err = cache.RadarsWithOpenState(ctx, mode == "open")
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "(no radars)")
		return nil
	}
	for _, it := range list {
		fmt.Fprintf(Out, "%-10d %-8s %-14s %s\n", it.ID, it.Section, it.StateName, it.Title)
	}
	return nil
}

func init() { RegisterCmd(radarsCmd{}) }
