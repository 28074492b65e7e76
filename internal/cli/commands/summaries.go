package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"Antenna/internal/cli/model"
	"Antenna/internal/config"
)

type summariesCmd struct{}

func (summariesCmd) Name() string        { return "summaries" }
func (summariesCmd) Description() string { return "Fetch radar summaries of a section (e.g. Open, Closed)" }
func (summariesCmd) Usage() string       { return "summaries <section>" }

type summariesResult struct {
	list []model.RadarSummary
	err  error
}

func (summariesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return ErrUsage
	}
	c, err := loggedInClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	resCh := make(chan summariesResult, 1)
	c.RequestSummaries(ctx, args[0], func(list []model.RadarSummary, err error) {
		resCh <- summariesResult{list: list, err: err}
	})
	res := <-resCh
	if res.err != nil {
		return res.err
	}
	printSummaries(Out, res.list)
	return nil
}

func printSummaries(w io.Writer, list []model.RadarSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "(no radars)")
		return
	}
	for _, s := range list {
		flag := " "
		if s.RequiresAttention {
			flag = "!"
		}
		fmt.Fprintf(w, "%s %-10d %-14s %s\n", flag, s.ID, s.StateName, s.Title)
	}
}

func init() { RegisterCmd(summariesCmd{}) }
