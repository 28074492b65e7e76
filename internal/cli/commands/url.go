package commands

import (
	"context"
	"fmt"

	"Antenna/internal/config"
)

type urlCmd struct{}

func (urlCmd) Name() string        { return "url" }
func (urlCmd) Description() string { return "Print the bugreporter base URL" }
func (urlCmd) Usage() string       { return "url" }

func (urlCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c := newClient(cfg, nil)
	defer c.Close()
	fmt.Fprintln(Out, c.BaseURL())
	return nil
}

func init() { RegisterCmd(urlCmd{}) }
