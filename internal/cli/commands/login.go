package commands

import (
	"context"
	"fmt"

	"Antenna/internal/cli/client"
	"Antenna/internal/cli/repo"
	fsrepo "Antenna/internal/cli/repo/fs"
	"Antenna/internal/cli/service"
	"Antenna/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Sign in and remember the account" }
func (loginCmd) Usage() string       { return "login [<apple-id> <password>]" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		// проверяем уже настроенные учётные данные
		c, err := loggedInClient(ctx, cfg)
		if err != nil {
			return err
		}
		c.Close()
		fmt.Fprintln(Out, "Logged in successfully")
		return nil
	case 2:
		svc := service.NewAuthService(fsrepo.PrefsFSStore{})
		cr := repo.Credentials{AppleID: args[0], Password: args[1]}
		_, err := svc.Login(ctx, cr, func(p repo.Preferences) *client.Client { return newClient(cfg, p) })
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Logged in as %s\n", cr.AppleID)
		return nil
	default:
		return ErrUsage
	}
}

func init() { RegisterCmd(loginCmd{}) }
