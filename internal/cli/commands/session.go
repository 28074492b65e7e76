package commands

import (
	"context"
	"strings"

	"Antenna/internal/cli/client"
	"Antenna/internal/cli/repo"
	fsrepo "Antenna/internal/cli/repo/fs"
	"Antenna/internal/cli/service"
	"Antenna/internal/config"
)

// newClient строит клиент по конфигу поверх prefs.
func newClient(cfg *config.Config, prefs repo.Preferences) *client.Client {
	opts := []client.Option{client.WithTimeout(cfg.RequestTimeout), client.WithLogger(Logger)}
	if cfg.BugreporterURL != "" {
		opts = append(opts, client.WithBaseURL(cfg.BugreporterURL))
	}
	return client.New(prefs, opts...)
}

// preferences: учётные данные из env/флагов важнее сохранённых.
func preferences(cfg *config.Config) repo.Preferences {
	return repo.Chain{
		repo.StaticPreferences{AppleID: cfg.AppleID, Password: cfg.ApplePassword},
		fsrepo.PrefsFSStore{},
	}
}

// activeAccount возвращает Apple ID из конфига или сохранённый при login.
func activeAccount(cfg *config.Config) (string, error) {
	if id := strings.TrimSpace(cfg.AppleID); id != "" {
		return id, nil
	}
	return service.NewAuthService(fsrepo.PrefsFSStore{}).CurrentAccount()
}

// loggedInClient выполняет вход и возвращает готовый клиент. Клиент нужно закрыть.
func loggedInClient(ctx context.Context, cfg *config.Config) (*client.Client, error) {
	c := newClient(cfg, preferences(cfg))
	out := <-c.Login(ctx)
	if out.Err != nil {
		c.Close()
		return nil, out.Err
	}
	return c, nil
}
