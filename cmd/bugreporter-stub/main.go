package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Antenna/internal/config"
	"Antenna/internal/handlers"
	"Antenna/internal/logger"
	"Antenna/internal/middleware"
	"Antenna/internal/repo"
	"Antenna/internal/service"
)

func main() {
	cfg := config.NewConfig()

	sugar := logger.New(cfg.LogLevel, nil)
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() { _ = sugar.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	radarService := service.NewRadarService(repo.NewRadarRepository(gormDB), sugar)

	if cfg.SeedUser != "" {
		if err := seed(ctx, userService, radarService, cfg.SeedUser, cfg.SeedPassword); err != nil {
			sugar.Fatalw("failed to seed user", "user", cfg.SeedUser, "error", err)
		}
	}

	h := handlers.NewHandler(userService, radarService, sugar, cfg)

	addr := cfg.BaseURL
	sugar.Infow("Starting bugreporter stub",
		"addr", addr,
		"url", cfg.ServerURL,
		"EnableHTTPS", cfg.EnableHTTPS,
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("shutdown failed", "error", err)
		}
	}()

	if cfg.EnableHTTPS {
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("server stopped")
}

// seed создаёт пользователя и наполняет его разделы демо-радарами.
func seed(ctx context.Context, users *service.UserService, radars *service.RadarService, login, password string) error {
	u, err := users.EnsureUser(ctx, login, password)
	if err != nil {
		return err
	}
	return radars.SeedSample(ctx, u.ID)
}
