package handlers

import (
	"Antenna/internal/config"
	"Antenna/internal/middleware"
	"Antenna/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров заглушки bugreporter
func NewHandler(
	userService *service.UserService,
	radarService *service.RadarService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	radarHandler := NewRadarHandler(radarService, logger, config)

	// Вход и выход
	r.Post("/signin", userHandler.Signin)
	r.Post("/signout", userHandler.Signout)

	// Страница с CSRF-токеном и сводки
	r.With(middleware.RequireSession).Get("/problem", radarHandler.Landing)
	r.With(middleware.RequireCSRF(config.AuthSecret)).Get("/problem/summaries", radarHandler.Summaries)

	return &Handler{Router: r}
}
