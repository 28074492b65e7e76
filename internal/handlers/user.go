package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"Antenna/internal/config"
	"Antenna/internal/middleware"
	"Antenna/internal/service"
)

// UserHandler обрабатывает вход и выход.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

// Signin принимает форму appleId/accountPassword и выдаёт cookie сессии.
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	login := r.PostForm.Get("appleId")
	password := r.PostForm.Get("accountPassword")
	if login == "" || password == "" {
		http.Error(w, "appleId and accountPassword are required", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Login(r.Context(), login, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.Logger.Infow("signin rejected", "login", login)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Errorw("signin failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("cannot issue session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Signout сбрасывает cookie сессии.
func (h *UserHandler) Signout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
