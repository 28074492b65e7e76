package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName — имя cookie сессии.
const CookieName = "auth_token"

const sessionTTL = 24 * time.Hour

// Claims — содержимое JWT сессии.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	SessionID string `json:"sid"`
}

// Session — сессия пользователя из cookie.
type Session struct {
	UserID int64
	ID     string
}

type ctxKey struct{}

// SetLoginCookie выдаёт новую сессию пользователю и ставит cookie.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		UserID:    userID,
		SessionID: uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(sessionTTL),
	})
	return nil
}

// ClearLoginCookie удаляет cookie сессии.
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func parseClaims(token, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 || claims.SessionID == "" {
		return nil, errors.New("incomplete session claims")
	}
	return claims, nil
}

// WithAuth кладёт сессию из валидной cookie в контекст. Без cookie запрос проходит анонимно.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := parseClaims(c.Value, secret)
			if err != nil {
				sugar.Debugw("invalid session cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, Session{UserID: claims.UserID, ID: claims.SessionID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession отвечает 401, если в контексте нет сессии.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext возвращает сессию запроса.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// GetUserIDFromContext возвращает id пользователя сессии.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	s, ok := GetSessionFromContext(ctx)
	return s.UserID, ok
}
