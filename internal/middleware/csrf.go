package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// CSRFHeader — заголовок, в котором клиент возвращает CSRF-токен.
const CSRFHeader = "csrftokencheck"

type csrfClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// IssueCSRFToken подписывает CSRF-токен, привязанный к сессии.
func IssueCSRFToken(sessionID, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, csrfClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "csrf"},
		SessionID:        sessionID,
	}).SignedString([]byte(secret))
}

// VerifyCSRFToken проверяет, что токен выдан для sessionID.
func VerifyCSRFToken(token, sessionID, secret string) error {
	claims := &csrfClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject("csrf"))
	if err != nil {
		return err
	}
	if claims.SessionID != sessionID {
		return errors.New("csrf token belongs to another session")
	}
	return nil
}

// RequireCSRF пропускает только запросы сессии с верным токеном в заголовке csrftokencheck.
// Нет сессии — 401, неверный токен — 403.
func RequireCSRF(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := VerifyCSRFToken(r.Header.Get(CSRFHeader), s.ID, secret); err != nil {
				sugar.Debugw("csrf check failed", "user_id", s.UserID, "error", err)
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
