package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"Antenna/internal/cli/api"
	"Antenna/internal/cli/apperr"
	"Antenna/internal/cli/model"
	"Antenna/internal/cli/repo"
)

// AuthDelegate выполняет собственно аутентификацию по запросу клиента.
// ctx отменяется при Close клиента. Cookie сессии должны оказаться в client.Session().
type AuthDelegate interface {
	Authenticate(ctx context.Context, c *Client) (model.AuthResult, error)
}

// AuthDelegateFunc позволяет использовать функцию как AuthDelegate.
type AuthDelegateFunc func(ctx context.Context, c *Client) (model.AuthResult, error)

// Authenticate реализует AuthDelegate.
func (f AuthDelegateFunc) Authenticate(ctx context.Context, c *Client) (model.AuthResult, error) {
	return f(ctx, c)
}

// Observer получает события входа конкретного клиента.
type Observer interface {
	LoginSucceeded(res model.AuthResult)
	LoginFailed(err error)
}

// ObserverFuncs — Observer из пары функций; nil-функции пропускаются.
type ObserverFuncs struct {
	OnSuccess func(model.AuthResult)
	OnFailure func(error)
}

// LoginSucceeded реализует Observer.
func (o ObserverFuncs) LoginSucceeded(res model.AuthResult) {
	if o.OnSuccess != nil {
		o.OnSuccess(res)
	}
}

// LoginFailed реализует Observer.
func (o ObserverFuncs) LoginFailed(err error) {
	if o.OnFailure != nil {
		o.OnFailure(err)
	}
}

// FormAuthenticator входит через форму: POST /signin, затем читает CSRF-токен со страницы /problem.
type FormAuthenticator struct{}

// Authenticate реализует AuthDelegate.
func (FormAuthenticator) Authenticate(ctx context.Context, c *Client) (model.AuthResult, error) {
	const op = "login"
	if c.Preferences() == nil {
		return model.AuthResult{}, apperr.New(op, apperr.AuthenticationRequired, repo.ErrNoCredentials)
	}
	cr, err := c.Preferences().Credentials()
	if err != nil {
		return model.AuthResult{}, apperr.New(op, apperr.AuthenticationRequired, err)
	}

	s := c.Session()
	// старые cookie могут принадлежать другой учётной записи
	s.ResetCookies()

	resp, err := s.PostForm(ctx, SigninPath, map[string]string{
		"appleId":         cr.AppleID,
		"accountPassword": cr.Password,
	})
	if err != nil {
		return model.AuthResult{}, api.TransportError(op, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		e := api.StatusError(op, resp)
		e.Code = apperr.AuthenticationFailed
		return model.AuthResult{}, e
	}
	if !resp.OK() {
		return model.AuthResult{}, api.StatusError(op, resp)
	}

	resp, err = s.Get(ctx, LandingPath, nil, map[string]string{"Accept": "text/html"})
	if err != nil {
		return model.AuthResult{}, api.TransportError(op, err)
	}
	if !resp.OK() {
		e := api.StatusError(op, resp)
		if resp.StatusCode == http.StatusUnauthorized {
			e.Code = apperr.AuthenticationFailed
		}
		return model.AuthResult{}, e
	}
	token, err := ExtractCSRFToken(resp.Body)
	if err != nil {
		return model.AuthResult{}, apperr.New(op, apperr.AuthenticationFailed, err)
	}
	return model.AuthResult{CSRFToken: token}, nil
}

// ErrNoCSRFToken — на странице нет CSRF-токена.
var ErrNoCSRFToken = errors.New("csrf token not found in page")

// ExtractCSRFToken достаёт токен из <meta name="csrf-token"> или скрытого поля csrftokencheck.
func ExtractCSRFToken(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(doc.Find(`meta[name="csrf-token"]`).First().AttrOr("content", "")); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(doc.Find(`input[name="` + CSRFHeader + `"]`).First().AttrOr("value", "")); v != "" {
		return v, nil
	}
	return "", ErrNoCSRFToken
}
