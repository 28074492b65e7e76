package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"Antenna/internal/cli/apperr"
)

// DefaultTimeout — таймаут запроса, если в конфиге не задан другой.
const DefaultTimeout = 30 * time.Second

// Response — минимальный ответ сервера.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Session — HTTP-сессия к одному origin: общий cookie jar, таймаут, базовый URL.
type Session struct {
	client  *resty.Client
	jar     *resettableJar
	baseURL string
}

// NewSession создаёт сессию к baseURL поверх resty.
func NewSession(baseURL string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetTimeout(timeout)
	// jar ставится один раз: http.Client читает его без синхронизации
	jar := &resettableJar{jar: newJar()}
	c.SetCookieJar(jar)
	c.SetHeader("User-Agent", "Antenna/1.0")
	return &Session{client: c, jar: jar, baseURL: strings.TrimRight(baseURL, "/")}
}

func newJar() http.CookieJar {
	// cookiejar.New не возвращает ошибку при nil options
	jar, _ := cookiejar.New(nil)
	return jar
}

// resettableJar — cookie jar, содержимое которого можно сбросить при идущих запросах.
type resettableJar struct {
	mu  sync.RWMutex
	jar http.CookieJar
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	inner := j.jar
	j.mu.RUnlock()
	inner.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	inner := j.jar
	j.mu.RUnlock()
	return inner.Cookies(u)
}

func (j *resettableJar) reset() {
	j.mu.Lock()
	j.jar = newJar()
	j.mu.Unlock()
}

// BaseURL возвращает базовый URL сессии.
func (s *Session) BaseURL() string { return s.baseURL }

// PostForm отправляет application/x-www-form-urlencoded на path.
func (s *Session) PostForm(ctx context.Context, path string, form map[string]string) (*Response, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		return nil, err
	}
	return adapt(resp), nil
}

// Get выполняет GET path с параметрами запроса и заголовками.
func (s *Session) Get(ctx context.Context, path string, query, headers map[string]string) (*Response, error) {
	req := s.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	return adapt(resp), nil
}

// Cookies возвращает cookie, которые сессия отправит на базовый URL.
func (s *Session) Cookies() []*http.Cookie {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil
	}
	return s.jar.Cookies(u)
}

// ResetCookies сбрасывает все cookie сессии. Безопасен при параллельных запросах:
// уже идущие запросы дописывают cookie в прежний jar.
func (s *Session) ResetCookies() {
	s.jar.reset()
}

func adapt(r *resty.Response) *Response {
	return &Response{StatusCode: r.StatusCode(), Header: r.Header(), Body: r.Body()}
}

// TransportError переводит ошибку транспорта в ошибку клиента.
func TransportError(op string, err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, context.Canceled):
		return apperr.New(op, apperr.RequestCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.New(op, apperr.TimedOut, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return apperr.New(op, apperr.TimedOut, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.New(op, apperr.NetworkUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return apperr.New(op, apperr.NetworkUnavailable, err)
	}
	return apperr.New(op, apperr.ConnectionLost, err)
}

// StatusError переводит не-2xx ответ в ошибку клиента.
func StatusError(op string, resp *Response) *apperr.Error {
	code := apperr.Unknown
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = apperr.AuthenticationFailed
	case http.StatusForbidden:
		code = apperr.PermissionDenied
	case http.StatusNotFound:
		code = apperr.ResourceNotFound
	case http.StatusConflict:
		code = apperr.RequestConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = apperr.InvalidRequest
	}
	var cause error
	if msg := strings.TrimSpace(string(resp.Body)); msg != "" {
		if len(msg) > 200 {
			msg = msg[:200]
		}
		cause = errors.New(msg)
	}
	return apperr.WithStatus(op, code, resp.StatusCode, cause)
}

// OK сообщает, что статус ответа 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
