// Package client — сетевой клиент bugreporter: вход, CSRF-токен и получение сводок по разделам.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"Antenna/internal/cli/api"
	"Antenna/internal/cli/apperr"
	"Antenna/internal/cli/model"
	"Antenna/internal/cli/observer"
	"Antenna/internal/cli/repo"
)

const bugreporterURL = "https://bugreport.apple.com"

// Пути и параметры веб-интерфейса bugreporter.
const (
	SigninPath    = "/signin"
	LandingPath   = "/problem"
	SummariesPath = "/problem/summaries"
	CSRFHeader    = "csrftokencheck"

	defaultPageSize = 100
	// maxSectionRows ограничивает раздел, чтобы сервер не мог растягивать пагинацию бесконечно.
	maxSectionRows = 100_000
)

// BugreporterURL возвращает фиксированный адрес сервиса.
func BugreporterURL() string { return bugreporterURL }

// State — состояние аутентификации клиента.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// LoginOutcome — итог Login: либо результат, либо ошибка.
type LoginOutcome struct {
	Result model.AuthResult
	Err    error
}

// SummariesCompletion получает либо сводки (err == nil), либо ошибку (summaries == nil).
type SummariesCompletion func(summaries []model.RadarSummary, err error)

// authSession — текущий токен. ready закрывается после уведомления наблюдателей об успешном входе.
type authSession struct {
	result model.AuthResult
	ready  chan struct{}
}

// Client — аутентифицированная HTTP-сессия к bugreporter.
type Client struct {
	prefs     repo.Preferences
	session   *api.Session
	delegate  AuthDelegate
	logger    *zap.SugaredLogger
	observers *observer.Set[Observer]
	pageSize  int
	maxRows   int

	mu      sync.RWMutex
	state   State
	current *authSession
	last    model.AuthResult

	logins singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
}

type options struct {
	baseURL  string
	timeout  time.Duration
	logger   *zap.SugaredLogger
	delegate AuthDelegate
	pageSize int
}

// Option настраивает Client.
type Option func(*options)

// WithBaseURL задаёт другой адрес сервиса (например, локальную заглушку).
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = u } }

// WithTimeout задаёт таймаут одного HTTP-запроса.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithLogger задаёт логгер.
func WithLogger(l *zap.SugaredLogger) Option { return func(o *options) { o.logger = l } }

// WithAuthDelegate задаёт делегата аутентификации вместо FormAuthenticator.
func WithAuthDelegate(d AuthDelegate) Option { return func(o *options) { o.delegate = d } }

// WithPageSize задаёт размер страницы при загрузке сводок.
func WithPageSize(n int) Option { return func(o *options) { o.pageSize = n } }

// New создаёт клиент, привязанный к prefs. Сетевых запросов не делает.
func New(prefs repo.Preferences, opts ...Option) *Client {
	o := options{baseURL: BugreporterURL(), pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	if o.delegate == nil {
		o.delegate = FormAuthenticator{}
	}
	if o.pageSize <= 0 {
		o.pageSize = defaultPageSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		prefs:     prefs,
		session:   api.NewSession(o.baseURL, o.timeout),
		delegate:  o.delegate,
		logger:    o.logger,
		observers: observer.NewSet[Observer](),
		pageSize:  o.pageSize,
		maxRows:   maxSectionRows,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Preferences возвращает настройки, с которыми создан клиент.
func (c *Client) Preferences() repo.Preferences { return c.prefs }

// Session возвращает HTTP-сессию клиента (cookie jar общий для входа и запросов).
func (c *Client) Session() *api.Session { return c.session }

// BaseURL возвращает фактический адрес сервиса.
func (c *Client) BaseURL() string { return c.session.BaseURL() }

// Authenticated сообщает, держит ли клиент действующий CSRF-токен.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// State возвращает текущее состояние аутентификации.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AuthResult возвращает действующий результат входа, если он есть.
func (c *Client) AuthResult() (model.AuthResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return model.AuthResult{}, false
	}
	return c.current.result, true
}

// LastAuthResult возвращает результат последнего успешного входа,
// даже если токен с тех пор признан недействительным.
func (c *Client) LastAuthResult() model.AuthResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// AddObserver регистрирует наблюдателя событий входа. Возвращает дескриптор для RemoveObserver.
func (c *Client) AddObserver(o Observer) string { return c.observers.Add(o) }

// RemoveObserver снимает наблюдателя.
func (c *Client) RemoveObserver(id string) { c.observers.Remove(id) }

// Close отменяет все незавершённые запросы клиента. Повторный вызов безопасен.
func (c *Client) Close() {
	c.cancel()
}

// Login запускает вход и сразу возвращает канал с итогом.
// Параллельные вызовы сливаются в одну попытку; каждый вызывающий получает её итог.
// ctx ограничивает только ожидание: сама попытка живёт до Close.
func (c *Client) Login(ctx context.Context) <-chan LoginOutcome {
	out := make(chan LoginOutcome, 1)
	if err := c.ctx.Err(); err != nil {
		out <- LoginOutcome{Err: apperr.New("login", apperr.RequestCancelled, err)}
		return out
	}
	ch := c.logins.DoChan("login", func() (any, error) {
		return c.performLogin()
	})
	go func() {
		select {
		case r := <-ch:
			if r.Err != nil {
				out <- LoginOutcome{Err: r.Err}
				return
			}
			out <- LoginOutcome{Result: r.Val.(model.AuthResult)}
		case <-ctx.Done():
			out <- LoginOutcome{Err: apperr.New("login", apperr.RequestCancelled, ctx.Err())}
		}
	}()
	return out
}

func (c *Client) performLogin() (model.AuthResult, error) {
	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()
	c.logger.Infow("login started", "url", c.BaseURL())

	res, err := c.delegate.Authenticate(c.ctx, c)
	if err == nil && strings.TrimSpace(res.CSRFToken) == "" {
		err = apperr.New("login", apperr.AuthenticationFailed, errors.New("server returned empty csrf token"))
	}
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			err = apperr.New("login", apperr.AuthenticationFailed, err)
		}
		c.mu.Lock()
		c.current = nil
		c.state = StateUnauthenticated
		c.mu.Unlock()
		c.logger.Warnw("login failed", "error", err)
		c.observers.Each(func(o Observer) { o.LoginFailed(err) })
		return model.AuthResult{}, err
	}

	sess := &authSession{result: res, ready: make(chan struct{})}
	c.mu.Lock()
	c.current = sess
	c.last = res
	c.state = StateAuthenticated
	c.mu.Unlock()
	c.logger.Infow("login succeeded")
	c.observers.Each(func(o Observer) { o.LoginSucceeded(res) })
	close(sess.ready)
	return res, nil
}

// RequestSummaries асинхронно загружает все сводки раздела и ровно один раз вызывает completion
// в отдельной горутине. Completion запроса, начатого после успешного входа,
// вызывается не раньше, чем наблюдатели получат уведомление об этом входе.
func (c *Client) RequestSummaries(ctx context.Context, section string, completion SummariesCompletion) {
	if completion == nil {
		completion = func([]model.RadarSummary, error) {}
	}
	go func() {
		list, sess, err := c.fetchSummaries(ctx, section)
		if sess != nil {
			select {
			case <-sess.ready:
			case <-c.ctx.Done():
			}
		}
		if err != nil {
			completion(nil, err)
			return
		}
		completion(list, nil)
	}()
}

// Summaries — блокирующий вариант RequestSummaries.
// Не вызывайте его синхронно из наблюдателя входа: используйте RequestSummaries.
func (c *Client) Summaries(ctx context.Context, section string) ([]model.RadarSummary, error) {
	list, _, err := c.fetchSummaries(ctx, section)
	return list, err
}

func (c *Client) currentSession() *authSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// invalidate сбрасывает сессию, если сервер отверг именно её токен.
func (c *Client) invalidate(sess *authSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != sess {
		return
	}
	c.current = nil
	if c.state == StateAuthenticated {
		c.state = StateUnauthenticated
	}
}

func (c *Client) fetchSummaries(ctx context.Context, section string) ([]model.RadarSummary, *authSession, error) {
	const op = "summaries"
	if strings.TrimSpace(section) == "" {
		return nil, nil, apperr.New(op, apperr.InvalidRequest, errors.New("empty section name"))
	}
	sess := c.currentSession()
	if sess == nil {
		return nil, nil, apperr.New(op, apperr.AuthenticationRequired, errors.New("login first"))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	headers := map[string]string{CSRFHeader: sess.result.CSRFToken, "Accept": "application/json"}
	out := make([]model.RadarSummary, 0)
	rowStart := 0
	for {
		query := map[string]string{
			"section":  section,
			"rowStart": strconv.Itoa(rowStart),
			"rowCount": strconv.Itoa(c.pageSize),
		}
		resp, err := c.session.Get(ctx, SummariesPath, query, headers)
		if err != nil {
			return nil, sess, api.TransportError(op, err)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.invalidate(sess)
			c.logger.Warnw("session rejected by server", "section", section, "status", resp.StatusCode)
			return nil, sess, api.StatusError(op, resp)
		}
		if !resp.OK() {
			return nil, sess, api.StatusError(op, resp)
		}
		page, err := model.ParseSummaries(resp.Body)
		if err != nil {
			return nil, sess, apperr.New(op, apperr.InvalidResponse, err)
		}
		if page.RowStart != rowStart {
			return nil, sess, apperr.New(op, apperr.InvalidResponse,
				fmt.Errorf("page starts at row %d, requested %d", page.RowStart, rowStart))
		}
		out = append(out, page.Summaries...)
		if !page.HasAdditionalRows() || len(page.Summaries) == 0 {
			break
		}
		if len(out) >= c.maxRows {
			return nil, sess, apperr.New(op, apperr.InvalidResponse,
				fmt.Errorf("section %q exceeds %d rows", section, c.maxRows))
		}
		rowStart += len(page.Summaries)
	}
	c.logger.Debugw("summaries fetched", "section", section, "count", len(out))
	return out, sess, nil
}
