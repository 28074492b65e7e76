package handlers_test

import (
	"Antenna/internal/config"
	"Antenna/internal/handlers"
	"Antenna/internal/middleware"
	"Antenna/internal/model"
	"Antenna/internal/repo"
	"Antenna/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Local light mocks
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

type mockRadarRepo struct{ mock.Mock }

func (m *mockRadarRepo) ListSection(ctx context.Context, userID int64, section string, offset, limit int) ([]model.Radar, int64, error) {
	args := m.Called(ctx, userID, section, offset, limit)
	if v, ok := args.Get(0).([]model.Radar); ok {
		return v, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}
func (m *mockRadarRepo) Upsert(ctx context.Context, radars []model.Radar) error {
	return m.Called(ctx, radars).Error(0)
}
func (m *mockRadarRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.RadarRepository = (*mockRadarRepo)(nil)

const testSecret = "test-secret"

// --- Helpers ---
func newTestRouter(t *testing.T, ur repo.UserRepository, rr repo.RadarRepository) http.Handler {
	t.Helper()
	cfg := &config.Config{AuthSecret: testSecret}
	logger := zap.NewNop().Sugar()
	h := handlers.NewHandler(service.NewUserService(ur), service.NewRadarService(rr, logger), logger, cfg)
	return h.Router
}

// newSeededRouter поднимает роутер на in-memory SQLite с пользователем alice и демо-радарами.
func newSeededRouter(t *testing.T) (http.Handler, *model.User) {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	logger := zap.NewNop().Sugar()
	userSvc := service.NewUserService(repo.NewUserRepository(db))
	radarSvc := service.NewRadarService(repo.NewRadarRepository(db), logger)

	u, err := userSvc.EnsureUser(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, radarSvc.SeedSample(context.Background(), u.ID))

	h := handlers.NewHandler(userSvc, radarSvc, logger, &config.Config{AuthSecret: testSecret})
	return h.Router, u
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, userID, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// signin проходит POST /signin и возвращает cookie сессии.
func signin(t *testing.T, router http.Handler, login, password string) []*http.Cookie {
	t.Helper()
	form := url.Values{"appleId": {login}, "accountPassword": {password}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return rr.Result().Cookies()
}

// csrfToken читает токен со страницы /problem.
func csrfToken(t *testing.T, router http.Handler, cookies []*http.Cookie) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/problem", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	token, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content")
	require.True(t, ok, "csrf meta expected")
	return token
}
