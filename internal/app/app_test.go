package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/database/dbtest"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/modules/auth"
	jwtpkg "github.com/folio-space/core/internal/pkg/jwt"
	pkgredis "github.com/folio-space/core/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, rdb *pkgredis.Client, mutate func(*config.AppConfig)) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtpkg.SetSecret("app-test-secret")
	cfg := config.Default()
	cfg.Env = "test"
	if mutate != nil {
		mutate(&cfg)
	}
	db := dbtest.New(t)
	_, err := auth.NewService(db, nil).EnsureAdmin("admin", "correct-horse")
	require.NoError(t, err)
	a := build(zap.NewNop(), &cfg, db, rdb)
	t.Cleanup(a.cancel)
	return a
}

func serve(a *App, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, a *App) http.Header {
	t.Helper()
	w := serve(a, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	start := strings.Index(w.Body.String(), `"token":"`) + len(`"token":"`)
	end := strings.Index(w.Body.String()[start:], `"`)
	return http.Header{"Authorization": {"Bearer " + w.Body.String()[start:start+end]}}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	a := newTestApp(t, nil, nil)

	w := serve(a, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = serve(a, http.MethodDelete, "/api/v1/skills", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"statusCode":405`)
}

func TestEndToEndWrite(t *testing.T) {
	a := newTestApp(t, nil, nil)

	w := serve(a, http.MethodPost, "/api/v1/skills", `{"name":"Go","category":"backend","level":80}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := login(t, a)
	w = serve(a, http.MethodPost, "/api/v1/skills", `{"name":"Go","category":"backend","level":80}`, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(a, http.MethodGet, "/api/v1/skills", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = serve(a, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLegacyRelatedRoute(t *testing.T) {
	a := newTestApp(t, nil, nil)
	w := serve(a, http.MethodGet, "/api/blogs/missing/related", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Blog post not found")
}

func TestCORSAllowList(t *testing.T) {
	a := newTestApp(t, nil, func(cfg *config.AppConfig) {
		cfg.AllowedOrigins = []string{"https://example.com", "*.folio.dev"}
	})

	w := serve(a, http.MethodGet, "/api/v1/health", "", http.Header{"Origin": {"https://blog.folio.dev"}})
	assert.Equal(t, "https://blog.folio.dev", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(a, http.MethodGet, "/api/v1/health", "", http.Header{"Origin": {"https://evil.test"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPublicWritesAreGuarded(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := pkgredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	a := newTestApp(t, rdb, func(cfg *config.AppConfig) { cfg.RateLimit.Max = 2 })

	body := `{"name":"A","email":"a@example.com","message":"hi"}`
	assert.Equal(t, http.StatusCreated, serve(a, http.MethodPost, "/api/v1/contact", body, nil).Code)
	assert.Equal(t, http.StatusConflict, serve(a, http.MethodPost, "/api/v1/contact", body, nil).Code)

	w := serve(a, http.MethodPost, "/api/v1/contact", `{"name":"B","email":"b@example.com","message":"yo"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestResubscribeAndRepeatLikeWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := pkgredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	a := newTestApp(t, rdb, nil)
	admin := login(t, a)

	body := `{"email":"a@b.co"}`
	w := serve(a, http.MethodPost, "/api/v1/newsletter", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sub models.NewsletterSubscriber
	require.NoError(t, a.db.First(&sub, "email = ?", "a@b.co").Error)
	w = serve(a, http.MethodPut, "/api/v1/newsletter/"+sub.ID, `{"subscribed":false}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(a, http.MethodPost, "/api/v1/newsletter", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []models.NewsletterSubscriber
	require.NoError(t, a.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Subscribed)

	w = serve(a, http.MethodPost, "/api/v1/blogs", `{"title":"Liked","content":"x","published":true}`, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.Blog
	require.NoError(t, a.db.First(&post, "slug = ?", "liked").Error)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodPost, "/api/v1/blogs/"+post.ID+"/like", "", nil).Code)
	w = serve(a, http.MethodPost, "/api/v1/blogs/"+post.ID+"/like", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"likes":2`)
}

func TestResponseCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := pkgredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	a := newTestApp(t, rdb, nil)
	admin := login(t, a)

	assert.Equal(t, "miss", serve(a, http.MethodGet, "/api/v1/skills", "", nil).Header().Get("x-folio-cache"))
	assert.Equal(t, "hit", serve(a, http.MethodGet, "/api/v1/skills", "", nil).Header().Get("x-folio-cache"))

	w := serve(a, http.MethodPost, "/api/v1/skills", `{"name":"Go","category":"backend","level":80}`, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(a, http.MethodGet, "/api/v1/skills", "", nil)
	assert.Equal(t, "miss", w.Header().Get("x-folio-cache"))
	assert.Contains(t, w.Body.String(), `"total":1`)

	assert.Empty(t, serve(a, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%s", "x"), "", nil).Header().Get("x-folio-cache"))
}

func TestBackupJobRegistration(t *testing.T) {
	a := newTestApp(t, nil, func(cfg *config.AppConfig) {
		cfg.Backup.Enable = true
		cfg.Backup.IntervalHours = 6
		cfg.Paths.Backups = t.TempDir()
	})
	item, err := a.sched.Get("auto_backup")
	require.NoError(t, err)
	assert.Equal(t, (6 * time.Hour).String(), item.Interval)
}

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("example.com", "example.com"))
	assert.True(t, matchOriginPattern("*.example.com", "a.example.com"))
	assert.False(t, matchOriginPattern("*.example.com", "example.org"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:5173"))
	assert.Equal(t, "example.com:8080", extractOriginHost("https://example.com:8080"))
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+02:30")
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9000, offset)

	loc, err = parseTimezoneLocation("-0500")
	require.NoError(t, err)
	_, offset = time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -18000, offset)

	_, err = parseTimezoneLocation("Mars/Olympus")
	assert.ErrorIs(t, err, errBadTimezone)

	_, err = parseTimezoneLocation("+25:00")
	assert.Error(t, err)
}
