package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/folio-space/core/internal/database/dbtest"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/jwt"
	redispkg "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) (*redispkg.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redispkg.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func seedAdmin(t *testing.T, db *gorm.DB) string {
	t.Helper()
	jwt.SetSecret("middleware-test")
	admin := models.AdminUser{Username: "admin", PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)
	token, _, err := jwt.Sign(admin.ID, admin.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuth(t *testing.T) {
	db := dbtest.New(t)
	token := seedAdmin(t, db)

	r := gin.New()
	r.GET("/secret", Auth(db), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})

	w := do(r, http.MethodGet, "/secret", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeError(t, w)
	assert.Equal(t, response.CategoryUnauthorized, env.Error)
	assert.Equal(t, 401, env.StatusCode)

	w = do(r, http.MethodGet, "/secret", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())

	w = do(r, http.MethodGet, "/secret?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("1 = 1").Delete(&models.AdminUser{}).Error)
	w = do(r, http.MethodGet, "/secret", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	db := dbtest.New(t)
	token := seedAdmin(t, db)

	r := gin.New()
	r.GET("/", OptionalAuth(db), func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.String(http.StatusOK, "admin")
			return
		}
		c.String(http.StatusOK, "guest")
	})

	assert.Equal(t, "guest", do(r, http.MethodGet, "/", "", nil).Body.String())
	assert.Equal(t, "guest", do(r, http.MethodGet, "/", "", map[string]string{"Authorization": "Bearer junk"}).Body.String())
	assert.Equal(t, "admin", do(r, http.MethodGet, "/", "", map[string]string{"Authorization": "Bearer " + token}).Body.String())
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestRateLimit(t *testing.T) {
	rdb, mr := newRedis(t)
	r := gin.New()
	r.POST("/api/v1/contact", RateLimit(rdb, RateLimitOptions{Max: 2, Window: time.Minute}, nil), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/contact", "{}", nil).Code)
	}
	w := do(r, http.MethodPost, "/api/v1/contact", "{}", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.CategoryTooManyRequests, decodeError(t, w).Error)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/contact", "{}", nil).Code)
}

func TestRateLimitWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/", RateLimit(nil, RateLimitOptions{Max: 1, Window: time.Minute}, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/", "", nil).Code)
	}
}

func TestIdempotence(t *testing.T) {
	rdb, _ := newRedis(t)
	var calls atomic.Int32
	r := gin.New()
	r.POST("/api/v1/newsletter", Idempotence(rdb), func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusCreated)
	})

	body := `{"email":"a@b.co"}`
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/newsletter", body, nil).Code)
	w := do(r, http.MethodPost, "/api/v1/newsletter", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.CategoryConflict, decodeError(t, w).Error)

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/newsletter", `{"email":"c@d.co"}`, nil).Code)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotenceReleasesOnFailure(t *testing.T) {
	rdb, _ := newRedis(t)
	r := gin.New()
	r.POST("/", Idempotence(rdb), func(c *gin.Context) {
		response.BadRequest(c, "nope")
	})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/", `{}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/", `{}`, nil).Code)
}

func TestHTTPCache(t *testing.T) {
	rdb, _ := newRedis(t)
	var hits atomic.Int32
	r := gin.New()
	r.Use(HTTPCache(rdb, HTTPCacheOptions{TTL: time.Minute, SkipPaths: []string{"/api/v1/blogs/*"}}), PurgeOnWrite(rdb, nil))
	handler := func(c *gin.Context) {
		n := hits.Add(1)
		response.OK(c, n)
	}
	r.GET("/api/v1/skills", handler)
	r.GET("/api/v1/blogs/:id", handler)
	r.POST("/api/v1/skills", func(c *gin.Context) { c.Status(http.StatusCreated) })

	first := do(r, http.MethodGet, "/api/v1/skills", "", nil)
	assert.Equal(t, "miss", first.Header().Get(CacheHeader))
	second := do(r, http.MethodGet, "/api/v1/skills", "", nil)
	assert.Equal(t, "hit", second.Header().Get(CacheHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 1, hits.Load())

	do(r, http.MethodGet, "/api/v1/blogs/x", "", nil)
	do(r, http.MethodGet, "/api/v1/blogs/x", "", nil)
	assert.EqualValues(t, 3, hits.Load())

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/skills", "{}", nil).Code)
	third := do(r, http.MethodGet, "/api/v1/skills", "", nil)
	assert.Equal(t, "miss", third.Header().Get(CacheHeader))
	assert.EqualValues(t, 4, hits.Load())
}

func TestPurgeHTTPCache(t *testing.T) {
	rdb, _ := newRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, httpCacheKey("/a"), "{}", time.Minute))
	require.NoError(t, rdb.Set(ctx, httpCacheKey("/b"), "{}", time.Minute))
	n, err := PurgeHTTPCache(ctx, rdb)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
