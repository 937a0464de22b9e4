// Package testutil wires a router, database and admin token for module tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/folio-space/core/internal/database/dbtest"
	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/jwt"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Env is a test server with one registered admin.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	API    *gin.RouterGroup
	Auth   gin.HandlerFunc
	Token  string
}

// Envelope mirrors the success and failure bodies with a raw payload.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Meta       *response.Meta  `json:"meta"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
}

// New builds an Env backed by a private in-memory database.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	jwt.SetSecret("module-test-secret")
	admin := models.AdminUser{Username: "admin", PasswordHash: "unused"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, _, err := jwt.Sign(admin.ID, admin.Username, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "Route not found") })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })
	r.Use(middleware.OptionalAuth(db))

	return &Env{
		T:      t,
		DB:     db,
		Router: r,
		API:    r.Group("/api/v1"),
		Auth:   middleware.Auth(db),
		Token:  token,
	}
}

// Do sends an anonymous request. body may be nil, a string, or any JSON-encodable value.
func (e *Env) Do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return e.request(method, path, body, "")
}

// Admin sends a request carrying the admin token.
func (e *Env) Admin(method, path string, body interface{}) *httptest.ResponseRecorder {
	return e.request(method, path, body, e.Token)
}

func (e *Env) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.T.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Decode parses the envelope and, when out is non-nil, its data payload.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", w.Body.String(), err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

// ExpectStatus fails the test unless w carries status.
func ExpectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}
