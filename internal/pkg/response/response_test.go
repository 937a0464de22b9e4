package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func TestNewMeta(t *testing.T) {
	cases := []struct {
		total       int64
		page, limit int
		pages       int
		more        bool
	}{
		{0, 1, 10, 0, false},
		{10, 1, 10, 1, false},
		{11, 1, 10, 2, true},
		{11, 2, 10, 2, false},
		{25, 2, 10, 3, true},
	}
	for _, tc := range cases {
		m := NewMeta(tc.total, tc.page, tc.limit)
		assert.Equal(t, tc.pages, m.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
		assert.Equal(t, tc.more, m.HasMore, "total=%d page=%d", tc.total, tc.page)
		assert.Equal(t, int64(tc.page*tc.limit) < tc.total, m.HasMore)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, CategoryValidation},
		{apperr.NotFound("gone"), http.StatusNotFound, CategoryNotFound},
		{apperr.Unauthorized("who"), http.StatusUnauthorized, CategoryUnauthorized},
		{fmt.Errorf("update: %w", gorm.ErrRecordNotFound), http.StatusNotFound, CategoryNotFound},
		{errors.New("boom"), http.StatusInternalServerError, CategoryInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		body := decodeError(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, tc.category, body.Error)
		assert.Equal(t, tc.status, body.StatusCode)
	}
}

func TestPagedEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Paged(c, []string{"a"}, NewMeta(1, 1, 10))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{"a"}, body["data"])
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["total"])
	assert.Equal(t, false, meta["hasMore"])
}

func TestDeletedHasNullData(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Deleted(c, "removed")
	assert.JSONEq(t, `{"success":true,"data":null,"message":"removed"}`, w.Body.String())
}
