package project

import (
	"net/http"
	"testing"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *testutil.Env {
	env := testutil.New(t)
	NewHandler(NewService(env.DB)).RegisterRoutes(env.API, env.Auth)
	return env
}

func TestCreateAndFilter(t *testing.T) {
	env := setup(t)
	for _, body := range []map[string]interface{}{
		{"title": "Portfolio", "description": "Personal site", "tags": []string{"React", "Next.js"}, "featured": true},
		{"title": "CLI", "description": "Terminal tool", "tags": []string{"Go"}},
		{"title": "Dashboard", "description": "Admin UI", "tags": []string{"react"}},
	} {
		testutil.ExpectStatus(t, env.Admin(http.MethodPost, "/api/v1/projects", body), http.StatusCreated)
	}

	var items []models.Project
	out := testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/projects?tag=react", nil), &items)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 2, out.Meta.Total)

	items = nil
	testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/projects?featured=true", nil), &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Portfolio", items[0].Title)
	assert.Equal(t, models.StringArray{"React", "Next.js"}, items[0].Tags)

	items = nil
	testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/projects?sortBy=title&sortOrder=asc", nil), &items)
	require.Len(t, items, 3)
	assert.Equal(t, "CLI", items[0].Title)
}

func TestCreateMissingFields(t *testing.T) {
	env := setup(t)
	w := env.Admin(http.MethodPost, "/api/v1/projects", map[string]string{"title": "x"})
	testutil.ExpectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Missing required fields: description", testutil.Decode(t, w, nil).Message)
}

func TestTagsNeverNull(t *testing.T) {
	env := setup(t)
	w := env.Admin(http.MethodPost, "/api/v1/projects", map[string]string{"title": "x", "description": "y"})
	testutil.ExpectStatus(t, w, http.StatusCreated)
	assert.Contains(t, w.Body.String(), `"tags":[]`)
}

func TestUpdatePartial(t *testing.T) {
	env := setup(t)
	var p models.Project
	testutil.Decode(t, env.Admin(http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"title": "x", "description": "y", "tags": []string{"a"},
	}), &p)

	w := env.Admin(http.MethodPatch, "/api/v1/projects/"+p.ID, map[string]interface{}{"featured": true})
	testutil.ExpectStatus(t, w, http.StatusOK)
	testutil.Decode(t, w, &p)
	assert.True(t, p.Featured)
	assert.Equal(t, "x", p.Title)
	assert.Equal(t, models.StringArray{"a"}, p.Tags)

	testutil.ExpectStatus(t, env.Admin(http.MethodPatch, "/api/v1/projects/missing", map[string]interface{}{"featured": true}), http.StatusNotFound)
}
