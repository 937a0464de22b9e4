package recommendation

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

func TestRecommendationCRUD(t *testing.T) {
	env := setup(t)

	w := env.Admin(http.MethodPost, "/api/v1/recommendations", map[string]string{"name": "Grace"})
	testutil.ExpectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Missing required fields: position, company, text", testutil.Decode(t, w, nil).Message)

	w = env.Admin(http.MethodPost, "/api/v1/recommendations", map[string]string{
		"name": "Grace", "position": "Admiral", "company": "Navy", "text": "Great work.", "linkedin": "https://linkedin.com/in/grace",
	})
	testutil.ExpectStatus(t, w, http.StatusCreated)
	var r models.Recommendation
	testutil.Decode(t, w, &r)
	assert.Equal(t, "https://linkedin.com/in/grace", r.LinkedIn)

	var items []models.Recommendation
	testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/recommendations?company=navy", nil), &items)
	require.Len(t, items, 1)

	items = nil
	testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/recommendations?company=army", nil), &items)
	assert.Empty(t, items)

	w = env.Admin(http.MethodPut, "/api/v1/recommendations/"+r.ID, map[string]string{"text": "Outstanding."})
	testutil.ExpectStatus(t, w, http.StatusOK)
	testutil.Decode(t, w, &r)
	assert.Equal(t, "Outstanding.", r.Text)

	testutil.ExpectStatus(t, env.Do(http.MethodDelete, "/api/v1/recommendations/"+r.ID, nil), http.StatusUnauthorized)
	testutil.ExpectStatus(t, env.Admin(http.MethodDelete, "/api/v1/recommendations/"+r.ID, nil), http.StatusOK)
	testutil.ExpectStatus(t, env.Admin(http.MethodDelete, "/api/v1/recommendations/"+r.ID, nil), http.StatusNotFound)
}
