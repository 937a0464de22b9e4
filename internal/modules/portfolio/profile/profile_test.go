package profile

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

var validProfile = map[string]interface{}{
	"name":  "Ada Lovelace",
	"title": "Engineer",
	"bio":   "Writes programs.",
	"email": "ada@example.com",
}

func TestGetBeforeCreateIs404(t *testing.T) {
	env := setup(t)
	w := env.Do(http.MethodGet, "/api/v1/profile", nil)
	testutil.ExpectStatus(t, w, http.StatusNotFound)
	out := testutil.Decode(t, w, nil)
	assert.False(t, out.Success)
	assert.Equal(t, "Not Found", out.Error)
	assert.Equal(t, 404, out.StatusCode)
}

func TestCreateRequiresFields(t *testing.T) {
	env := setup(t)
	w := env.Admin(http.MethodPost, "/api/v1/profile", map[string]string{"name": "Ada"})
	testutil.ExpectStatus(t, w, http.StatusBadRequest)
	out := testutil.Decode(t, w, nil)
	assert.Equal(t, "Validation Error", out.Error)
	assert.Equal(t, "Missing required fields: title, bio, email", out.Message)
}

func TestCreateRequiresAdmin(t *testing.T) {
	env := setup(t)
	w := env.Do(http.MethodPost, "/api/v1/profile", validProfile)
	testutil.ExpectStatus(t, w, http.StatusUnauthorized)
}

func TestSingleProfile(t *testing.T) {
	env := setup(t)

	w := env.Admin(http.MethodPost, "/api/v1/profile", validProfile)
	testutil.ExpectStatus(t, w, http.StatusCreated)
	var created models.Profile
	out := testutil.Decode(t, w, &created)
	assert.True(t, out.Success)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.AvailableForWork)

	w = env.Admin(http.MethodPost, "/api/v1/profile", validProfile)
	testutil.ExpectStatus(t, w, http.StatusBadRequest)

	var count int64
	require.NoError(t, env.DB.Model(&models.Profile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var got models.Profile
	testutil.Decode(t, env.Do(http.MethodGet, "/api/v1/profile", nil), &got)
	assert.Equal(t, created.ID, got.ID)
}

func TestUpdateAndDelete(t *testing.T) {
	env := setup(t)
	var created models.Profile
	testutil.Decode(t, env.Admin(http.MethodPost, "/api/v1/profile", validProfile), &created)

	w := env.Admin(http.MethodPatch, "/api/v1/profile/"+created.ID, map[string]interface{}{
		"location": "London", "availableForWork": true,
	})
	testutil.ExpectStatus(t, w, http.StatusOK)
	var updated models.Profile
	testutil.Decode(t, w, &updated)
	assert.Equal(t, "London", updated.Location)
	assert.True(t, updated.AvailableForWork)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	w = env.Admin(http.MethodPut, "/api/v1/profile", map[string]interface{}{"title": "Mathematician"})
	testutil.ExpectStatus(t, w, http.StatusOK)
	testutil.Decode(t, w, &updated)
	assert.Equal(t, "Mathematician", updated.Title)

	w = env.Admin(http.MethodPut, "/api/v1/profile/"+created.ID, map[string]interface{}{"name": ""})
	testutil.ExpectStatus(t, w, http.StatusBadRequest)

	testutil.ExpectStatus(t, env.Admin(http.MethodPut, "/api/v1/profile/missing", map[string]string{}), http.StatusNotFound)

	w = env.Admin(http.MethodDelete, "/api/v1/profile/"+created.ID, nil)
	testutil.ExpectStatus(t, w, http.StatusOK)
	out := testutil.Decode(t, w, nil)
	assert.True(t, out.Success)
	assert.Equal(t, "null", string(out.Data))

	testutil.ExpectStatus(t, env.Admin(http.MethodDelete, "/api/v1/profile/"+created.ID, nil), http.StatusNotFound)
}
