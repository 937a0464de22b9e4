package backup

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, payload []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "s3://bucket/" + key, nil
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newService(t *testing.T, db *gorm.DB, up Uploader) *Service {
	svc := NewService(db, nil, Options{Dir: t.TempDir(), Uploader: up})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	published := fixedNow.Add(-time.Hour)
	require.NoError(t, db.Create(&models.Profile{Name: "Ada", Title: "Engineer", Bio: "bio", Email: "ada@example.com"}).Error)
	require.NoError(t, db.Create(&models.Skill{Name: "Go", Category: "backend", Level: 90}).Error)
	require.NoError(t, db.Create(&models.Blog{
		Title: "Hello", Slug: "hello", Content: "<p>hi</p>", Tags: models.StringArray{"go", "notes"},
		Published: true, Views: 12, PublishedAt: &published,
	}).Error)
}

func TestTablesCoverEveryModelButAdmins(t *testing.T) {
	names := map[string]bool{}
	for _, tb := range tables {
		names[tb.name] = true
	}
	for _, m := range models.All() {
		tn, ok := m.(tabler)
		require.True(t, ok, "%T has no table name", m)
		if reflect.TypeOf(m).Elem() == reflect.TypeOf(models.AdminUser{}) {
			assert.False(t, names[tn.TableName()])
			continue
		}
		assert.True(t, names[tn.TableName()], tn.TableName())
	}
}

func TestCreateAndRestore(t *testing.T) {
	env := testutil.New(t)
	seed(t, env.DB)
	up := &fakeUploader{}
	svc := newService(t, env.DB, up)
	svc.keyTpl = "site/{Y}/{filename}"

	item, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backup-2024-05-06T07-08-09.zip", item.Filename)
	assert.Equal(t, "s3://bucket/site/2024/backup-2024-05-06T07-08-09.zip", item.RemoteURL)
	assert.Equal(t, []string{"site/2024/backup-2024-05-06T07-08-09.zip"}, up.keys)

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Positive(t, items[0].Size)

	require.NoError(t, env.DB.Where("1 = 1").Delete(&models.Skill{}).Error)
	require.NoError(t, env.DB.Create(&models.Skill{Name: "Rust", Category: "backend", Level: 40}).Error)
	require.NoError(t, env.DB.Model(&models.Blog{}).Where("slug = ?", "hello").Update("views", 99).Error)

	out, err := svc.Restore(item.Filename)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Tables["skills"])
	assert.Equal(t, 1, out.Tables["blogs"])
	assert.Equal(t, 0, out.Tables["contents"])

	var skills []models.Skill
	require.NoError(t, env.DB.Find(&skills).Error)
	require.Len(t, skills, 1)
	assert.Equal(t, "Go", skills[0].Name)

	var blog models.Blog
	require.NoError(t, env.DB.First(&blog, "slug = ?", "hello").Error)
	assert.Equal(t, 12, blog.Views)
	assert.Equal(t, models.StringArray{"go", "notes"}, blog.Tags)
	require.NotNil(t, blog.PublishedAt)
	assert.WithinDuration(t, fixedNow.Add(-time.Hour), *blog.PublishedAt, time.Second)

	var admins int64
	require.NoError(t, env.DB.Model(&models.AdminUser{}).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestUploadFailureKeepsLocalFile(t *testing.T) {
	env := testutil.New(t)
	svc := newService(t, env.DB, &fakeUploader{err: errors.New("boom")})

	item, err := svc.Create(context.Background())
	require.Error(t, err)
	require.NotNil(t, item)
	_, statErr := os.Stat(filepath.Join(svc.dir, item.Filename))
	assert.NoError(t, statErr)
}

func TestPathValidation(t *testing.T) {
	env := testutil.New(t)
	svc := newService(t, env.DB, nil)

	for _, name := range []string{"", "notes.txt", "../secret.zip", "a/b.zip"} {
		_, err := svc.Path(name)
		assert.ErrorIs(t, err, errInvalidFilename, name)
	}
	_, err := svc.Path("missing.zip")
	assert.ErrorIs(t, err, errBackupNotFound)
}

func TestRestoreRejectsForeignArchives(t *testing.T) {
	env := testutil.New(t)
	svc := newService(t, env.DB, nil)

	_, err := svc.RestoreArchive([]byte("not a zip"))
	assert.ErrorIs(t, err, errInvalidArchive)

	_, err = decodeBSONRows[models.Skill]([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestRenderObjectKey(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "backups/2025/01/b.zip", renderObjectKey("", "b.zip", at))
	assert.Equal(t, "x/2025-01-02/030405/b.zip", renderObjectKey("/x//{Y}-{m}-{d}/{H}{M}{s}/{filename}", "b.zip", at))
	assert.Equal(t, "b.zip", renderObjectKey("  /  ", "b.zip", at))
}

func TestHandlers(t *testing.T) {
	env := testutil.New(t)
	seed(t, env.DB)
	svc := newService(t, env.DB, nil)
	NewHandler(svc).RegisterRoutes(env.API, env.Auth)

	testutil.ExpectStatus(t, env.Do(http.MethodGet, "/api/v1/backups", nil), http.StatusUnauthorized)

	w := env.Admin(http.MethodPost, "/api/v1/backups", nil)
	testutil.ExpectStatus(t, w, http.StatusCreated)
	var item Item
	testutil.Decode(t, w, &item)

	var items []Item
	testutil.Decode(t, env.Admin(http.MethodGet, "/api/v1/backups", nil), &items)
	require.Len(t, items, 1)

	w = env.Admin(http.MethodGet, "/api/v1/backups/"+item.Filename, nil)
	testutil.ExpectStatus(t, w, http.StatusOK)
	archive := w.Body.Bytes()
	assert.Equal(t, "PK", string(archive[:2]))

	testutil.ExpectStatus(t, env.Admin(http.MethodPost, "/api/v1/backups/"+item.Filename+"/restore", nil), http.StatusOK)
	testutil.ExpectStatus(t, env.Admin(http.MethodGet, "/api/v1/backups/notes.txt", nil), http.StatusBadRequest)
	testutil.ExpectStatus(t, env.Admin(http.MethodGet, "/api/v1/backups/missing.zip", nil), http.StatusNotFound)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "upload.zip")
	require.NoError(t, err)
	_, err = part.Write(archive)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/restore", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.Token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	testutil.ExpectStatus(t, rec, http.StatusOK)

	testutil.ExpectStatus(t, env.Admin(http.MethodDelete, "/api/v1/backups/"+item.Filename, nil), http.StatusOK)
	testutil.ExpectStatus(t, env.Admin(http.MethodDelete, "/api/v1/backups/"+item.Filename, nil), http.StatusNotFound)
}

func TestJob(t *testing.T) {
	env := testutil.New(t)
	svc := newService(t, env.DB, nil)

	job := svc.Job(time.Hour)
	assert.Equal(t, JobName, job.Name)
	require.NoError(t, job.Fn(context.Background()))
	items, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
