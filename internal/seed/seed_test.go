package seed

import (
	"testing"

	"github.com/folio-space/core/internal/database/dbtest"
	"github.com/folio-space/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, s *Seeder, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(m).Count(&n).Error)
	return n
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("blogs")
	require.NoError(t, err)
	assert.Equal(t, ModeBlogs, m)

	_, err = ParseMode("everything")
	assert.Error(t, err)
}

func TestRunAllReplacesPortfolio(t *testing.T) {
	s := New(dbtest.New(t), nil)
	require.NoError(t, s.db.Create(&models.Skill{Name: "Cobol", Category: "legacy", Level: 10}).Error)
	require.NoError(t, s.db.Create(&models.ContactRequest{Name: "Kim", Email: "kim@example.com", Message: "hi", Type: "general", Status: "pending"}).Error)

	out, err := s.Run(ModeAll)
	require.NoError(t, err)
	assert.Equal(t, 1, out["profiles"])
	assert.Equal(t, 5, out["skills"])
	assert.Equal(t, 3, out["blogs"])

	assert.EqualValues(t, 5, count(t, s, &models.Skill{}))
	var cobol int64
	require.NoError(t, s.db.Model(&models.Skill{}).Where("name = ?", "Cobol").Count(&cobol).Error)
	assert.Zero(t, cobol)
	assert.EqualValues(t, 1, count(t, s, &models.ContactRequest{}))

	// A second run replaces rather than duplicates.
	out, err = s.Run(ModeAll)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(t, s, &models.Profile{}))
	assert.EqualValues(t, 5, count(t, s, &models.Skill{}))
	assert.Equal(t, 0, out["blogs"])
	assert.EqualValues(t, 3, count(t, s, &models.Blog{}))
}

func TestRunBlogsSkipsExistingSlugs(t *testing.T) {
	s := New(dbtest.New(t), nil)
	require.NoError(t, s.db.Create(&models.Blog{Title: "Mine", Slug: "structuring-a-go-rest-api", Content: "x"}).Error)

	out, err := s.Run(ModeBlogs)
	require.NoError(t, err)
	assert.Equal(t, 2, out["blogs"])
	assert.EqualValues(t, 0, count(t, s, &models.Profile{}))

	var b models.Blog
	require.NoError(t, s.db.Where("slug = ?", "getting-started-with-nextjs-14").First(&b).Error)
	assert.Contains(t, b.Content, "<strong>layouts</strong>")
	assert.NotNil(t, b.PublishedAt)
	assert.GreaterOrEqual(t, b.ReadTime, 1)

	var mine models.Blog
	require.NoError(t, s.db.Where("slug = ?", "structuring-a-go-rest-api").First(&mine).Error)
	assert.Equal(t, "Mine", mine.Title)
}
