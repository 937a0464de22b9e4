package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func params(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseDefaults(t *testing.T) {
	q := Parse(params(nil))
	assert.Equal(t, Query{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"}, q)
	assert.Equal(t, 0, q.Skip())
}

func TestParseClamps(t *testing.T) {
	cases := []struct {
		in          map[string]string
		page, limit int
	}{
		{map[string]string{"page": "0", "limit": "0"}, 1, 1},
		{map[string]string{"page": "-3", "limit": "1000"}, 1, 100},
		{map[string]string{"page": "abc", "limit": "x"}, 1, 10},
		{map[string]string{"page": "3", "limit": "20"}, 3, 20},
	}
	for _, tc := range cases {
		q := Parse(params(tc.in))
		assert.Equal(t, tc.page, q.Page, "%v", tc.in)
		assert.Equal(t, tc.limit, q.Limit, "%v", tc.in)
	}
	assert.Equal(t, 40, Parse(params(map[string]string{"page": "3", "limit": "20"})).Skip())
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, "asc", Parse(params(map[string]string{"sortOrder": "ASC"})).SortOrder)
	assert.Equal(t, "desc", Parse(params(map[string]string{"sortOrder": "sideways"})).SortOrder)
}

func TestOrderClauseWhitelist(t *testing.T) {
	allowed := With(Columns{"order": "sort_order"})
	q := Query{SortBy: "order", SortOrder: "asc"}
	assert.Equal(t, "sort_order asc, id asc", q.OrderClause(allowed))

	q.SortBy = "name; DROP TABLE skills"
	assert.Equal(t, "created_at asc, id asc", q.OrderClause(allowed))
}

func TestParseBool(t *testing.T) {
	assert.True(t, *ParseBool("true"))
	assert.False(t, *ParseBool("0"))
	assert.Nil(t, ParseBool(""))
	assert.Nil(t, ParseBool("maybe"))
}
