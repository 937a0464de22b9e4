package blog

// CreateBlogDTO accepts either rendered HTML in Content or Markdown source in Markdown.
type CreateBlogDTO struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Markdown    string   `json:"markdown"`
	CoverImage  string   `json:"coverImage"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	Published   bool     `json:"published"`
	Featured    bool     `json:"featured"`
	PublishedAt *string  `json:"publishedAt"`
}

// UpdateBlogDTO only touches the fields that are present. Views and likes are not writable.
type UpdateBlogDTO struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Excerpt     *string  `json:"excerpt"`
	Content     *string  `json:"content"`
	Markdown    *string  `json:"markdown"`
	CoverImage  *string  `json:"coverImage"`
	Tags        []string `json:"tags"`
	Author      *string  `json:"author"`
	Published   *bool    `json:"published"`
	Featured    *bool    `json:"featured"`
	PublishedAt *string  `json:"publishedAt"`
}

// Filter narrows the list endpoint.
type Filter struct {
	Published *bool
	Featured  *bool
	Tag       string
	Author    string
	Search    string
}

// TagCount is one entry of the published tag cloud.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

const (
	DefaultRelatedLimit = 3
	MaxRelatedLimit     = 20
	excerptLength       = 160
)
