package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/modules/auth"
	"github.com/folio-space/core/internal/modules/blog"
)

type (
	Profile              = models.Profile
	SocialLink           = models.SocialLink
	Skill                = models.Skill
	Experience           = models.Experience
	Education            = models.Education
	Project              = models.Project
	Recommendation       = models.Recommendation
	Blog                 = models.Blog
	NewsletterSubscriber = models.NewsletterSubscriber
	ContactRequest       = models.ContactRequest
	Content              = models.Content
	AdminUser            = models.AdminUser
	TagCount             = blog.TagCount
	LoginResult          = auth.LoginResult
)

// ListOptions maps onto the page/limit/sort/order query parameters. Filters carries
// resource-specific parameters such as "tag" or "published".
type ListOptions struct {
	Page    int
	Limit   int
	Sort    string
	Order   string
	Filters map[string]string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	for k, val := range o.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// Resource implements the CRUD calls shared by every collection.
type Resource[T any] struct {
	c    *Client
	path string
}

func (r *Resource[T]) List(ctx context.Context, opts ListOptions) (*Page[T], error) {
	var items []T
	meta, err := r.c.do(ctx, http.MethodGet, r.path, opts.values(), nil, &items)
	if err != nil {
		return nil, err
	}
	page := &Page[T]{Items: items}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.one(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil)
}

// Create posts payload, usually a map or a struct carrying the resource's JSON fields.
func (r *Resource[T]) Create(ctx context.Context, payload interface{}) (*T, error) {
	return r.one(ctx, http.MethodPost, r.path, payload)
}

// Update sends a PUT. Only the fields present in payload are changed.
func (r *Resource[T]) Update(ctx context.Context, id string, payload interface{}) (*T, error) {
	return r.one(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), payload)
}

func (r *Resource[T]) Patch(ctx context.Context, id string, payload interface{}) (*T, error) {
	return r.one(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id), payload)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func (r *Resource[T]) one(ctx context.Context, method, path string, payload interface{}) (*T, error) {
	var out T
	if _, err := r.c.do(ctx, method, path, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ProfileResource struct{ Resource[Profile] }

// Current returns the single site profile.
func (r *ProfileResource) Current(ctx context.Context) (*Profile, error) {
	return r.one(ctx, http.MethodGet, r.path, nil)
}

type SkillResource struct{ Resource[Skill] }

func (r *SkillResource) Categories(ctx context.Context) ([]string, error) {
	var out []string
	_, err := r.c.do(ctx, http.MethodGet, r.path+"/categories", nil, nil, &out)
	return out, err
}

type BlogResource struct{ Resource[Blog] }

// GetBySlug reads a post by slug. Like Get, it counts a view.
func (r *BlogResource) GetBySlug(ctx context.Context, slug string) (*Blog, error) {
	return r.one(ctx, http.MethodGet, r.path+"/slug/"+url.PathEscape(slug), nil)
}

// Related returns up to limit related posts; limit <= 0 uses the server default.
func (r *BlogResource) Related(ctx context.Context, id string, limit int) ([]Blog, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []Blog
	_, err := r.c.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id)+"/related", q, nil, &out)
	return out, err
}

// Like adds one like and returns the new total.
func (r *BlogResource) Like(ctx context.Context, id string) (int, error) {
	var out struct {
		Likes int `json:"likes"`
	}
	_, err := r.c.do(ctx, http.MethodPost, r.path+"/"+url.PathEscape(id)+"/like", nil, nil, &out)
	return out.Likes, err
}

func (r *BlogResource) Tags(ctx context.Context) ([]TagCount, error) {
	var out []TagCount
	_, err := r.c.do(ctx, http.MethodGet, r.path+"/tags", nil, nil, &out)
	return out, err
}

type NewsletterResource struct{ Resource[NewsletterSubscriber] }

func (r *NewsletterResource) Subscribe(ctx context.Context, email, name string) (*NewsletterSubscriber, error) {
	return r.one(ctx, http.MethodPost, r.path, map[string]string{"email": email, "name": name})
}

func (r *NewsletterResource) Unsubscribe(ctx context.Context, email string) (*NewsletterSubscriber, error) {
	return r.one(ctx, http.MethodPost, r.path+"/unsubscribe", map[string]string{"email": email})
}

type ContactResource struct{ Resource[ContactRequest] }

// Submit sends a public contact request.
func (r *ContactResource) Submit(ctx context.Context, payload interface{}) (*ContactRequest, error) {
	return r.Create(ctx, payload)
}

type ContentResource struct{ Resource[Content] }

func (r *ContentResource) GetByKey(ctx context.Context, key string) (*Content, error) {
	return r.one(ctx, http.MethodGet, r.path+"/key/"+url.PathEscape(key), nil)
}

type AuthResource struct{ c *Client }

// Login exchanges credentials for a token and stores it on the client.
func (r *AuthResource) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	payload := map[string]string{"username": username, "password": password}
	if _, err := r.c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &out); err != nil {
		return nil, err
	}
	r.c.SetToken(out.Token)
	return &out, nil
}

func (r *AuthResource) Me(ctx context.Context) (*AdminUser, error) {
	var out AdminUser
	if _, err := r.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
