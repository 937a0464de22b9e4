// Package client is a typed Go client for the portfolio API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/folio-space/core/internal/pkg/response"
)

// Meta is the pagination block returned with list responses.
type Meta = response.Meta

// APIError is returned for every non-2xx response. Category mirrors the envelope's "error" field.
type APIError struct {
	StatusCode int
	Category   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Category)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Meta       *Meta           `json:"meta"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
}

// Client is an HTTP client for the portfolio API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string

	Profile         *ProfileResource
	SocialLinks     *Resource[SocialLink]
	Skills          *SkillResource
	Experiences     *Resource[Experience]
	Education       *Resource[Education]
	Projects        *Resource[Project]
	Recommendations *Resource[Recommendation]
	Blogs           *BlogResource
	Newsletter      *NewsletterResource
	Contact         *ContactResource
	Content         *ContentResource
	Auth            *AuthResource
}

// Option customizes a Client.
type Option func(*Client)

// WithToken authenticates every request as the admin.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default 30 second timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client rooted at baseURL, e.g. "https://example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Profile = &ProfileResource{Resource[Profile]{c: c, path: "/profile"}}
	c.SocialLinks = &Resource[SocialLink]{c: c, path: "/social-links"}
	c.Skills = &SkillResource{Resource[Skill]{c: c, path: "/skills"}}
	c.Experiences = &Resource[Experience]{c: c, path: "/experiences"}
	c.Education = &Resource[Education]{c: c, path: "/education"}
	c.Projects = &Resource[Project]{c: c, path: "/projects"}
	c.Recommendations = &Resource[Recommendation]{c: c, path: "/recommendations"}
	c.Blogs = &BlogResource{Resource[Blog]{c: c, path: "/blogs"}}
	c.Newsletter = &NewsletterResource{Resource[NewsletterSubscriber]{c: c, path: "/newsletter"}}
	c.Contact = &ContactResource{Resource[ContactRequest]{c: c, path: "/contact"}}
	c.Content = &ContentResource{Resource[Content]{c: c, path: "/content"}}
	c.Auth = &AuthResource{c: c}
	return c
}

// SetToken swaps the bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) buildRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends a request and decodes the envelope's data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) (*Meta, error) {
	req, err := c.buildRequest(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Category: env.Error, Message: env.Message}
		if decodeErr != nil || (apiErr.Category == "" && apiErr.Message == "") {
			apiErr.Category = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return env.Meta, nil
}
