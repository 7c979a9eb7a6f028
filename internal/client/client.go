// Package client is the Go HTTP client of the REST backend. The browser
// client pages use it for every read and write; they never touch the store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api"
)

// ErrNoToken is returned when an authenticated call is made without a token.
var ErrNoToken = errors.New("client: no token")

// APIError is a non-2xx answer of the backend.
type APIError struct {
	Status   int
	Category string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Category, e.Message)
}

// StatusOf returns the HTTP status of an APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

// IsUnauthenticated reports a 401 answer.
func IsUnauthenticated(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsForbidden reports a 403 answer.
func IsForbidden(err error) bool { return StatusOf(err) == http.StatusForbidden }

// Client talks to the REST backend at a base URL.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the backend at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the absolute URL of an API path.
func (c *Client) URL(path string) string {
	return c.base + apiPrefix + path
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var eb api.ErrorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Category = eb.Error
			apiErr.Message = eb.Message
		}

		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, token, nil, "", out)
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("client: encode body: %w", err)
	}

	return c.do(ctx, method, path, token, bytes.NewReader(raw), "application/json", out)
}

func (c *Client) authed(ctx context.Context, method, path, token string, in, out any) error {
	if token == "" {
		return ErrNoToken
	}

	return c.doJSON(ctx, method, path, token, in, out)
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, in api.RegisterRequest) (api.Session, error) {
	var out api.Session
	err := c.doJSON(ctx, http.MethodPost, "/register", "", in, &out)

	return out, err
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, in api.LoginRequest) (api.Session, error) {
	var out api.Session
	err := c.doJSON(ctx, http.MethodPost, "/login", "", in, &out)

	return out, err
}

// Logout ends the validity of token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.authed(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// OIDCLoginURL is the backend endpoint redirecting to the identity provider.
func (c *Client) OIDCLoginURL() string {
	return c.URL("/auth/oidc/login")
}

// OIDCCallback forwards the provider's state and code and returns the session.
func (c *Client) OIDCCallback(ctx context.Context, query url.Values) (api.Session, error) {
	var out api.Session
	err := c.doJSON(ctx, http.MethodGet, "/auth/oidc/callback?"+query.Encode(), "", nil, &out)

	return out, err
}

// RBAC returns the role and permission table.
func (c *Client) RBAC(ctx context.Context) (api.RBAC, error) {
	var out api.RBAC
	err := c.doJSON(ctx, http.MethodGet, "/rbac", "", nil, &out)

	return out, err
}

// Blogs lists all posts.
func (c *Client) Blogs(ctx context.Context, token string) ([]api.Blog, error) {
	var out []api.Blog
	err := c.authed(ctx, http.MethodGet, "/blogs", token, nil, &out)

	return out, err
}

// Blog returns a single post.
func (c *Client) Blog(ctx context.Context, token string, id uint64) (api.Blog, error) {
	var out api.Blog
	err := c.authed(ctx, http.MethodGet, blogPath(id), token, nil, &out)

	return out, err
}

// Image is an image file sent with a post.
type Image struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// BlogInput holds the fields of a create or update. Nil fields are not sent.
type BlogInput struct {
	Title   *string
	Content *string
	Image   *Image
}

func (in BlogInput) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	if in.Title != nil {
		if err := w.WriteField("title", *in.Title); err != nil {
			return nil, "", err //nolint:wrapcheck
		}
	}

	if in.Content != nil {
		if err := w.WriteField("content", *in.Content); err != nil {
			return nil, "", err //nolint:wrapcheck
		}
	}

	if in.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, in.Image.Name))
		h.Set("Content-Type", in.Image.ContentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err //nolint:wrapcheck
		}

		if _, err = io.Copy(part, in.Image.Data); err != nil {
			return nil, "", err //nolint:wrapcheck
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err //nolint:wrapcheck
	}

	return &buf, w.FormDataContentType(), nil
}

func (c *Client) sendBlog(ctx context.Context, method, path, token string, in BlogInput) (api.Blog, error) {
	var out api.Blog

	if token == "" {
		return out, ErrNoToken
	}

	body, contentType, err := in.encode()
	if err != nil {
		return out, fmt.Errorf("client: encode form: %w", err)
	}

	err = c.do(ctx, method, path, token, body, contentType, &out)

	return out, err
}

// CreateBlog stores a new post.
func (c *Client) CreateBlog(ctx context.Context, token string, in BlogInput) (api.Blog, error) {
	return c.sendBlog(ctx, http.MethodPost, "/blogs", token, in)
}

// UpdateBlog changes a post.
func (c *Client) UpdateBlog(ctx context.Context, token string, id uint64, in BlogInput) (api.Blog, error) {
	return c.sendBlog(ctx, http.MethodPut, blogPath(id), token, in)
}

// DeleteBlog removes a post.
func (c *Client) DeleteBlog(ctx context.Context, token string, id uint64) error {
	return c.authed(ctx, http.MethodDelete, blogPath(id), token, nil, nil)
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context, token string) ([]api.User, error) {
	var out []api.User
	err := c.authed(ctx, http.MethodGet, "/users", token, nil, &out)

	return out, err
}

// SetRole changes the role of another account.
func (c *Client) SetRole(ctx context.Context, token string, id uint64, role string) (api.User, error) {
	var out api.User
	err := c.authed(ctx, http.MethodPut, userPath(id)+"/role", token, api.RoleRequest{Role: role}, &out)

	return out, err
}

// DeleteUser removes another account.
func (c *Client) DeleteUser(ctx context.Context, token string, id uint64) error {
	return c.authed(ctx, http.MethodDelete, userPath(id), token, nil, nil)
}

// UpdateProfile changes the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, token string, in api.ProfileRequest) (api.User, error) {
	var out api.User
	err := c.authed(ctx, http.MethodPut, "/users/me", token, in, &out)

	return out, err
}

func blogPath(id uint64) string { return "/blogs/" + strconv.FormatUint(id, 10) }

func userPath(id uint64) string { return "/users/" + strconv.FormatUint(id, 10) }
