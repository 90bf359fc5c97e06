// Package client talks to a pagesmith API server.
//
// [Client] implements [editor.Loader] and [editor.Persister], so an editor
// store can be loaded from and synced to a remote project:
//
//	c, err := client.New("http://localhost:8080", client.WithToken(token))
//	store := editor.New(editor.Session{ProjectID: id})
//	if err := editor.Load(ctx, store, c); err != nil { ... }
//	syncer := editor.NewSyncer(store, c)
//
// Failed requests carry the server's error code, so callers can test them
// with errors.Is. Connection failures are errors.ErrCodeNetwork. GETs retry
// them, and 5xx responses, with backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/buildinfo"
	"github.com/matzehuels/pagesmith/pkg/cache"
	"github.com/matzehuels/pagesmith/pkg/editor"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/observability"
	"github.com/matzehuels/pagesmith/pkg/project"
)

const defaultTimeout = 30 * time.Second

var (
	_ editor.Loader    = (*Client)(nil)
	_ editor.Persister = (*Client)(nil)
)

// Client is a pagesmith API client. Requests may run concurrently, but
// Login, Register and Logout replace the token and must not overlap them.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	backoff cache.Backoff
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBackoff sets the retry policy for GET requests.
func WithBackoff(b cache.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid server URL %q", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: defaultTimeout},
		backoff: cache.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c, nil
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

// =============================================================================
// Auth
// =============================================================================

// Login exchanges credentials for a session token and keeps it for later
// requests.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Result, error) {
	var res auth.Result
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Register creates an account and keeps its session token.
func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*auth.Result, error) {
	var res auth.Result
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Logout ends the current session on the server.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (*project.User, error) {
	var u project.User
	if err := c.get(ctx, "/api/v1/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// =============================================================================
// Projects
// =============================================================================

// ListProjects returns the user's projects, most recently modified first.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var ps []project.Project
	if err := c.get(ctx, "/api/v1/projects", &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// GetProject loads one project.
func (c *Client) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	if err := c.get(ctx, "/api/v1/projects/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req project.CreateRequest) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProject replaces a project's elements and optionally its name.
func (c *Client) SaveProject(ctx context.Context, id string, req project.SaveRequest) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, http.MethodPut, "/api/v1/projects/"+url.PathEscape(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(id), nil, nil)
}

// LoadElements implements editor.Loader.
func (c *Client) LoadElements(ctx context.Context, projectID string) (string, []element.Element, error) {
	p, err := c.GetProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}
	return p.Name, p.Elements, nil
}

// SaveElements implements editor.Persister.
func (c *Client) SaveElements(ctx context.Context, projectID string, elems []element.Element) error {
	if elems == nil {
		elems = []element.Element{}
	}
	_, err := c.SaveProject(ctx, projectID, project.SaveRequest{Elements: elems})
	return err
}

// Export downloads an artifact rendered by the server.
func (c *Client) Export(ctx context.Context, projectID string, format export.Format) ([]byte, error) {
	path := "/api/v1/projects/" + url.PathEscape(projectID) + "/export/" + url.PathEscape(string(format))
	var body []byte
	err := c.backoff.Retry(ctx, func() error {
		resp, err := c.send(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// =============================================================================
// Templates
// =============================================================================

// ListTemplates returns all templates, newest first.
func (c *Client) ListTemplates(ctx context.Context) ([]project.Template, error) {
	var ts []project.Template
	if err := c.get(ctx, "/api/v1/templates", &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// CreateFromTemplate starts a project from a template. An empty name keeps
// the template's name.
func (c *Client) CreateFromTemplate(ctx context.Context, templateID, name string) (*project.Project, error) {
	var p project.Project
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/templates/"+url.PathEscape(templateID)+"/create", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// =============================================================================
// Transport
// =============================================================================

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.backoff.Retry(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, nil, out)
	})
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request")
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s %s response", method, path)
	}
	return nil
}

// send performs the request and returns the response for 2xx statuses.
// Other statuses are decoded into coded errors.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	u := *c.base
	u.Path += path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, path, err)
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
	}
	hooks.OnResponse(ctx, method, u.Host, path, resp.StatusCode, time.Since(start))
	c.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, statusError(resp)
}

type errorBody struct {
	Message string      `json:"message"`
	Code    errors.Code `json:"code"`
}

func statusError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &eb) != nil || eb.Message == "" {
		eb.Message = strings.TrimSpace(string(data))
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
	}
	if eb.Code == "" {
		eb.Code = codeForStatus(resp.StatusCode)
	}
	err := errors.New(eb.Code, "%s", eb.Message)
	if resp.StatusCode >= 500 {
		return cache.Retryable(err)
	}
	return err
}

func codeForStatus(status int) errors.Code {
	switch status {
	case http.StatusBadRequest:
		return errors.ErrCodeInvalidInput
	case http.StatusUnauthorized:
		return errors.ErrCodeUnauthorized
	case http.StatusForbidden:
		return errors.ErrCodeForbidden
	case http.StatusNotFound:
		return errors.ErrCodeNotFound
	case http.StatusConflict:
		return errors.ErrCodeConflict
	default:
		return errors.ErrCodeNetwork
	}
}
