package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/html"

	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/cache"
	"github.com/matzehuels/pagesmith/pkg/client"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/session"
	"github.com/matzehuels/pagesmith/pkg/storage/memory"
)

type testEnv struct {
	srv   *httptest.Server
	cache *cache.MemoryCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	repo := memory.New()
	projects := project.NewService(repo, project.WithLogger(quiet))
	if _, err := projects.SeedTemplates(context.Background(), project.DefaultTemplates(), "test"); err != nil {
		t.Fatal(err)
	}
	mc := cache.NewMemoryCache()
	s := New(Options{
		Projects:    projects,
		Auth:        auth.NewService(repo, session.NewMemoryStore(), auth.WithCost(bcrypt.MinCost)),
		Exports:     export.NewRunner(mc, nil, quiet),
		CORSOrigins: []string{"http://localhost:5173"},
		Logger:      quiet,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, cache: mc}
}

// login registers a fresh user and returns a client holding their token.
func (e *testEnv) login(t *testing.T, email string) *client.Client {
	t.Helper()
	c, err := client.New(e.srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Register(context.Background(), auth.RegisterRequest{Username: "user", Email: email, Password: "secret1"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return c
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(method, e.srv.URL+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/v1/projects", "/api/v1/auth/me", "/api/v1/projects/x/export/html"} {
		resp := env.do(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, resp.StatusCode)
		}
		var body errorResponse
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Code != errors.ErrCodeUnauthorized {
			t.Errorf("GET %s code = %q", path, body.Code)
		}
	}
	resp := env.do(t, http.MethodGet, "/api/v1/projects", "bogus", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", resp.StatusCode)
	}
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "a@b.co")

	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"duplicate", auth.RegisterRequest{Username: "other", Email: "a@b.co", Password: "secret1"}, 409, errors.ErrCodeConflict},
		{"short password", auth.RegisterRequest{Username: "other", Email: "c@d.co", Password: "1"}, 400, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			var body errorResponse
			json.NewDecoder(resp.Body).Decode(&body)
			if resp.StatusCode != tt.status || body.Code != tt.code {
				t.Errorf("status = %d code = %q, want %d %q", resp.StatusCode, body.Code, tt.status, tt.code)
			}
		})
	}
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.login(t, "a@b.co")

	me, err := c.Me(ctx)
	if err != nil || me.Email != "a@b.co" {
		t.Fatalf("Me() = %+v, %v", me, err)
	}

	p, err := c.CreateProject(ctx, project.CreateRequest{Name: "Home", Elements: []element.Element{
		{ID: "heading_1", Type: element.TypeHeading, Content: "Welcome", Width: 300, Height: 50,
			Styles: element.NewStyles("fontSize", "32px")},
	}})
	if err != nil {
		t.Fatalf("CreateProject() error: %v", err)
	}

	list, err := c.ListProjects(ctx)
	if err != nil || len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("ListProjects() = %v, %v", list, err)
	}

	name := "Home v2"
	saved, err := c.SaveProject(ctx, p.ID, project.SaveRequest{Name: &name, Elements: []element.Element{}})
	if err != nil {
		t.Fatalf("SaveProject() error: %v", err)
	}
	if saved.Name != name || len(saved.Elements) != 0 {
		t.Errorf("SaveProject() = %+v", saved)
	}

	other := env.login(t, "b@c.co")
	if _, err := other.GetProject(ctx, p.ID); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("foreign GetProject() error = %v", err)
	}

	if err := c.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject() error: %v", err)
	}
	if _, err := c.GetProject(ctx, p.ID); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("GetProject() after delete error = %v", err)
	}
}

func TestSaveRejectsInvalidElements(t *testing.T) {
	env := newTestEnv(t)
	c := env.login(t, "a@b.co")
	p, _ := c.CreateProject(context.Background(), project.CreateRequest{Name: "p"})

	resp := env.do(t, http.MethodPut, "/api/v1/projects/"+p.ID, c.Token(), map[string]any{
		"elements": []map[string]any{
			{"id": "a", "type": "text", "styles": map[string]string{"color": "red}"}},
		},
	})
	var body errorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusBadRequest || body.Code != errors.ErrCodeInvalidElement {
		t.Errorf("status = %d code = %q", resp.StatusCode, body.Code)
	}
	if len(body.Details) == 0 {
		t.Error("expected per-field details")
	}
}

func TestElementRoutes(t *testing.T) {
	env := newTestEnv(t)
	c := env.login(t, "a@b.co")
	p, _ := c.CreateProject(context.Background(), project.CreateRequest{Name: "p"})
	base := "/api/v1/projects/" + p.ID + "/elements"

	resp := env.do(t, http.MethodPost, base, c.Token(), map[string]any{"type": "button", "content": "Buy"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	var added elementResponse
	json.NewDecoder(resp.Body).Decode(&added)
	if added.Element == nil || added.Element.ID == "" || len(added.Project.Elements) != 1 {
		t.Fatalf("add response = %+v", added)
	}
	id := added.Element.ID

	resp = env.do(t, http.MethodPatch, base+"/"+id, c.Token(), map[string]any{"x": 40, "styles": map[string]string{"color": "red"}})
	var updated elementResponse
	json.NewDecoder(resp.Body).Decode(&updated)
	if !updated.Changed || updated.Element.X != 40 || updated.Element.Content != "Buy" {
		t.Errorf("update response = %+v", updated.Element)
	}

	resp = env.do(t, http.MethodPatch, base+"/missing", c.Token(), map[string]any{"x": 1})
	var noop elementResponse
	json.NewDecoder(resp.Body).Decode(&noop)
	if resp.StatusCode != http.StatusOK || noop.Changed {
		t.Errorf("update missing = %d changed=%v", resp.StatusCode, noop.Changed)
	}

	resp = env.do(t, http.MethodDelete, base+"/"+id, c.Token(), nil)
	var removed elementResponse
	json.NewDecoder(resp.Body).Decode(&removed)
	if !removed.Changed || len(removed.Project.Elements) != 0 {
		t.Errorf("remove response = %+v", removed)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.login(t, "a@b.co")
	p, _ := c.CreateProject(ctx, project.CreateRequest{Name: "My Landing Page", Elements: []element.Element{
		{ID: "button_1", Type: element.TypeButton, Content: "Go", Width: 120, Height: 40,
			Styles: element.NewStyles("backgroundColor", "blue")},
	}})

	resp := env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/export/html", c.Token(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, `filename="export.html"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	if _, err := html.Parse(resp.Body); err != nil {
		t.Errorf("export is not HTML: %v", err)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/export/html", c.Token(), nil)
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second export X-Cache = %q, want HIT", got)
	}

	css, err := c.Export(ctx, p.ID, export.FormatCSS)
	if err != nil {
		t.Fatalf("Export(css) error: %v", err)
	}
	if want := "#element-button_1 {\n  background-color: blue;\n}\n"; string(css) != want {
		t.Errorf("css = %q, want %q", css, want)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/export/react", c.Token(), nil)
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, ".jsx") {
		t.Errorf("react Content-Disposition = %q", got)
	}

	if _, err := c.Export(ctx, p.ID, "pdf"); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("Export(pdf) error = %v, want UNSUPPORTED_FORMAT", err)
	}
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)
	c := env.login(t, "a@b.co")
	p, _ := c.CreateProject(context.Background(), project.CreateRequest{Name: "p", Elements: []element.Element{
		{ID: "t", Type: element.TypeText, Content: "Hello preview", Width: 100, Height: 20},
	}})

	resp := env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/preview?viewport=mobile", c.Token(), nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Hello preview") || !strings.Contains(string(body), "375px") {
		t.Errorf("preview = %d %s", resp.StatusCode, body)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/preview?viewport=watch", c.Token(), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad viewport status = %d", resp.StatusCode)
	}
}

func TestTemplates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.do(t, http.MethodGet, "/api/v1/templates", "", nil)
	var ts []project.Template
	json.NewDecoder(resp.Body).Decode(&ts)
	if len(ts) == 0 {
		t.Fatal("no templates listed")
	}

	resp = env.do(t, http.MethodGet, "/api/v1/templates/"+ts[0].ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get template status = %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/v1/templates/missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing template status = %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/templates/"+ts[0].ID+"/create", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d", resp.StatusCode)
	}

	c := env.login(t, "a@b.co")
	p, err := c.CreateFromTemplate(ctx, ts[0].ID, "Launch")
	if err != nil {
		t.Fatalf("CreateFromTemplate() error: %v", err)
	}
	if p.Name != "Launch" || len(p.Elements) != len(ts[0].Elements) {
		t.Errorf("project = %q with %d elements", p.Name, len(p.Elements))
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.login(t, "a@b.co")
	token := c.Token()

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	resp := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/v1/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("preflight = %d %q", resp.StatusCode, resp.Header.Get("Access-Control-Allow-Origin"))
	}

	req, _ = http.NewRequest(http.MethodGet, env.srv.URL+"/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidStyle, 400},
		{errors.ErrCodeUnsupportedFormat, 400},
		{errors.ErrCodeTemplateNotFound, 404},
		{errors.ErrCodeConflict, 409},
		{errors.ErrCodeSessionExpired, 401},
		{errors.ErrCodeForbidden, 403},
		{errors.ErrCodeNetwork, 502},
		{"", 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
