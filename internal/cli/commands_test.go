package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/matzehuels/pagesmith/internal/api"
	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/session"
	"github.com/matzehuels/pagesmith/pkg/storage/memory"
)

// isolate points the cache and credential directories at temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// execute runs the root command with args.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustExecute(t *testing.T, args ...string) {
	t.Helper()
	if err := execute(t, args...); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func mustRead(t *testing.T, path string) *document {
	t.Helper()
	doc, err := readDocument(path)
	if err != nil {
		t.Fatalf("readDocument(%s) error: %v", path, err)
	}
	return doc
}

func TestElementCommands(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "demo.json")

	mustExecute(t, "new", path, "--blank", "--name", "Demo")
	if doc := mustRead(t, path); doc.Name != "Demo" || len(doc.Elements) != 0 {
		t.Fatalf("new doc = %+v", doc)
	}

	mustExecute(t, "element", "add", path, "--type", "heading", "--content", "Hi", "-s", "color=red", "-s", "fontSize=32px")
	doc := mustRead(t, path)
	if len(doc.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(doc.Elements))
	}
	e := doc.Elements[0]
	if e.Width != 200 || e.Height != 40 {
		t.Errorf("default size = %vx%v, want 200x40", e.Width, e.Height)
	}
	if got := e.Styles.Keys(); len(got) != 2 || got[0] != "color" {
		t.Errorf("style keys = %v, want [color fontSize]", got)
	}
	id := e.ID

	mustExecute(t, "element", "list", path)

	mustExecute(t, "element", "update", path, id, "--content", "Bye", "-s", "color=blue")
	e = mustRead(t, path).Elements[0]
	if e.Content != "Bye" || e.Styles.Value("color") != "blue" || e.Styles.Value("fontSize") != "32px" {
		t.Errorf("after update = %+v", e)
	}

	mustExecute(t, "element", "update", path, id, "--locked")
	err := execute(t, "element", "update", path, id, "--x", "50")
	if !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("move locked: err = %v, want CONFLICT", err)
	}
	mustExecute(t, "element", "update", path, id, "--locked=false", "--x", "50")
	if e = mustRead(t, path).Elements[0]; e.X != 50 || e.Locked {
		t.Errorf("unlock and move = x %v locked %v", e.X, e.Locked)
	}

	if err := execute(t, "element", "update", path, "nope", "--x", "1"); !errors.IsNotFound(err) {
		t.Errorf("unknown id: err = %v, want not found", err)
	}
	if err := execute(t, "element", "update", path, id); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty update: err = %v, want INVALID_INPUT", err)
	}

	mustExecute(t, "element", "remove", path, id)
	if n := len(mustRead(t, path).Elements); n != 0 {
		t.Errorf("after remove len = %d, want 0", n)
	}
	mustExecute(t, "element", "remove", path, id)
}

func TestElementAddRejects(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "demo.json")
	mustExecute(t, "new", path, "--blank")

	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"unknown type", []string{"--type", "carousel"}, errors.ErrCodeInvalidInput},
		{"style breaks out", []string{"--type", "text", "-s", "color=red}"}, errors.ErrCodeInvalidStyle},
		{"style without value", []string{"--type", "text", "-s", "color"}, errors.ErrCodeInvalidStyle},
		{"script link", []string{"--type", "link", "--url", "javascript:alert(1)"}, errors.ErrCodeInvalidElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, append([]string{"element", "add", path}, tt.args...)...)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.want, err)
			}
			if n := len(mustRead(t, path).Elements); n != 0 {
				t.Errorf("document changed: %d elements", n)
			}
		})
	}
}

func TestElementContentFromHTML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "demo.json")
	mustExecute(t, "new", path, "--blank")

	mustExecute(t, "element", "add", path, "--type", "paragraph", "--content", "a<b and c>d")
	mustExecute(t, "element", "add", path, "--type", "paragraph", "--html", "--content", "<p>Fish &amp; <b>Chips</b></p>")
	doc := mustRead(t, path)
	if got := doc.Elements[0].Content; got != "a<b and c>d" {
		t.Errorf("plain content = %q, want it unchanged", got)
	}
	if got := doc.Elements[1].Content; got != "Fish & Chips" {
		t.Errorf("html content = %q, want %q", got, "Fish & Chips")
	}

	mustExecute(t, "element", "update", path, doc.Elements[0].ID, "--html", "--content", "<i>x</i> &lt;y")
	if got := mustRead(t, path).Elements[0].Content; got != "x <y" {
		t.Errorf("updated content = %q, want %q", got, "x <y")
	}
}

func TestNewFromTemplate(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.json")

	mustExecute(t, "new", path, "--template", "product-launch")
	doc := mustRead(t, path)
	want := project.DefaultTemplates()[0]
	if doc.Name != want.Name {
		t.Errorf("Name = %q, want %q", doc.Name, want.Name)
	}
	if len(doc.Elements) != len(want.Elements) {
		t.Fatalf("len(Elements) = %d, want %d", len(doc.Elements), len(want.Elements))
	}
	seen := map[string]bool{}
	for _, e := range doc.Elements {
		if e.ID == "" || seen[e.ID] {
			t.Errorf("id %q missing or repeated", e.ID)
		}
		seen[e.ID] = true
	}

	if err := execute(t, "new", path, "--blank"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("existing file: err = %v, want CONFLICT", err)
	}
	if err := execute(t, "new", filepath.Join(dir, "x.json"), "--template", "nope"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("unknown template: err = %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "page.json")
	mustExecute(t, "new", path, "--blank", "--name", "Page")
	mustExecute(t, "element", "add", path, "--type", "button", "--content", "Go", "-s", "backgroundColor=blue")

	base := filepath.Join(dir, "site")
	mustExecute(t, "export", path, "-f", "html,css", "-o", base)

	html, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<title>Page</title>") || !strings.Contains(string(html), ">Go</button>") {
		t.Errorf("html export missing title or button:\n%s", html)
	}
	css, err := os.ReadFile(base + ".css")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(css), "background-color: blue;") {
		t.Errorf("css export = %q", css)
	}

	// Second run is served from the file cache.
	mustExecute(t, "export", path, "-f", "css", "-o", base+"-2.css")
	again, _ := os.ReadFile(base + "-2.css")
	if string(again) != string(css) {
		t.Errorf("cached css differs:\n%s\nvs\n%s", again, css)
	}

	if err := execute(t, "export", path, "-f", "pdf"); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("pdf: err = %v, want UNSUPPORTED_FORMAT", err)
	}
	if err := execute(t, "export", path, "-f", "html,css", "-o", "-"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("two formats to stdout: err = %v, want INVALID_INPUT", err)
	}
}

func TestPreviewCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "page.json")
	mustExecute(t, "new", path, "--blank")

	out := filepath.Join(dir, "preview.html")
	mustExecute(t, "preview", path, "--viewport", "mobile", "-o", out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "375px") {
		t.Error("mobile preview should be 375px wide")
	}
	if !strings.Contains(string(data), "No elements to display") {
		t.Error("empty preview should show the placeholder")
	}

	if err := execute(t, "preview", path, "--viewport", "watch"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad viewport: err = %v, want INVALID_INPUT", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []export.Format
		wantErr bool
	}{
		{"html", []export.Format{export.FormatHTML}, false},
		{"html, css,jsx", []export.Format{export.FormatHTML, export.FormatCSS, export.FormatReact}, false},
		{"react,jsx", []export.Format{export.FormatReact}, false},
		{"", nil, true},
		{"html,svg", nil, true},
	}
	for _, tt := range tests {
		got, err := parseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormats(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if strings.Join(formatNames(got), ",") != strings.Join(formatNames(tt.want), ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func formatNames(fs []export.Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "css,re")
	want := []string{"css,html", "css,css", "css,react", "css,json"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("completeFormats(css,re) = %v, want %v", got, want)
	}
}

func TestCompleteStyleKeys(t *testing.T) {
	got, _ := completeStyleKeys(nil, nil, "fo")
	if !slices.Contains(got, "fontSize=") || !slices.Contains(got, "color=") {
		t.Errorf("completeStyleKeys(fo) = %v, want property keys with =", got)
	}
	if got, _ := completeStyleKeys(nil, nil, "color=re"); len(got) != 0 {
		t.Errorf("completeStyleKeys(color=re) = %v, want none", got)
	}
}

func TestElementStyleHints(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "demo.json")
	mustExecute(t, "new", path, "--blank")

	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs([]string{"element", "add", path, "--type", "text",
		"-s", "color=red", "-s", "gridArea=main", "--style=--brand=#fff"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("element add: %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, "gridArea") {
		t.Errorf("log = %q, want a hint for gridArea", out)
	}
	if strings.Contains(out, "property=color") || strings.Contains(out, "--brand") {
		t.Errorf("log = %q, want hints only for unknown keys", out)
	}
	if got := mustRead(t, path).Elements[0].Styles.Value("gridArea"); got != "main" {
		t.Errorf("gridArea = %q, want it saved", got)
	}
}

func TestExportPath(t *testing.T) {
	a := export.Artifact{Format: export.FormatReact, Filename: "Landing.jsx"}
	tests := []struct {
		output string
		multi  bool
		want   string
	}{
		{"", false, "Landing.jsx"},
		{"", true, "Landing.jsx"},
		{"out/page.js", false, "out/page.js"},
		{"out/site.html", true, "out/site.jsx"},
		{"out/site", true, "out/site.jsx"},
	}
	for _, tt := range tests {
		if got := exportPath(tt.output, a, tt.multi); got != tt.want {
			t.Errorf("exportPath(%q, %v) = %q, want %q", tt.output, tt.multi, got, tt.want)
		}
	}
}

func TestFindTemplate(t *testing.T) {
	ts := []project.Template{
		{ID: "t-1", Name: "Product Launch"},
		{ID: "t-2", Name: "Photo Portfolio"},
	}
	tests := []struct {
		key    string
		wantID string
	}{
		{"t-2", "t-2"},
		{"Product Launch", "t-1"},
		{"product-launch", "t-1"},
		{"PHOTO portfolio", "t-2"},
		{"blog", ""},
	}
	for _, tt := range tests {
		got, ok := findTemplate(ts, tt.key)
		switch {
		case tt.wantID == "" && ok:
			t.Errorf("findTemplate(%q) = %s, want none", tt.key, got.ID)
		case tt.wantID != "" && (!ok || got.ID != tt.wantID):
			t.Errorf("findTemplate(%q) = %v, want %s", tt.key, got, tt.wantID)
		}
	}
}

// =============================================================================
// Remote
// =============================================================================

func newTestServer(t *testing.T) string {
	t.Helper()
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	repo := memory.New()
	projects := project.NewService(repo, project.WithLogger(quiet))
	if _, err := projects.SeedTemplates(context.Background(), project.DefaultTemplates(), "test"); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(api.New(api.Options{
		Projects: projects,
		Auth:     auth.NewService(repo, session.NewMemoryStore(), auth.WithCost(bcrypt.MinCost)),
		Logger:   quiet,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRemoteRoundTrip(t *testing.T) {
	isolate(t)
	server := newTestServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "page.json")

	if err := execute(t, "remote", "list"); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("list before login: err = %v, want UNAUTHORIZED", err)
	}

	mustExecute(t, "remote", "login", "--server", server, "--register",
		"--username", "ada", "--email", "ada@example.com", "--password", "secret1")
	mustExecute(t, "remote", "whoami")

	mustExecute(t, "new", path, "--blank", "--name", "Remote Page")
	mustExecute(t, "element", "add", path, "--type", "paragraph", "--content", "hello")

	mustExecute(t, "remote", "push", path)
	pushed := mustRead(t, path)
	if pushed.ProjectID == "" {
		t.Fatal("push should record the new project id in the document")
	}

	mustExecute(t, "element", "update", path, pushed.Elements[0].ID, "--content", "changed")
	mustExecute(t, "remote", "push", path)
	mustExecute(t, "remote", "list")

	pulled := filepath.Join(dir, "pulled.json")
	mustExecute(t, "remote", "pull", pushed.ProjectID, "-o", pulled)
	doc := mustRead(t, pulled)
	if doc.Name != "Remote Page" || doc.ProjectID != pushed.ProjectID {
		t.Errorf("pulled = %q/%q", doc.Name, doc.ProjectID)
	}
	if len(doc.Elements) != 1 || doc.Elements[0].Content != "changed" || doc.Elements[0].ID != pushed.Elements[0].ID {
		t.Errorf("pulled elements = %+v", doc.Elements)
	}

	css := filepath.Join(dir, "remote.css")
	mustExecute(t, "remote", "export", pushed.ProjectID, "-f", "css", "-o", css)
	if _, err := os.Stat(css); err != nil {
		t.Errorf("remote export not written: %v", err)
	}

	mustExecute(t, "remote", "templates")
	mustExecute(t, "remote", "logout")
	if err := execute(t, "remote", "list"); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("list after logout: err = %v, want UNAUTHORIZED", err)
	}
}

func TestRemoteLoginWrongPassword(t *testing.T) {
	isolate(t)
	server := newTestServer(t)

	mustExecute(t, "remote", "login", "--server", server, "--register",
		"--username", "bob", "--email", "bob@example.com", "--password", "secret1")
	mustExecute(t, "remote", "logout")

	err := execute(t, "remote", "login", "--server", server, "--email", "bob@example.com", "--password", "wrong-one")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
}
