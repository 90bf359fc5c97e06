// Package storagetest is a conformance suite for project.Repository
// backends.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// Run exercises repo. The repository must start empty.
func Run(t *testing.T, repo project.Repository) {
	t.Run("Users", func(t *testing.T) { testUsers(t, repo) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, repo) })
	t.Run("Templates", func(t *testing.T) { testTemplates(t, repo) })
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testUsers(t *testing.T, repo project.Repository) {
	ctx := context.Background()

	u := &project.User{Username: "alice", Email: "Alice@Example.com", PasswordHash: []byte("hash"), CreatedAt: base, UpdatedAt: base}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("CreateUser() did not assign an id")
	}

	got, err := repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if got.ID != u.ID || got.Username != "alice" || string(got.PasswordHash) != "hash" {
		t.Errorf("GetUserByEmail() = %+v", got)
	}
	if _, err := repo.GetUser(ctx, u.ID); err != nil {
		t.Errorf("GetUser() error: %v", err)
	}

	dup := &project.User{Username: "alice2", Email: "ALICE@example.com", PasswordHash: []byte("x"), CreatedAt: base, UpdatedAt: base}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("duplicate email error = %v, want CONFLICT", err)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, errors.ErrCodeUserNotFound) {
		t.Errorf("GetUser(missing) error = %v, want USER_NOT_FOUND", err)
	}
}

func testProjects(t *testing.T, repo project.Repository) {
	ctx := context.Background()

	mk := func(owner, name string, modified time.Time) *project.Project {
		p := &project.Project{
			ID:    project.NewID(),
			Name:  name,
			Owner: owner,
			Elements: []element.Element{{
				ID: "heading_1", Type: element.TypeHeading, Content: name,
				Width: 200, Height: 40,
				Styles: element.NewStyles("fontSize", "32px", "color", "red"),
			}},
			LastModified: modified,
			CreatedAt:    modified,
			UpdatedAt:    modified,
		}
		if err := repo.CreateProject(ctx, p); err != nil {
			t.Fatalf("CreateProject(%s) error: %v", name, err)
		}
		return p
	}

	old := mk("u1", "old", base)
	recent := mk("u1", "recent", base.Add(time.Hour))
	other := mk("u2", "other", base.Add(2*time.Hour))

	list, err := repo.ListProjects(ctx, "u1")
	if err != nil {
		t.Fatalf("ListProjects() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != recent.ID || list[1].ID != old.ID {
		t.Errorf("ListProjects() order = %v, want recent then old", names(list))
	}

	got, err := repo.GetProject(ctx, "u1", old.ID)
	if err != nil {
		t.Fatalf("GetProject() error: %v", err)
	}
	if len(got.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(got.Elements))
	}
	if keys := got.Elements[0].Styles.Keys(); len(keys) != 2 || keys[0] != "fontSize" {
		t.Errorf("style order lost: %v", keys)
	}

	if _, err := repo.GetProject(ctx, "u1", other.ID); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("foreign GetProject() error = %v, want PROJECT_NOT_FOUND", err)
	}

	old.Name = "renamed"
	old.Elements = nil
	old.LastModified = base.Add(3 * time.Hour)
	if err := repo.UpdateProject(ctx, old); err != nil {
		t.Fatalf("UpdateProject() error: %v", err)
	}
	got, _ = repo.GetProject(ctx, "u1", old.ID)
	if got.Name != "renamed" || len(got.Elements) != 0 || got.Elements == nil {
		t.Errorf("after update = %+v", got)
	}
	list, _ = repo.ListProjects(ctx, "u1")
	if list[0].ID != old.ID {
		t.Errorf("updated project should sort first, got %v", names(list))
	}

	foreign := *other
	foreign.Owner = "u1"
	if err := repo.UpdateProject(ctx, &foreign); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("foreign UpdateProject() error = %v, want PROJECT_NOT_FOUND", err)
	}

	if err := repo.DeleteProject(ctx, "u1", other.ID); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("foreign DeleteProject() error = %v, want PROJECT_NOT_FOUND", err)
	}
	if err := repo.DeleteProject(ctx, "u1", recent.ID); err != nil {
		t.Fatalf("DeleteProject() error: %v", err)
	}
	if list, _ := repo.ListProjects(ctx, "u1"); len(list) != 1 {
		t.Errorf("after delete len = %d, want 1", len(list))
	}
	if list, _ := repo.ListProjects(ctx, "nobody"); list == nil || len(list) != 0 {
		t.Errorf("ListProjects(nobody) = %v, want empty non-nil", list)
	}
}

func testTemplates(t *testing.T, repo project.Repository) {
	ctx := context.Background()

	ts := []project.Template{
		{ID: "t-old", Name: "Old", Category: project.CategoryBlog, CreatedAt: base, UpdatedAt: base},
		{ID: "t-new", Name: "New", Category: project.CategoryLanding, CreatedAt: base.Add(time.Hour), UpdatedAt: base,
			Elements: []element.Element{{ID: "button_1", Type: element.TypeButton, Content: "Go"}}},
	}
	if err := repo.ReplaceTemplates(ctx, ts); err != nil {
		t.Fatalf("ReplaceTemplates() error: %v", err)
	}

	list, err := repo.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "t-new" {
		t.Errorf("ListTemplates() = %v, want newest first", list)
	}

	got, err := repo.GetTemplate(ctx, "t-new")
	if err != nil {
		t.Fatalf("GetTemplate() error: %v", err)
	}
	if got.Category != project.CategoryLanding || len(got.Elements) != 1 {
		t.Errorf("GetTemplate() = %+v", got)
	}

	if err := repo.ReplaceTemplates(ctx, ts[:1]); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetTemplate(ctx, "t-new"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("replaced template error = %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func names(ps []project.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
