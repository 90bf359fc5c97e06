// Package memory is a process-local [project.Repository] for development,
// tests and the standalone CLI server. Records are copied on the way in and
// out, so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// Store keeps all records in maps.
type Store struct {
	mu        sync.RWMutex
	users     map[string]project.User
	emails    map[string]string // lowercase email -> user id
	projects  map[string]project.Project
	templates map[string]project.Template
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:     make(map[string]project.User),
		emails:    make(map[string]string),
		projects:  make(map[string]project.Project),
		templates: make(map[string]project.Template),
	}
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(_ context.Context, u *project.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, taken := s.emails[email]; taken {
		return errors.New(errors.ErrCodeConflict, "user already exists")
	}
	if u.ID == "" {
		u.ID = project.NewID()
	}
	u.Email = email
	stored := *u
	stored.PasswordHash = append([]byte(nil), u.PasswordHash...)
	s.users[u.ID] = stored
	s.emails[email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*project.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*project.User, error) {
	s.mu.RLock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}
	return s.GetUser(ctx, id)
}

// =============================================================================
// Projects
// =============================================================================

func (s *Store) CreateProject(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = project.NewID()
	}
	if _, exists := s.projects[p.ID]; exists {
		return errors.New(errors.ErrCodeConflict, "project %s already exists", p.ID)
	}
	s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (s *Store) GetProject(_ context.Context, owner, id string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.Owner != owner {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	out := cloneProject(p)
	return &out, nil
}

func (s *Store) ListProjects(_ context.Context, owner string) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []project.Project{}
	for _, p := range s.projects {
		if p.Owner == owner {
			out = append(out, cloneProject(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.projects[p.ID]
	if !ok || cur.Owner != p.Owner {
		return errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	next := cloneProject(*p)
	next.CreatedAt = cur.CreatedAt
	s.projects[p.ID] = next
	return nil
}

func (s *Store) DeleteProject(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.Owner != owner {
		return errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	delete(s.projects, id)
	return nil
}

// =============================================================================
// Templates
// =============================================================================

func (s *Store) ListTemplates(context.Context) ([]project.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]project.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, cloneTemplate(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*project.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeTemplateNotFound, "template not found")
	}
	out := cloneTemplate(t)
	return &out, nil
}

func (s *Store) ReplaceTemplates(_ context.Context, ts []project.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates = make(map[string]project.Template, len(ts))
	for _, t := range ts {
		if t.ID == "" {
			t.ID = project.NewID()
		}
		s.templates[t.ID] = cloneTemplate(t)
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func cloneProject(p project.Project) project.Project {
	p.Elements = element.CloneAll(p.Elements)
	if p.Elements == nil {
		p.Elements = []element.Element{}
	}
	return p
}

func cloneTemplate(t project.Template) project.Template {
	t.Elements = element.CloneAll(t.Elements)
	if t.Elements == nil {
		t.Elements = []element.Element{}
	}
	return t
}

var _ project.Repository = (*Store)(nil)
