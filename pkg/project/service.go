package project

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagesmith/pkg/editor"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// Service implements the project and template operations on top of a
// Repository. It is the save boundary: documents are normalized and
// validated here before they reach storage. Text is stored as given;
// renderers and exporters escape it on output.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for timestamps and minted ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Repository returns the underlying storage.
func (s *Service) Repository() Repository { return s.repo }

// =============================================================================
// Projects
// =============================================================================

// CreateRequest is the payload of CreateProject.
type CreateRequest struct {
	Name     string            `json:"name"`
	Elements []element.Element `json:"elements"`
}

// SaveRequest is the payload of SaveProject. A nil field leaves the stored
// value unchanged; an empty Elements slice clears the page.
type SaveRequest struct {
	Name     *string           `json:"name,omitempty"`
	Elements []element.Element `json:"elements"`
}

// ListProjects returns the owner's projects, most recently modified first.
func (s *Service) ListProjects(ctx context.Context, owner string) ([]Project, error) {
	ps, err := s.repo.ListProjects(ctx, owner)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []Project{}
	}
	return ps, nil
}

// GetProject loads one project.
func (s *Service) GetProject(ctx context.Context, owner, id string) (*Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project ID is required")
	}
	return s.repo.GetProject(ctx, owner, id)
}

// CreateProject stores a new project. The name is required.
func (s *Service) CreateProject(ctx context.Context, owner string, req CreateRequest) (*Project, error) {
	name, err := s.cleanName("project", req.Name)
	if err != nil {
		return nil, err
	}
	elems, err := s.prepare(req.Elements)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Project{
		ID:           NewID(),
		Name:         name,
		Owner:        owner,
		Elements:     elems,
		LastModified: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("created project", "project", p.ID, "owner", owner, "elements", len(elems))
	return p, nil
}

// SaveProject replaces the project's elements and optionally its name, and
// stamps lastModified.
func (s *Service) SaveProject(ctx context.Context, owner, id string, req SaveRequest) (*Project, error) {
	p, err := s.GetProject(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name, err := s.cleanName("project", *req.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if req.Elements != nil {
		elems, err := s.prepare(req.Elements)
		if err != nil {
			return nil, err
		}
		p.Elements = elems
	}
	return p, s.store(ctx, p)
}

// DeleteProject removes a project.
func (s *Service) DeleteProject(ctx context.Context, owner, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "project ID is required")
	}
	if err := s.repo.DeleteProject(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Info("deleted project", "project", id, "owner", owner)
	return nil
}

// =============================================================================
// Element operations
// =============================================================================

// AddElement appends an element to a stored project, applying the same
// defaults and id minting as the in-memory store.
func (s *Service) AddElement(ctx context.Context, owner, id string, partial element.Element) (*Project, element.Element, error) {
	p, err := s.GetProject(ctx, owner, id)
	if err != nil {
		return nil, element.Element{}, err
	}
	if strings.TrimSpace(string(partial.Type)) == "" {
		return nil, element.Element{}, errors.New(errors.ErrCodeInvalidInput, "element type is required")
	}

	store := s.storeFor(p)
	added := store.Add(partial)
	elems, err := s.prepare(store.Elements())
	if err != nil {
		return nil, element.Element{}, err
	}
	p.Elements = elems
	if err := s.store(ctx, p); err != nil {
		return nil, element.Element{}, err
	}
	if stored, ok := element.Find(p.Elements, added.ID); ok {
		added = *stored
	}
	return p, added, nil
}

// UpdateElement merges patch into the element with elementID. An unknown
// element id leaves the project unchanged and reports changed=false.
// Geometry or content changes to a locked element fail with
// errors.ErrCodeConflict unless the same patch unlocks it.
func (s *Service) UpdateElement(ctx context.Context, owner, id, elementID string, patch element.Patch) (p *Project, changed bool, err error) {
	p, err = s.GetProject(ctx, owner, id)
	if err != nil {
		return nil, false, err
	}
	target, ok := element.Find(p.Elements, elementID)
	if !ok {
		return p, false, nil
	}
	unlocking := patch.Locked != nil && !*patch.Locked
	if target.Locked && patch.TouchesLocked() && !unlocking {
		return nil, false, errors.New(errors.ErrCodeConflict, "element %s is locked", elementID)
	}

	store := s.storeFor(p)
	store.Update(elementID, patch)
	elems, err := s.prepare(store.Elements())
	if err != nil {
		return nil, false, err
	}
	p.Elements = elems
	return p, true, s.store(ctx, p)
}

// RemoveElement deletes the element with elementID. An unknown element id
// leaves the project unchanged and reports changed=false.
func (s *Service) RemoveElement(ctx context.Context, owner, id, elementID string) (*Project, bool, error) {
	p, err := s.GetProject(ctx, owner, id)
	if err != nil {
		return nil, false, err
	}
	store := s.storeFor(p)
	if !store.Remove(elementID) {
		return p, false, nil
	}
	p.Elements = store.Elements()
	return p, true, s.store(ctx, p)
}

func (s *Service) storeFor(p *Project) *editor.Store {
	store := editor.New(editor.Session{ProjectID: p.ID, ProjectName: p.Name}, editor.WithClock(s.now))
	store.ReplaceAll(p.Elements)
	return store
}

func (s *Service) store(ctx context.Context, p *Project) error {
	now := s.now()
	p.LastModified = now
	p.UpdatedAt = now
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return err
	}
	s.logger.Debug("saved project", "project", p.ID, "elements", len(p.Elements))
	return nil
}

// =============================================================================
// Templates
// =============================================================================

// ListTemplates returns the gallery, newest first.
func (s *Service) ListTemplates(ctx context.Context) ([]Template, error) {
	ts, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []Template{}
	}
	return ts, nil
}

// GetTemplate loads one template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

// CreateFromTemplate creates a project holding a copy of the template's
// elements with freshly minted element ids. An empty name uses the
// template's name.
func (s *Service) CreateFromTemplate(ctx context.Context, owner, templateID, name string) (*Project, error) {
	t, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = t.Name
	}
	elems := element.CloneAll(t.Elements)
	element.RegenerateIDs(elems, s.now)
	return s.CreateProject(ctx, owner, CreateRequest{Name: name, Elements: elems})
}

// SeedTemplates validates ts and replaces the whole gallery with them.
// Templates keep their file order in the gallery.
func (s *Service) SeedTemplates(ctx context.Context, ts []Template, createdBy string) (int, error) {
	base := s.now()
	out := make([]Template, 0, len(ts))
	for i, t := range ts {
		name, err := s.cleanName("template", t.Name)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "template %d", i+1)
		}
		cat, err := ParseCategory(string(t.Category))
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "template %q", name)
		}
		elems, err := s.prepare(t.Elements)
		if err != nil {
			return 0, errors.Wrap(errors.GetCode(err), err, "template %q", name)
		}
		if t.ID == "" {
			t.ID = NewID()
		}
		created := base.Add(-time.Duration(i) * time.Millisecond)
		t.Name = name
		t.Category = cat
		t.Elements = elems
		t.CreatedBy = createdBy
		t.CreatedAt = created
		t.UpdatedAt = created
		out = append(out, t)
	}
	if err := s.repo.ReplaceTemplates(ctx, out); err != nil {
		return 0, err
	}
	s.logger.Info("seeded templates", "count", len(out))
	return len(out), nil
}

// =============================================================================
// Save boundary
// =============================================================================

// prepare normalizes and validates a document for storage.
func (s *Service) prepare(elems []element.Element) ([]element.Element, error) {
	if elems == nil {
		return []element.Element{}, nil
	}
	out := element.NormalizeAll(elems)
	element.EnsureIDs(out, s.now)
	if err := element.ValidateDocument(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidateName(kind, name); err != nil {
		return "", err
	}
	return name, nil
}
