package project

import "context"

// UserRepository stores accounts. Emails are unique and stored lowercase.
type UserRepository interface {
	// CreateUser inserts u. A taken email fails with errors.ErrCodeConflict.
	CreateUser(ctx context.Context, u *User) error
	// GetUser fails with errors.ErrCodeUserNotFound.
	GetUser(ctx context.Context, id string) (*User, error)
	// GetUserByEmail fails with errors.ErrCodeUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// ProjectRepository stores projects. Every lookup is scoped to the owner;
// another user's project is reported as not found.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p *Project) error
	// GetProject fails with errors.ErrCodeProjectNotFound.
	GetProject(ctx context.Context, owner, id string) (*Project, error)
	// ListProjects returns the owner's projects, most recently modified
	// first.
	ListProjects(ctx context.Context, owner string) ([]Project, error)
	// UpdateProject replaces the stored name, elements and timestamps of
	// the project matching p.Owner and p.ID.
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, owner, id string) error
}

// TemplateRepository stores the template gallery.
type TemplateRepository interface {
	// ListTemplates returns all templates, newest first.
	ListTemplates(ctx context.Context) ([]Template, error)
	// GetTemplate fails with errors.ErrCodeTemplateNotFound.
	GetTemplate(ctx context.Context, id string) (*Template, error)
	// ReplaceTemplates deletes every template and inserts ts.
	ReplaceTemplates(ctx context.Context, ts []Template) error
}

// Repository is a complete storage backend.
type Repository interface {
	UserRepository
	ProjectRepository
	TemplateRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
