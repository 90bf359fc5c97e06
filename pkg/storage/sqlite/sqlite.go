// Package sqlite is a single-file [project.Repository] on modernc.org/sqlite,
// for standalone servers that should not need a database service.
//
// Element documents are stored as JSON text; timestamps as Unix
// nanoseconds so that ordering by them is exact.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	username        TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	password_hash   BLOB NOT NULL,
	profile_picture TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	owner         TEXT NOT NULL,
	name          TEXT NOT NULL,
	elements      TEXT NOT NULL,
	last_modified INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS projects_owner ON projects(owner, last_modified DESC);
CREATE TABLE IF NOT EXISTS templates (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	thumbnail   TEXT NOT NULL,
	category    TEXT NOT NULL,
	elements    TEXT NOT NULL,
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

// Store implements project.Repository on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open sqlite %s", path)
	}
	// One connection: in-memory databases are per connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=10000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "set pragma")
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "apply schema")
	}
	return &Store{db: db}, nil
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u *project.User) error {
	if u.ID == "" {
		u.ID = project.NewID()
	}
	u.Email = strings.ToLower(u.Email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, profile_picture, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.ProfilePicture, nanos(u.CreatedAt), nanos(u.UpdatedAt))
	if err != nil {
		if isUnique(err) {
			return errors.New(errors.ErrCodeConflict, "user already exists")
		}
		return dbError(err, "create user")
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*project.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*project.User, error) {
	return s.findUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) findUser(ctx context.Context, where string, arg any) (*project.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, profile_picture, created_at, updated_at
		 FROM users WHERE `+where, arg)
	var u project.User
	var created, updated int64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfilePicture, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, dbError(err, "find user")
	}
	u.CreatedAt, u.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &u, nil
}

// =============================================================================
// Projects
// =============================================================================

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	if p.ID == "" {
		p.ID = project.NewID()
	}
	elems, err := encodeElements(p.Elements)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, owner, name, elements, last_modified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Owner, p.Name, elems, nanos(p.LastModified), nanos(p.CreatedAt), nanos(p.UpdatedAt))
	if err != nil {
		if isUnique(err) {
			return errors.New(errors.ErrCodeConflict, "project %s already exists", p.ID)
		}
		return dbError(err, "create project")
	}
	return nil
}

const projectColumns = `id, owner, name, elements, last_modified, created_at, updated_at`

func (s *Store) GetProject(ctx context.Context, owner, id string) (*project.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND owner = ?`, id, owner)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, owner string) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner = ? ORDER BY last_modified DESC, id ASC`, owner)
	if err != nil {
		return nil, dbError(err, "list projects")
	}
	defer rows.Close()

	out := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list projects")
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	elems, err := encodeElements(p.Elements)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, elements = ?, last_modified = ?, updated_at = ?
		 WHERE id = ? AND owner = ?`,
		p.Name, elems, nanos(p.LastModified), nanos(p.UpdatedAt), p.ID, p.Owner)
	if err != nil {
		return dbError(err, "update project")
	}
	return requireRow(res, errors.ErrCodeProjectNotFound, "project not found")
}

func (s *Store) DeleteProject(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return dbError(err, "delete project")
	}
	return requireRow(res, errors.ErrCodeProjectNotFound, "project not found")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*project.Project, error) {
	var p project.Project
	var elems string
	var modified, created, updated int64
	if err := row.Scan(&p.ID, &p.Owner, &p.Name, &elems, &modified, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, dbError(err, "scan project")
	}
	var err error
	if p.Elements, err = decodeElements(elems); err != nil {
		return nil, err
	}
	p.LastModified, p.CreatedAt, p.UpdatedAt = fromNanos(modified), fromNanos(created), fromNanos(updated)
	return &p, nil
}

// =============================================================================
// Templates
// =============================================================================

const templateColumns = `id, name, description, thumbnail, category, elements, created_by, created_at, updated_at`

func (s *Store) ListTemplates(ctx context.Context) ([]project.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, dbError(err, "list templates")
	}
	defer rows.Close()

	out := []project.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list templates")
	}
	return out, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*project.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeTemplateNotFound, "template not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) ReplaceTemplates(ctx context.Context, ts []project.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return dbError(err, "clear templates")
	}
	for _, t := range ts {
		if t.ID == "" {
			t.ID = project.NewID()
		}
		elems, err := encodeElements(t.Elements)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Description, t.Thumbnail, string(t.Category), elems, t.CreatedBy,
			nanos(t.CreatedAt), nanos(t.UpdatedAt)); err != nil {
			return dbError(err, "insert template")
		}
	}
	if err := tx.Commit(); err != nil {
		return dbError(err, "commit templates")
	}
	return nil
}

func scanTemplate(row scanner) (*project.Template, error) {
	var t project.Template
	var category, elems string
	var created, updated int64
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Thumbnail, &category, &elems, &t.CreatedBy, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, dbError(err, "scan template")
	}
	t.Category = project.Category(category)
	if t.Elements, err = decodeElements(elems); err != nil {
		return nil, err
	}
	t.CreatedAt, t.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &t, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return dbError(err, "ping")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close(context.Context) error { return s.db.Close() }

// =============================================================================
// helpers
// =============================================================================

func encodeElements(elems []element.Element) (string, error) {
	if elems == nil {
		elems = []element.Element{}
	}
	data, err := json.Marshal(elems)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode elements")
	}
	return string(data), nil
}

func decodeElements(data string) ([]element.Element, error) {
	out := []element.Element{}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode elements")
	}
	return out, nil
}

func nanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func requireRow(res sql.Result, code errors.Code, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "rows affected")
	}
	if n == 0 {
		return errors.New(code, "%s", msg)
	}
	return nil
}

func isUnique(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func dbError(err error, op string) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "sqlite: %s", op)
}

var _ project.Repository = (*Store)(nil)
