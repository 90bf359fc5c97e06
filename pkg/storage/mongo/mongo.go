// Package mongo is a MongoDB-backed [project.Repository].
//
// Collections: users (unique index on email), projects (index on owner and
// last_modified) and templates. Record ids are UUID strings stored in _id.
package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "pagesmith"

// Collection names.
const (
	CollUsers     = "users"
	CollProjects  = "projects"
	CollTemplates = "templates"
)

// Config holds connection settings.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connecting and the initial ping. Default 10s.
	Timeout time.Duration
}

// Store implements project.Repository on MongoDB.
type Store struct {
	client    *mongo.Client
	users     *mongo.Collection
	projects  *mongo.Collection
	templates *mongo.Collection
}

// Open connects, pings and ensures indexes.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:    client,
		users:     db.Collection(CollUsers),
		projects:  db.Collection(CollProjects),
		templates: db.Collection(CollTemplates),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create users index")
	}
	if _, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "last_modified", Value: -1}},
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create projects index")
	}
	return nil
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u *project.User) error {
	if u.ID == "" {
		u.ID = project.NewID()
	}
	u.Email = strings.ToLower(u.Email)
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeConflict, "user already exists")
		}
		return dbError(err, "create user")
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*project.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*project.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*project.User, error) {
	var u project.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
		}
		return nil, dbError(err, "find user")
	}
	return &u, nil
}

// =============================================================================
// Projects
// =============================================================================

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	if p.ID == "" {
		p.ID = project.NewID()
	}
	if _, err := s.projects.InsertOne(ctx, withElements(*p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeConflict, "project %s already exists", p.ID)
		}
		return dbError(err, "create project")
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, owner, id string) (*project.Project, error) {
	var p project.Project
	err := s.projects.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New(errors.ErrCodeProjectNotFound, "project not found")
		}
		return nil, dbError(err, "find project")
	}
	p = withElements(p)
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, owner string) ([]project.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_modified", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.projects.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, dbError(err, "list projects")
	}
	out := []project.Project{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, dbError(err, "decode projects")
	}
	for i := range out {
		out[i] = withElements(out[i])
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	update := bson.M{"$set": bson.M{
		"name":          p.Name,
		"elements":      withElements(*p).Elements,
		"last_modified": p.LastModified,
		"updated_at":    p.UpdatedAt,
	}}
	res, err := s.projects.UpdateOne(ctx, bson.M{"_id": p.ID, "owner": p.Owner}, update)
	if err != nil {
		return dbError(err, "update project")
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, owner, id string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return dbError(err, "delete project")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeProjectNotFound, "project not found")
	}
	return nil
}

// =============================================================================
// Templates
// =============================================================================

func (s *Store) ListTemplates(ctx context.Context) ([]project.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.templates.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, dbError(err, "list templates")
	}
	out := []project.Template{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, dbError(err, "decode templates")
	}
	for i := range out {
		if out[i].Elements == nil {
			out[i].Elements = []element.Element{}
		}
	}
	return out, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*project.Template, error) {
	var t project.Template
	if err := s.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New(errors.ErrCodeTemplateNotFound, "template not found")
		}
		return nil, dbError(err, "find template")
	}
	if t.Elements == nil {
		t.Elements = []element.Element{}
	}
	return &t, nil
}

func (s *Store) ReplaceTemplates(ctx context.Context, ts []project.Template) error {
	if _, err := s.templates.DeleteMany(ctx, bson.M{}); err != nil {
		return dbError(err, "clear templates")
	}
	if len(ts) == 0 {
		return nil
	}
	docs := make([]interface{}, len(ts))
	for i, t := range ts {
		if t.ID == "" {
			t.ID = project.NewID()
		}
		docs[i] = t
	}
	if _, err := s.templates.InsertMany(ctx, docs); err != nil {
		return dbError(err, "insert templates")
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop deletes the store's database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.users.Database().Drop(ctx)
}

func withElements(p project.Project) project.Project {
	if p.Elements == nil {
		p.Elements = []element.Element{}
	}
	return p
}

func dbError(err error, op string) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "mongo: %s", op)
}

var _ project.Repository = (*Store)(nil)
