// Package storage opens the configured [project.Repository] backend.
//
// Backends:
//   - memory: process-local, lost on restart
//   - mongo: MongoDB, for shared deployments
//   - sqlite: a single database file, for standalone servers
package storage

import (
	"context"
	"strings"

	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/storage/memory"
	"github.com/matzehuels/pagesmith/pkg/storage/mongo"
	"github.com/matzehuels/pagesmith/pkg/storage/sqlite"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendMongo, BackendSQLite}

// Options select and configure a backend.
type Options struct {
	Backend       string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
}

// Validate checks the backend name and its required settings.
func (o Options) Validate() error {
	switch strings.ToLower(o.Backend) {
	case "", BackendMemory:
		return nil
	case BackendMongo:
		if o.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "storage backend mongo requires a mongo URI")
		}
		return nil
	case BackendSQLite:
		if o.SQLitePath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "storage backend sqlite requires a database path")
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown storage backend %q (must be one of: memory, mongo, sqlite)", o.Backend)
	}
}

// Open returns the repository selected by opts. An empty backend is memory.
func Open(ctx context.Context, opts Options) (project.Repository, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(opts.Backend) {
	case BackendMongo:
		s, err := mongo.Open(ctx, mongo.Config{URI: opts.MongoURI, Database: opts.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := sqlite.Open(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return memory.New(), nil
	}
}
