// Package config loads pagesmith settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables, then command-line flags (applied by the caller).
//
//	[server]
//	addr = ":8080"
//	cors_origins = ["http://localhost:5173"]
//
//	[storage]
//	backend = "sqlite"
//	sqlite_path = "pagesmith.db"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/session"
	"github.com/matzehuels/pagesmith/pkg/storage"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "pagesmith.toml"

// Environment variables that override file values.
const (
	EnvAddr      = "PAGESMITH_ADDR"
	EnvStorage   = "PAGESMITH_STORAGE"
	EnvMongoURI  = "MONGODB_URI"
	EnvRedisAddr = "REDIS_ADDR"
)

// Config is the full configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	Redis   Redis   `toml:"redis"`
	Cache   Cache   `toml:"cache"`
	Session Session `toml:"session"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	CORSOrigins  []string      `toml:"cors_origins"`
}

// Storage selects the repository backend.
type Storage struct {
	Backend       string `toml:"backend"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	SQLitePath    string `toml:"sqlite_path"`
}

// Options converts to storage.Options.
func (s Storage) Options() storage.Options {
	return storage.Options{
		Backend:       s.Backend,
		MongoURI:      s.MongoURI,
		MongoDatabase: s.MongoDatabase,
		SQLitePath:    s.SQLitePath,
	}
}

// Redis configures the shared cache and session store. An empty Addr
// disables Redis.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

// Cache configures export artifact caching.
type Cache struct {
	TTL time.Duration `toml:"ttl"`
	Dir string        `toml:"dir"`
}

// Session configures login sessions.
type Session struct {
	TTL time.Duration `toml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: Storage{
			Backend:       storage.BackendMemory,
			MongoDatabase: "pagesmith",
		},
		Cache:   Cache{TTL: 24 * time.Hour},
		Session: Session{TTL: session.DefaultTTL},
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. A missing file is not an error when path is DefaultPath or
// empty.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) || explicit {
			return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// Parse decodes TOML text on top of the defaults. Environment variables
// are not consulted.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside of tests. MONGODB_URI alone switches a memory backend to mongo.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	backend, backendSet := lookup(EnvStorage)
	if backendSet && backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Storage.MongoURI = v
		if !backendSet && c.Storage.Backend == storage.BackendMemory {
			c.Storage.Backend = storage.BackendMongo
		}
	}
	if v, ok := lookup(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
}

// Validate checks the storage backend and durations.
func (c Config) Validate() error {
	if err := c.Storage.Options().Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Cache.TTL < 0 || c.Session.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}
