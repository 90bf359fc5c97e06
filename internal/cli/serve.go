package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/matzehuels/pagesmith/internal/api"
	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/cache"
	"github.com/matzehuels/pagesmith/pkg/config"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/session"
	"github.com/matzehuels/pagesmith/pkg/storage"
)

const (
	// redisCachePrefix namespaces export artifacts in a shared Redis.
	redisCachePrefix = "pagesmith:cache:"

	// seedOwner is recorded as the creator of built-in templates.
	seedOwner = "system"

	// sessionSweepInterval is how often expired sessions are dropped.
	sessionSweepInterval = 10 * time.Minute
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		backendName string
		sqlite      string
		noSeed      bool
		templates   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long: `Run the pagesmith REST API.

Settings come from pagesmith.toml (or --config), then the environment
(PAGESMITH_ADDR, PAGESMITH_STORAGE, MONGODB_URI, REDIS_ADDR), then flags.
When Redis is configured it holds sessions and cached exports; otherwise
both stay in process memory.

An empty template gallery is seeded with the built-in templates unless
--no-seed is given.`,
		Example: `  pagesmith serve
  pagesmith serve --addr :9000 --storage sqlite --sqlite-path pagesmith.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if fs.Changed("storage") {
				cfg.Storage.Backend = backendName
			}
			if fs.Changed("sqlite-path") {
				cfg.Storage.SQLitePath = sqlite
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := c.openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			if !noSeed {
				if err := c.seedIfEmpty(ctx, b.projects, templates); err != nil {
					return err
				}
			}
			go c.sweepSessions(ctx, b.sessions, sessionSweepInterval)

			srv := api.New(api.Options{
				Projects:    b.projects,
				Auth:        b.auth,
				Exports:     b.exports,
				CORSOrigins: cfg.Server.CORSOrigins,
				Logger:      c.Logger,
			})
			c.Logger.Info("starting server", "storage", cfg.Storage.Backend, "redis", cfg.Redis.Enabled())
			return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&backendName, "storage", "", "storage backend: memory, mongo, sqlite")
	cmd.Flags().StringVar(&sqlite, "sqlite-path", "", "database file for the sqlite backend")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "do not seed an empty template gallery")
	cmd.Flags().StringVar(&templates, "templates", "", "YAML seed file used instead of the built-in templates")

	return cmd
}

// seedCommand creates the seed command.
func (c *CLI) seedCommand() *cobra.Command {
	var printYAML bool

	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Replace the template gallery in the configured storage",
		Long: `Replace every stored template with the templates of a YAML seed file,
or with the built-in templates when no file is given.

With --print the templates are written to stdout in seed file format
instead, which is a convenient starting point for a custom seed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			ts, err := loadSeed(path)
			if err != nil {
				return err
			}
			if printYAML {
				return project.WriteTemplates(os.Stdout, ts)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			repo, err := storage.Open(ctx, cfg.Storage.Options())
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			n, err := project.NewService(repo, project.WithLogger(c.Logger)).SeedTemplates(ctx, ts, seedOwner)
			if err != nil {
				return err
			}
			printSuccess("Seeded %d templates", n)
			printKeyValue("Storage", cfg.Storage.Backend)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printYAML, "print", false, "print the templates as YAML instead of storing them")
	return cmd
}

func loadSeed(path string) ([]project.Template, error) {
	if path == "" {
		return project.DefaultTemplates(), nil
	}
	return project.LoadTemplates(path)
}

// =============================================================================
// Server Wiring
// =============================================================================

// backend holds the services a server runs on.
type backend struct {
	projects *project.Service
	auth     *auth.Service
	exports  *export.Runner
	sessions session.Store

	closers []func() error
}

func (b *backend) close() error {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, b.closers[i]())
	}
	return errs
}

// openBackend opens storage, Redis (when configured) and the export cache.
func (c *CLI) openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	repo, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() error { return repo.Close(context.Background()) })

	var artifacts cache.Cache
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			b.close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		b.closers = append(b.closers, client.Close)
		artifacts = cache.NewRedisCacheFromClient(client, redisCachePrefix)
		b.sessions = session.NewRedisStore(client, "")
	} else {
		b.sessions = session.NewMemoryStore()
		if cfg.Cache.Dir != "" {
			fc, err := cache.NewFileCache(cfg.Cache.Dir)
			if err != nil {
				b.close()
				return nil, err
			}
			artifacts = fc
		} else {
			artifacts = cache.NewMemoryCache()
		}
	}
	b.closers = append(b.closers, artifacts.Close)

	b.projects = project.NewService(repo, project.WithLogger(c.Logger))
	b.auth = auth.NewService(repo, b.sessions, auth.WithTTL(cfg.Session.TTL), auth.WithLogger(c.Logger))
	b.exports = export.NewRunner(artifacts, versionKeyer(), c.Logger)
	b.exports.TTL = cfg.Cache.TTL
	return b, nil
}

// seedIfEmpty stores the seed templates when the gallery has none.
func (c *CLI) seedIfEmpty(ctx context.Context, svc *project.Service, path string) error {
	existing, err := svc.ListTemplates(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		c.Logger.Debug("template gallery present", "count", len(existing))
		return nil
	}
	ts, err := loadSeed(path)
	if err != nil {
		return err
	}
	_, err = svc.SeedTemplates(ctx, ts, seedOwner)
	return err
}

// sweepSessions drops expired sessions until ctx is done. A failed sweep
// is logged and retried on the next tick.
func (c *CLI) sweepSessions(ctx context.Context, s session.Store, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
				c.Logger.Warn("session sweep failed", "error", err)
			}
		}
	}
}
