package export

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagesmith/pkg/cache"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/observability"
	"github.com/matzehuels/pagesmith/pkg/render"
)

// Runner wraps Render and preview rendering with a cache.
//
// Artifacts are keyed by the content hash of the document plus the options
// that change the bytes, so the same design exported twice is served from
// the cache. The Runner holds no per-call state and is safe for concurrent
// use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is how long artifacts stay cached; zero means cache.TTLArtifact.
	// Previews always use cache.TTLPreview.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Export renders elems, consulting the cache first. hit reports whether the
// artifact came from the cache. Cache failures are logged and never fail
// the export.
func (r *Runner) Export(ctx context.Context, elems []element.Element, opts Options) (a Artifact, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Artifact{}, false, err
	}
	format := string(opts.Format)

	start := time.Now()
	observability.Export().OnExportStart(ctx, format, len(elems))
	defer func() {
		observability.Export().OnExportComplete(ctx, format, len(a.Content), time.Since(start), err)
	}()

	docHash, herr := cache.HashJSON(elems)
	if herr != nil {
		r.Logger.Warn("cannot hash document, skipping cache", "error", herr)
	}
	key := ""
	if docHash != "" {
		key = r.Keyer.ArtifactKey(docHash, cache.ArtifactKeyOpts{
			Format:    format,
			Title:     opts.Title,
			Component: opts.Component,
		})
	}

	data, hit, err := r.cached(ctx, "artifact", key, r.ttl(cache.TTLArtifact), func() ([]byte, error) {
		a, err := Render(elems, opts)
		return a.Content, err
	})
	if err != nil {
		return Artifact{}, false, err
	}
	a = newArtifact(opts, data)
	if hit {
		r.Logger.Debug("artifact cache hit", "format", format)
		return a, true, nil
	}
	r.Logger.Debug("exported", "format", format, "elements", len(elems), "bytes", len(a.Content))
	return a, false, nil
}

// PreviewOptions select how [Runner.Preview] renders a page. Edit renders
// the canvas instead of the read-only page, highlighting Selected.
type PreviewOptions struct {
	Viewport render.Viewport
	Title    string
	Edit     bool
	Selected string
}

// Preview renders a complete preview page for elems, consulting the cache
// first. Previews expire after cache.TTLPreview.
func (r *Runner) Preview(ctx context.Context, elems []element.Element, opts PreviewOptions) (page []byte, hit bool, err error) {
	if opts.Viewport == "" {
		opts.Viewport = render.ViewportDesktop
	}
	ropts := []render.Option{render.WithViewport(opts.Viewport), render.WithTitle(opts.Title)}
	mode := "preview"
	if opts.Edit {
		ropts = append(ropts, render.WithMode(render.ModeEdit), render.WithSelected(opts.Selected))
		mode = "edit:" + opts.Selected
	}

	key := ""
	if docHash, herr := cache.HashJSON(elems); herr == nil {
		key = r.Keyer.PreviewKey(docHash, cache.PreviewKeyOpts{
			Viewport: string(opts.Viewport),
			Mode:     mode,
			Title:    opts.Title,
		})
	}
	return r.cached(ctx, "preview", key, cache.TTLPreview, func() ([]byte, error) {
		var buf bytes.Buffer
		if err := render.Page(&buf, elems, ropts...); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// cached returns the entry under key, or builds and stores it. An empty key
// bypasses the cache. Cache failures are logged and never fail the call.
func (r *Runner) cached(ctx context.Context, kind, key string, ttl time.Duration, build func() ([]byte, error)) ([]byte, bool, error) {
	if key != "" {
		data, ok, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn(kind+" cache read failed", "error", err)
		case ok:
			observability.Cache().OnCacheHit(ctx, kind)
			return data, true, nil
		default:
			observability.Cache().OnCacheMiss(ctx, kind)
		}
	}

	data, err := build()
	if err != nil {
		return nil, false, err
	}
	if key != "" {
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn(kind+" cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
	}
	return data, false, nil
}
