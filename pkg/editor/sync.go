package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/observability"
)

// Persister saves a document's elements to the project collaborator.
type Persister interface {
	SaveElements(ctx context.Context, projectID string, elems []element.Element) error
}

// Loader fetches a project's name and elements.
type Loader interface {
	LoadElements(ctx context.Context, projectID string) (name string, elems []element.Element, err error)
}

// Load fetches the session's project and replaces the store's collection.
// On error the store is left untouched.
func Load(ctx context.Context, s *Store, l Loader) error {
	name, elems, err := l.LoadElements(ctx, s.session.ProjectID)
	if err != nil {
		return err
	}
	if elems == nil {
		elems = []element.Element{}
	}
	s.session.ProjectName = name
	s.ReplaceAll(elems)
	return nil
}

// Syncer pushes store snapshots to a Persister in the background.
//
// Local state always wins: a failed save is logged and reported through the
// notifier but never rolls the store back, and a slow save never blocks
// editing. Saves are not retried or cancelled; when several are in flight
// the one that completes last is what the collaborator keeps.
type Syncer struct {
	store  *Store
	p      Persister
	logger *log.Logger
	notify func(error)

	wg sync.WaitGroup
}

// SyncOption configures a Syncer.
type SyncOption func(*Syncer)

// WithLogger sets the logger failed saves are reported to.
func WithLogger(l *log.Logger) SyncOption {
	return func(s *Syncer) { s.logger = l }
}

// WithNotifier sets a callback invoked with each failed save.
// It runs on the save goroutine.
func WithNotifier(fn func(error)) SyncOption {
	return func(s *Syncer) { s.notify = fn }
}

// NewSyncer returns a syncer saving store's document through p.
func NewSyncer(store *Store, p Persister, opts ...SyncOption) *Syncer {
	s := &Syncer{store: store, p: p}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Save snapshots the collection now and persists it asynchronously.
func (s *Syncer) Save(ctx context.Context) {
	session := s.store.Session()
	snapshot := s.store.Elements()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		err := s.p.SaveElements(ctx, session.ProjectID, snapshot)
		observability.Sync().OnSave(ctx, session.ProjectID, len(snapshot), time.Since(start), err)
		if err != nil {
			s.logger.Warn("save failed, keeping local changes",
				"project", session.ProjectID,
				"elements", len(snapshot),
				"error", errors.UserMessage(err))
			if s.notify != nil {
				s.notify(err)
			}
			return
		}
		s.logger.Debug("saved project", "project", session.ProjectID, "elements", len(snapshot))
	}()
}

// Watch saves after every content change of the store. Selection changes
// are not saved.
func (s *Syncer) Watch(ctx context.Context) {
	s.store.OnChange(func(c Change) {
		if c.Kind == ChangeSelected {
			return
		}
		s.Save(ctx)
	})
}

// Wait blocks until all started saves have finished.
func (s *Syncer) Wait() { s.wg.Wait() }
