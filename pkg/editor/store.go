package editor

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/pagesmith/pkg/element"
)

// Session identifies the document an editing session works on.
// It is passed to [New] instead of being looked up from ambient state.
type Session struct {
	ProjectID   string
	ProjectName string
}

// ChangeKind says what kind of mutation a [Change] reports.
type ChangeKind int

// Change kinds.
const (
	ChangeReplaced ChangeKind = iota
	ChangeAdded
	ChangeUpdated
	ChangeRemoved
	ChangeSelected
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReplaced:
		return "replaced"
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Change is delivered to observers after each effective mutation.
// ID is empty for replacements and for clearing the selection.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Store owns the ordered element collection of one document and the
// current selection.
//
// Every operation runs to completion synchronously. Operations that
// reference a missing id do nothing; none of them fail. A Store is not
// safe for concurrent use.
type Store struct {
	session   Session
	elements  []element.Element
	selected  *element.Element
	now       func() time.Time
	observers []func(Change)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for minting element ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store for the given session.
func New(session Session, opts ...Option) *Store {
	s := &Store{session: session, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session the store was created for.
func (s *Store) Session() Session { return s.session }

// OnChange registers fn to be called after every mutation.
func (s *Store) OnChange(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

func (s *Store) emit(c Change) {
	for _, fn := range s.observers {
		fn(c)
	}
}

// ReplaceAll makes the collection exactly the normalized form of elems.
//
// Missing fields are backfilled and elements with a missing or repeated id
// get a fresh one. A nil slice is ignored; an empty non-nil slice clears
// the document. The selection is left as is.
func (s *Store) ReplaceAll(elems []element.Element) {
	if elems == nil {
		return
	}
	next := element.NormalizeAll(elems)
	element.EnsureIDs(next, s.now)
	s.elements = next
	s.emit(Change{Kind: ChangeReplaced})
}

// LoadJSON replaces the collection from a JSON array of element records.
// Input that is not an array of objects leaves the store unchanged and
// LoadJSON reports false.
func (s *Store) LoadJSON(data []byte) bool {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return false
	}
	elems := make([]element.Element, 0, len(raw))
	for _, r := range raw {
		var e element.Element
		if err := json.Unmarshal(r, &e); err != nil {
			return false
		}
		elems = append(elems, e)
	}
	s.ReplaceAll(elems)
	return true
}

// Add appends a new element built from partial and returns it.
//
// The type is taken from partial; a fresh id is always minted. Children
// keep their ids unless empty or already used in the document. Zero width
// or height fall back to 200 and 40 px.
func (s *Store) Add(partial element.Element) element.Element {
	e := element.Normalize(partial)
	if e.Width == 0 {
		e.Width = element.DefaultWidth
	}
	if e.Height == 0 {
		e.Height = element.DefaultHeight
	}
	e.ID = s.mintID(e.Type)
	taken := s.takenIDs()
	taken[e.ID] = true
	s.claimIDs(e.Children, taken)

	s.elements = append(s.elements, e)
	s.emit(Change{Kind: ChangeAdded, ID: e.ID})
	return e.Clone()
}

func (s *Store) mintID(t element.Type) string {
	for {
		id := element.NewID(t, s.now())
		if _, taken := element.Find(s.elements, id); !taken {
			return id
		}
	}
}

// takenIDs returns every id in the document.
func (s *Store) takenIDs() map[string]bool {
	taken := make(map[string]bool)
	element.Walk(s.elements, func(e *element.Element, _ int) { taken[e.ID] = true })
	return taken
}

// claimIDs re-mints the ids in incoming that are empty or in taken, and
// marks every id it keeps as taken.
func (s *Store) claimIDs(incoming []element.Element, taken map[string]bool) {
	element.Walk(incoming, func(e *element.Element, _ int) {
		for e.ID == "" || taken[e.ID] {
			e.ID = element.NewID(e.Type, s.now())
		}
		taken[e.ID] = true
	})
}

// Update merges p into the element with id. It reports whether an element
// was found. If that element is selected, the selection is refreshed.
//
// Replacement children may reuse the ids of the children they replace;
// any other empty or repeated id is re-minted.
func (s *Store) Update(id string, p element.Patch) bool {
	target, ok := element.Find(s.elements, id)
	if !ok {
		return false
	}
	if p.Children != nil {
		taken := s.takenIDs()
		element.Walk(target.Children, func(c *element.Element, _ int) { delete(taken, c.ID) })
		children := element.NormalizeAll(*p.Children)
		s.claimIDs(children, taken)
		p.Children = &children
	}
	*target = element.Merge(*target, p)
	if s.selected != nil && s.selected.ID == id {
		sel := target.Clone()
		s.selected = &sel
	}
	s.emit(Change{Kind: ChangeUpdated, ID: id})
	return true
}

// Remove deletes the element with id and clears the selection if it
// pointed at it. It reports whether an element was removed.
func (s *Store) Remove(id string) bool {
	next, ok := removeID(s.elements, id)
	if !ok {
		return false
	}
	s.elements = next
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	s.emit(Change{Kind: ChangeRemoved, ID: id})
	return true
}

func removeID(elems []element.Element, id string) ([]element.Element, bool) {
	for i := range elems {
		if elems[i].ID == id {
			out := make([]element.Element, 0, len(elems)-1)
			out = append(out, elems[:i]...)
			return append(out, elems[i+1:]...), true
		}
		if children, ok := removeID(elems[i].Children, id); ok {
			elems[i].Children = children
			return elems, true
		}
	}
	return elems, false
}

// Select sets the selection to a copy of e. A nil e clears it.
func (s *Store) Select(e *element.Element) {
	if e == nil {
		s.selected = nil
		s.emit(Change{Kind: ChangeSelected})
		return
	}
	sel := e.Clone()
	s.selected = &sel
	s.emit(Change{Kind: ChangeSelected, ID: sel.ID})
}

// SelectID selects the element with id. It reports whether it exists.
func (s *Store) SelectID(id string) bool {
	e, ok := element.Find(s.elements, id)
	if !ok {
		return false
	}
	s.Select(e)
	return true
}

// Selected returns a copy of the selected element.
func (s *Store) Selected() (element.Element, bool) {
	if s.selected == nil {
		return element.Element{}, false
	}
	return s.selected.Clone(), true
}

// Elements returns a deep copy of the collection in document order.
func (s *Store) Elements() []element.Element {
	out := element.CloneAll(s.elements)
	if out == nil {
		out = []element.Element{}
	}
	return out
}

// Get returns a copy of the element with id.
func (s *Store) Get(id string) (element.Element, bool) {
	e, ok := element.Find(s.elements, id)
	if !ok {
		return element.Element{}, false
	}
	return e.Clone(), true
}

// Len returns the number of top-level elements.
func (s *Store) Len() int { return len(s.elements) }
