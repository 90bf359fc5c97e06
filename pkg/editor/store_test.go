package editor

import (
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/pagesmith/pkg/element"
)

func newTestStore() *Store {
	return New(Session{ProjectID: "p1", ProjectName: "Landing"})
}

func TestAddDefaults(t *testing.T) {
	s := newTestStore()
	e := s.Add(element.Element{Type: element.TypeHeading, Content: "Hello"})

	if e.ID == "" {
		t.Fatal("Add() returned empty id")
	}
	if e.X != 0 || e.Y != 0 || e.Width != 200 || e.Height != 40 {
		t.Errorf("geometry = %v,%v %vx%v, want 0,0 200x40", e.X, e.Y, e.Width, e.Height)
	}
	if e.Locked || e.Hidden || e.Styles.Len() != 0 {
		t.Errorf("defaults not applied: %+v", e)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestAddKeepsGivenGeometry(t *testing.T) {
	s := newTestStore()
	e := s.Add(element.Element{Type: element.TypeButton, X: -10, Y: 5, Width: 120, Height: 48})
	if e.X != -10 || e.Y != 5 || e.Width != 120 || e.Height != 48 {
		t.Errorf("geometry = %v,%v %vx%v, want -10,5 120x48", e.X, e.Y, e.Width, e.Height)
	}
}

func TestAddMintsUniqueIDs(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	s := New(Session{}, WithClock(func() time.Time { return fixed }))
	s.ReplaceAll([]element.Element{{ID: "seed", Type: element.TypeText}})

	seen := map[string]bool{"seed": true}
	for range 200 {
		before := s.Elements()
		e := s.Add(element.Element{Type: element.TypeText, ID: "seed"})
		if _, exists := element.Find(before, e.ID); exists {
			t.Fatalf("Add() reused id %q", e.ID)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %q", e.ID)
		}
		seen[e.ID] = true
	}
}

// assertUniqueIDs fails when any id in the document is empty or repeated.
func assertUniqueIDs(t *testing.T, elems []element.Element) {
	t.Helper()
	seen := make(map[string]bool)
	element.Walk(elems, func(e *element.Element, _ int) {
		if e.ID == "" {
			t.Errorf("element %s has an empty id", e.Type)
		}
		if seen[e.ID] {
			t.Errorf("id %q appears twice", e.ID)
		}
		seen[e.ID] = true
	})
}

func TestAddClaimsChildIDs(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]element.Element{{ID: "box", Type: element.TypeContainer}})

	e := s.Add(element.Element{Type: element.TypeContainer, Children: []element.Element{
		{ID: "box", Type: element.TypeText},
		{Type: element.TypeText},
		{ID: "keep", Type: element.TypeText},
		{ID: "keep", Type: element.TypeText},
	}})

	assertUniqueIDs(t, s.Elements())
	if e.Children[0].ID == "box" {
		t.Error("child kept an id already used in the document")
	}
	if e.Children[2].ID != "keep" {
		t.Errorf("unique child id = %q, want keep", e.Children[2].ID)
	}
	stored, _ := s.Get(e.ID)
	if !reflect.DeepEqual(stored.Children, e.Children) {
		t.Errorf("returned children %+v differ from stored %+v", e.Children, stored.Children)
	}
}

func TestUpdateClaimsChildIDs(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]element.Element{
		{ID: "box", Type: element.TypeContainer, Children: []element.Element{{ID: "old", Type: element.TypeText}}},
		{ID: "other", Type: element.TypeText},
	})

	children := []element.Element{
		{Type: element.TypeText, Content: "new"},
		{ID: "box", Type: element.TypeText},
		{ID: "other", Type: element.TypeText},
		{ID: "old", Type: element.TypeText},
	}
	if !s.Update("box", element.Patch{Children: &children}) {
		t.Fatal("Update(box) = false")
	}

	assertUniqueIDs(t, s.Elements())
	box, _ := s.Get("box")
	if len(box.Children) != 4 {
		t.Fatalf("children = %+v, want 4", box.Children)
	}
	if box.Children[3].ID != "old" {
		t.Errorf("replacement child id = %q, want old kept", box.Children[3].ID)
	}
	if got := s.Elements()[1].ID; got != "other" {
		t.Errorf("sibling id = %q, want other", got)
	}
	if children[0].ID != "" || children[1].ID != "box" {
		t.Errorf("caller's children were modified: %+v", children)
	}
}

func TestUpdateMergesStyles(t *testing.T) {
	s := newTestStore()
	e := s.Add(element.Element{
		Type:   element.TypeButton,
		Styles: element.NewStyles("color", "blue", "fontSize", "16px"),
	})

	if !s.Update(e.ID, element.Patch{Styles: element.NewStyles("color", "red"), Content: element.Ptr("Go")}) {
		t.Fatal("Update() = false, want true")
	}
	got, _ := s.Get(e.ID)
	if got.Styles.Value("color") != "red" || got.Styles.Value("fontSize") != "16px" {
		t.Errorf("styles = %v, want color=red fontSize=16px", got.Styles.Keys())
	}
	if got.Content != "Go" {
		t.Errorf("Content = %q, want Go", got.Content)
	}
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	s := newTestStore()
	s.Add(element.Element{Type: element.TypeHeading})
	s.Add(element.Element{Type: element.TypeParagraph})
	before := s.Elements()

	if s.Update("nope", element.Patch{Content: element.Ptr("x"), Styles: element.NewStyles("color", "red")}) {
		t.Error("Update(missing) = true, want false")
	}
	if after := s.Elements(); !reflect.DeepEqual(before, after) {
		t.Error("Update(missing) changed the collection")
	}
}

func TestUpdateRefreshesSelection(t *testing.T) {
	s := newTestStore()
	e := s.Add(element.Element{Type: element.TypeButton})
	s.Select(&e)

	s.Update(e.ID, element.Patch{Styles: element.NewStyles("color", "red")})

	sel, ok := s.Selected()
	if !ok {
		t.Fatal("selection lost after update")
	}
	if sel.Styles.Value("color") != "red" {
		t.Errorf("selected color = %q, want red", sel.Styles.Value("color"))
	}
}

func TestUpdateOtherKeepsSelection(t *testing.T) {
	s := newTestStore()
	a := s.Add(element.Element{Type: element.TypeButton})
	b := s.Add(element.Element{Type: element.TypeText})
	s.Select(&a)

	s.Update(b.ID, element.Patch{Content: element.Ptr("changed")})

	sel, _ := s.Selected()
	if sel.ID != a.ID || sel.Content != "" {
		t.Errorf("selection = %+v, want untouched %s", sel, a.ID)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name         string
		removeSelect bool
		wantSelected bool
	}{
		{"selected element clears selection", true, false},
		{"other element keeps selection", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			a := s.Add(element.Element{Type: element.TypeHeading})
			b := s.Add(element.Element{Type: element.TypeParagraph})
			s.Select(&a)

			target := b.ID
			if tt.removeSelect {
				target = a.ID
			}
			if !s.Remove(target) {
				t.Fatalf("Remove(%s) = false", target)
			}
			if _, ok := s.Get(target); ok {
				t.Errorf("element %s still present", target)
			}
			if _, ok := s.Selected(); ok != tt.wantSelected {
				t.Errorf("selected = %v, want %v", ok, tt.wantSelected)
			}
		})
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := newTestStore()
	s.Add(element.Element{Type: element.TypeHeading})
	if s.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestRemoveNested(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]element.Element{{ID: "box", Type: element.TypeContainer, Children: []element.Element{
		{ID: "a", Type: element.TypeText},
		{ID: "b", Type: element.TypeText},
	}}})

	if !s.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	box, _ := s.Get("box")
	if len(box.Children) != 1 || box.Children[0].ID != "b" {
		t.Errorf("children = %+v, want [b]", box.Children)
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]element.Element{
		{ID: "h", Type: element.TypeHeading, Content: "Hi", Styles: element.NewStyles("color", "red", "fontSize", "32px")},
		{ID: "i", Type: element.TypeImage, Content: "https://x/a.png"},
		{ID: "c", Type: element.TypeContainer, Children: []element.Element{{ID: "t", Type: element.TypeText}}},
		{Type: "mystery"},
	})
	snapshot := s.Elements()

	s.ReplaceAll(snapshot)
	if got := s.Elements(); !reflect.DeepEqual(got, snapshot) {
		t.Errorf("ReplaceAll(snapshot) not idempotent:\n got %+v\nwant %+v", got, snapshot)
	}
	if snapshot[1].Src != "https://x/a.png" {
		t.Errorf("legacy image src = %q, want migrated", snapshot[1].Src)
	}
	if snapshot[3].ID == "" {
		t.Error("missing id not minted")
	}
}

func TestReplaceAllNilIsNoop(t *testing.T) {
	s := newTestStore()
	s.Add(element.Element{Type: element.TypeHeading})
	s.ReplaceAll(nil)
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	s.ReplaceAll([]element.Element{})
	if s.Len() != 0 {
		t.Errorf("Len() after empty replace = %d, want 0", s.Len())
	}
}

func TestReplaceAllKeepsSelection(t *testing.T) {
	s := newTestStore()
	a := s.Add(element.Element{Type: element.TypeHeading})
	s.Select(&a)
	s.ReplaceAll([]element.Element{{ID: "x", Type: element.TypeText}})
	if sel, ok := s.Selected(); !ok || sel.ID != a.ID {
		t.Errorf("Selected() = %v, %v, want %s", sel.ID, ok, a.ID)
	}
}

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantLen int
	}{
		{"array", `[{"id":"a","type":"heading"},{"type":"text","styles":{"color":"red"}}]`, true, 2},
		{"empty array", `[]`, true, 0},
		{"object", `{"id":"a"}`, false, 1},
		{"null", `null`, false, 1},
		{"string", `"elements"`, false, 1},
		{"garbage", `not json`, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			s.Add(element.Element{Type: element.TypeButton})

			if ok := s.LoadJSON([]byte(tt.input)); ok != tt.wantOK {
				t.Errorf("LoadJSON() = %v, want %v", ok, tt.wantOK)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
		})
	}
}

func TestElementsReturnsCopies(t *testing.T) {
	s := newTestStore()
	e := s.Add(element.Element{Type: element.TypeText, Styles: element.NewStyles("color", "blue")})

	got := s.Elements()
	got[0].Styles.Set("color", "red")
	got[0].Content = "mutated"

	stored, _ := s.Get(e.ID)
	if stored.Styles.Value("color") != "blue" || stored.Content != "" {
		t.Error("mutating Elements() result changed the store")
	}
}

func TestOnChange(t *testing.T) {
	s := newTestStore()
	var got []ChangeKind
	s.OnChange(func(c Change) { got = append(got, c.Kind) })

	e := s.Add(element.Element{Type: element.TypeText})
	s.Update(e.ID, element.Patch{})
	s.Update("missing", element.Patch{})
	s.SelectID(e.ID)
	s.Remove(e.ID)
	s.Remove(e.ID)
	s.ReplaceAll(nil)

	want := []ChangeKind{ChangeAdded, ChangeUpdated, ChangeSelected, ChangeRemoved}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %v, want %v", got, want)
	}
}
