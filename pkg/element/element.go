package element

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is the closed set of element variants.
type Type string

// Element types.
const (
	TypeHeading   Type = "heading"
	TypeParagraph Type = "paragraph"
	TypeButton    Type = "button"
	TypeImage     Type = "image"
	TypeInput     Type = "input"
	TypeLink      Type = "link"
	TypeYouTube   Type = "youtube"
	TypeContainer Type = "container"
	TypeText      Type = "text"
	TypeDivider   Type = "divider"
)

var allTypes = []Type{
	TypeHeading, TypeParagraph, TypeButton, TypeImage, TypeInput,
	TypeLink, TypeYouTube, TypeContainer, TypeText, TypeDivider,
}

// Types returns every known element type in palette order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Known reports whether t is one of the element variants.
// Unknown types are legal in a document; they render as nothing.
func (t Type) Known() bool {
	for _, k := range allTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ParseType converts a user-supplied name to a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Known() {
		return "", fmt.Errorf("unknown element type %q", s)
	}
	return t, nil
}

// Default geometry for elements created without an explicit size.
const (
	DefaultWidth  = 200
	DefaultHeight = 40
)

// DefaultAlt is the image alt text used when an image has none.
const DefaultAlt = "Image"

// Element is one visual node of a document.
//
// Geometry is in CSS pixels and unbounded. Fields foreign to an element's
// type are kept but ignored by renderers and exporters.
type Element struct {
	ID      string  `json:"id" bson:"id" yaml:"id,omitempty"`
	Type    Type    `json:"type" bson:"type" yaml:"type"`
	Content string  `json:"content" bson:"content" yaml:"content,omitempty"`
	X       float64 `json:"x" bson:"x" yaml:"x"`
	Y       float64 `json:"y" bson:"y" yaml:"y"`
	Width   float64 `json:"width" bson:"width" yaml:"width"`
	Height  float64 `json:"height" bson:"height" yaml:"height"`
	Styles  Styles  `json:"styles" bson:"styles" yaml:"styles,omitempty"`
	Locked  bool    `json:"locked" bson:"locked" yaml:"locked,omitempty"`
	Hidden  bool    `json:"hidden" bson:"hidden" yaml:"hidden,omitempty"`

	Src         string `json:"src,omitempty" bson:"src,omitempty" yaml:"src,omitempty"`
	Placeholder string `json:"placeholder,omitempty" bson:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Alt         string `json:"alt,omitempty" bson:"alt,omitempty" yaml:"alt,omitempty"`
	URL         string `json:"url,omitempty" bson:"url,omitempty" yaml:"url,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty" bson:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
	InputType   string `json:"inputType,omitempty" bson:"inputType,omitempty" yaml:"inputType,omitempty"`

	Children []Element `json:"children,omitempty" bson:"children,omitempty" yaml:"children,omitempty"`
}

// Clone returns a deep copy of e, including styles and children.
func (e Element) Clone() Element {
	out := e
	out.Styles = e.Styles.Clone()
	if e.Children != nil {
		out.Children = CloneAll(e.Children)
	}
	return out
}

// CloneAll deep-copies a document. A nil document stays nil.
func CloneAll(elems []Element) []Element {
	if elems == nil {
		return nil
	}
	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = e.Clone()
	}
	return out
}

// ImageSource returns the URL an image element displays.
func (e Element) ImageSource() string { return e.Src }

// AltText returns the image alt text with the default applied.
func (e Element) AltText() string {
	if e.Alt == "" {
		return DefaultAlt
	}
	return e.Alt
}

// InputTypeAttr returns the input type with the default applied.
func (e Element) InputTypeAttr() string {
	if e.InputType == "" {
		return "text"
	}
	return e.InputType
}

// Href returns the link target, "#" when unset.
func (e Element) Href() string {
	if e.URL == "" {
		return "#"
	}
	return e.URL
}

// Find returns a pointer to the element with id, searching children too.
func Find(elems []Element, id string) (*Element, bool) {
	for i := range elems {
		if elems[i].ID == id {
			return &elems[i], true
		}
		if found, ok := Find(elems[i].Children, id); ok {
			return found, true
		}
	}
	return nil, false
}

// Walk calls fn for every element depth-first in document order.
// depth is 0 for top-level elements.
func Walk(elems []Element, fn func(e *Element, depth int)) {
	walk(elems, 0, fn)
}

func walk(elems []Element, depth int, fn func(e *Element, depth int)) {
	for i := range elems {
		fn(&elems[i], depth)
		walk(elems[i].Children, depth+1, fn)
	}
}

// NewID mints an element id of the form type_unixMillis_suffix.
// The suffix comes from a random UUID, so two ids minted in the same
// millisecond collide only with negligible probability.
func NewID(t Type, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	if t == "" {
		t = "element"
	}
	return fmt.Sprintf("%s_%d_%s", t, now.UnixMilli(), suffix)
}

// Normalize backfills the defaults of a loaded element and its children.
//
// Styles become an empty map when missing. Image elements saved with the
// URL in content get it moved to src. Ids are left alone; see [EnsureIDs].
func Normalize(e Element) Element {
	out := e.Clone()
	if out.Type == TypeImage && out.Src == "" && out.Content != "" {
		out.Src = out.Content
		out.Content = ""
	}
	for i := range out.Children {
		out.Children[i] = Normalize(out.Children[i])
	}
	return out
}

// NormalizeAll normalizes every element of a document.
func NormalizeAll(elems []Element) []Element {
	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = Normalize(e)
	}
	return out
}

// EnsureIDs assigns fresh ids to elements whose id is empty or already used
// earlier in the document, so that every id is unique. It reports whether
// any id changed.
func EnsureIDs(elems []Element, now func() time.Time) bool {
	seen := make(map[string]bool)
	changed := false
	Walk(elems, func(e *Element, _ int) {
		for e.ID == "" || seen[e.ID] {
			e.ID = NewID(e.Type, now())
			changed = true
		}
		seen[e.ID] = true
	})
	return changed
}

// RegenerateIDs replaces every id in the document, as when a template is
// copied into a new project.
func RegenerateIDs(elems []Element, now func() time.Time) {
	seen := make(map[string]bool)
	Walk(elems, func(e *Element, _ int) {
		id := NewID(e.Type, now())
		for seen[id] {
			id = NewID(e.Type, now())
		}
		e.ID = id
		seen[id] = true
	})
}
