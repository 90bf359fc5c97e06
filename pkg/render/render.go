package render

import (
	"bytes"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/pagesmith/pkg/element"
)

// Mode selects the rendering context.
type Mode int

const (
	// ModePreview renders the read-only page: flow layout, default table.
	ModePreview Mode = iota
	// ModeEdit renders the interactive canvas: every element absolutely
	// positioned at its geometry, tagged with data attributes.
	ModeEdit
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	mode     Mode
	selected string
	viewport Viewport
	title    string
}

// WithMode sets the rendering context. The default is ModePreview.
func WithMode(m Mode) Option { return func(r *renderer) { r.mode = m } }

// WithSelected marks the element with id as selected (edit mode only).
func WithSelected(id string) Option { return func(r *renderer) { r.selected = id } }

// WithViewport sets the page width used by [Page].
func WithViewport(v Viewport) Option { return func(r *renderer) { r.viewport = v } }

// WithTitle sets the page title used by [Page].
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

func newRenderer(opts ...Option) *renderer {
	r := &renderer{mode: ModePreview, viewport: ViewportDesktop}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Node renders one element. It returns nil for hidden elements and for
// types that have no representation.
func Node(e element.Element, opts ...Option) *html.Node {
	return newRenderer(opts...).node(e)
}

// Nodes renders a document in order, skipping elements that paint nothing.
func Nodes(elems []element.Element, opts ...Option) []*html.Node {
	return newRenderer(opts...).nodes(elems)
}

// Fragment writes the rendered document without a surrounding page.
func Fragment(w io.Writer, elems []element.Element, opts ...Option) error {
	for _, n := range Nodes(elems, opts...) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// String renders a document fragment to a string.
func String(elems []element.Element, opts ...Option) string {
	var buf bytes.Buffer
	_ = Fragment(&buf, elems, opts...)
	return buf.String()
}

func (r *renderer) nodes(elems []element.Element) []*html.Node {
	var out []*html.Node
	for _, e := range elems {
		if n := r.node(e); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (r *renderer) node(e element.Element) *html.Node {
	if e.Hidden {
		return nil
	}
	var style element.Styles
	if r.mode == ModePreview {
		style = PreviewStyles(e)
	} else {
		style = e.Styles
	}

	inner := r.variant(e)
	if inner == nil {
		return nil
	}
	if s := style.Inline(); s != "" {
		setAttr(inner, "style", s)
	}
	if r.mode == ModePreview {
		return inner
	}
	return r.positioned(e, inner)
}

// variant builds the element-specific node. Every Type is handled here;
// the default branch covers types this version does not know.
func (r *renderer) variant(e element.Element) *html.Node {
	switch e.Type {
	case element.TypeHeading:
		return textNode(atom.H1, e.Content)
	case element.TypeParagraph:
		return textNode(atom.P, e.Content)
	case element.TypeButton:
		n := textNode(atom.Button, e.Content)
		setAttr(n, "type", "button")
		return n
	case element.TypeImage:
		n := elementNode(atom.Img)
		setAttr(n, "src", e.ImageSource())
		setAttr(n, "alt", e.AltText())
		return n
	case element.TypeInput:
		n := elementNode(atom.Input)
		setAttr(n, "type", e.InputTypeAttr())
		setAttr(n, "placeholder", e.Placeholder)
		return n
	case element.TypeLink:
		n := textNode(atom.A, e.Content)
		setAttr(n, "href", e.Href())
		return n
	case element.TypeYouTube:
		n := elementNode(atom.Iframe)
		setAttr(n, "src", element.EmbedURL(e.VideoURL))
		setAttr(n, "title", "YouTube video")
		setAttr(n, "allow", YouTubeAllow)
		setAttr(n, "allowfullscreen", "")
		return n
	case element.TypeContainer:
		n := elementNode(atom.Div)
		for _, c := range r.nodes(e.Children) {
			n.AppendChild(c)
		}
		return n
	case element.TypeText:
		return textNode(atom.Div, e.Content)
	case element.TypeDivider:
		return elementNode(atom.Hr)
	default:
		return nil
	}
}

// positioned wraps inner in the edit-mode canvas box.
func (r *renderer) positioned(e element.Element, inner *html.Node) *html.Node {
	box := elementNode(atom.Div)
	class := "ps-element"
	if e.ID == r.selected && e.ID != "" {
		class += " ps-selected"
	}
	if e.Locked {
		class += " ps-locked"
	}
	setAttr(box, "class", class)
	setAttr(box, "data-element-id", e.ID)
	setAttr(box, "data-type", string(e.Type))
	if e.Locked {
		setAttr(box, "data-locked", "true")
	}
	setAttr(box, "style", Geometry(e))
	box.AppendChild(inner)
	return box
}

// YouTubeAllow is the permissions attribute given to embedded videos.
const YouTubeAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

// Geometry returns the absolute positioning declarations for e.
func Geometry(e element.Element) string {
	return "position: absolute; left: " + Px(e.X) + "; top: " + Px(e.Y) +
		"; width: " + Px(e.Width) + "; height: " + Px(e.Height)
}

// Px formats a pixel length without trailing zeros.
func Px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func elementNode(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(a atom.Atom, text string) *html.Node {
	n := elementNode(a)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
