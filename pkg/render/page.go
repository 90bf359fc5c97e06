package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// Viewport is a named preview width.
type Viewport string

// Preview viewports.
const (
	ViewportMobile  Viewport = "mobile"
	ViewportTablet  Viewport = "tablet"
	ViewportDesktop Viewport = "desktop"
)

// ParseViewport converts a name to a Viewport; empty means desktop.
func ParseViewport(s string) (Viewport, error) {
	switch v := Viewport(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewportDesktop, nil
	case ViewportMobile, ViewportTablet, ViewportDesktop:
		return v, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown viewport %q (must be one of: mobile, tablet, desktop)", s)
	}
}

// Width returns the CSS width of the viewport.
func (v Viewport) Width() string {
	switch v {
	case ViewportMobile:
		return "375px"
	case ViewportTablet:
		return "768px"
	default:
		return "100%"
	}
}

// EmptyMessage is shown by [Page] for documents with nothing to paint.
const EmptyMessage = "No elements to display"

// Page writes a complete HTML document for elems.
//
// In preview mode the elements flow inside a frame as wide as the viewport.
// In edit mode they are positioned on a canvas tall enough to hold the
// lowest element.
func Page(w io.Writer, elems []element.Element, opts ...Option) error {
	r := newRenderer(opts...)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := elementNode(atom.Html)
	setAttr(root, "lang", "en")
	doc.AppendChild(root)

	head := elementNode(atom.Head)
	root.AppendChild(head)
	meta := elementNode(atom.Meta)
	setAttr(meta, "charset", "utf-8")
	head.AppendChild(meta)
	vp := elementNode(atom.Meta)
	setAttr(vp, "name", "viewport")
	setAttr(vp, "content", "width=device-width, initial-scale=1")
	head.AppendChild(vp)
	title := r.title
	if title == "" {
		title = "Page Preview"
	}
	head.AppendChild(textNode(atom.Title, title))

	body := elementNode(atom.Body)
	setAttr(body, "style", "margin: 0; background-color: #f9fafb")
	root.AppendChild(body)

	frame := elementNode(atom.Main)
	setAttr(frame, "data-viewport", string(r.viewport))
	body.AppendChild(frame)

	children := r.nodes(elems)
	if r.mode == ModeEdit {
		setAttr(frame, "class", "ps-canvas")
		setAttr(frame, "style", fmt.Sprintf(
			"position: relative; width: %s; min-height: %s; margin: 0 auto; background-color: #fff",
			r.viewport.Width(), Px(canvasHeight(elems))))
	} else {
		setAttr(frame, "class", "ps-viewport")
		setAttr(frame, "style", fmt.Sprintf(
			"width: %s; min-height: 100%%; margin: 0 auto; padding: 2rem; background-color: #fff; transition: width 0.3s ease-in-out",
			r.viewport.Width()))
	}
	if len(children) == 0 {
		empty := textNode(atom.P, EmptyMessage)
		setAttr(empty, "class", "ps-empty")
		setAttr(empty, "style", "text-align: center; color: #6b7280; padding: 2rem 0")
		frame.AppendChild(empty)
	}
	for _, c := range children {
		frame.AppendChild(c)
	}

	return html.Render(w, doc)
}

// canvasHeight is the bottom edge of the lowest visible element, at least
// one screen tall.
func canvasHeight(elems []element.Element) float64 {
	h := 600.0
	for _, e := range elems {
		if e.Hidden {
			continue
		}
		h = math.Max(h, e.Y+e.Height)
	}
	return h
}
