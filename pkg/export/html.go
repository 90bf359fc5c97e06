package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/render"
)

const htmlBaseCSS = `    body {
      margin: 0;
      padding: 0;
      font-family: Arial, sans-serif;
    }
    .container {
      position: relative;
      width: 100%;
      min-height: 100vh;
    }
`

// HTML writes a standalone HTML5 document. Each visible element becomes a
// <div id="element-{id}"> absolutely positioned at its geometry, holding the
// type-specific markup with the element's styles inline.
func HTML(elems []element.Element, title string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	buf.WriteString("<html lang=\"en\">\n")
	buf.WriteString("<head>\n")
	buf.WriteString("  <meta charset=\"UTF-8\">\n")
	buf.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("  <style>\n")
	buf.WriteString(htmlBaseCSS)
	buf.WriteString("  </style>\n")
	buf.WriteString("</head>\n")
	buf.WriteString("<body>\n")
	buf.WriteString("  <div class=\"container\">\n")
	for _, e := range visible(elems) {
		writeWrapper(&buf, e, 2)
	}
	buf.WriteString("  </div>\n")
	buf.WriteString("</body>\n")
	buf.WriteString("</html>\n")
	return buf.Bytes()
}

func writeWrapper(buf *bytes.Buffer, e element.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(buf, "%s<div id=\"element-%s\" style=\"%s\">", indent, html.EscapeString(e.ID), html.EscapeString(geometry(e)))
	if e.Type == element.TypeContainer {
		writeContainer(buf, e, depth)
	} else {
		buf.WriteString(innerHTML(e))
	}
	buf.WriteString("</div>\n")
}

func writeContainer(buf *bytes.Buffer, e element.Element, depth int) {
	children := visible(e.Children)
	if len(children) == 0 {
		fmt.Fprintf(buf, "<div%s></div>", styleAttr(e))
		return
	}
	fmt.Fprintf(buf, "<div%s>\n", styleAttr(e))
	for _, c := range children {
		writeWrapper(buf, c, depth+1)
	}
	fmt.Fprintf(buf, "%s</div>", strings.Repeat("  ", depth))
}

// geometry returns the wrapper's positioning declarations.
func geometry(e element.Element) string {
	return fmt.Sprintf("position: absolute; left: %s; top: %s; width: %s; height: %s",
		render.Px(e.X), render.Px(e.Y), render.Px(e.Width), render.Px(e.Height))
}

// innerHTML returns the markup for a non-container element. Unknown types
// produce an empty string.
func innerHTML(e element.Element) string {
	text := html.EscapeString(e.Content)
	style := styleAttr(e)

	switch e.Type {
	case element.TypeHeading:
		return "<h1" + style + ">" + text + "</h1>"
	case element.TypeParagraph:
		return "<p" + style + ">" + text + "</p>"
	case element.TypeButton:
		return "<button type=\"button\"" + style + ">" + text + "</button>"
	case element.TypeImage:
		return fmt.Sprintf("<img src=\"%s\" alt=\"%s\"%s>",
			html.EscapeString(e.ImageSource()), html.EscapeString(e.AltText()), style)
	case element.TypeInput:
		return fmt.Sprintf("<input type=\"%s\" placeholder=\"%s\"%s>",
			html.EscapeString(e.InputTypeAttr()), html.EscapeString(e.Placeholder), style)
	case element.TypeLink:
		return fmt.Sprintf("<a href=\"%s\"%s>%s</a>", html.EscapeString(e.Href()), style, text)
	case element.TypeYouTube:
		return fmt.Sprintf("<iframe src=\"%s\" title=\"YouTube video\"%s frameborder=\"0\" allow=\"%s\" allowfullscreen></iframe>",
			html.EscapeString(element.EmbedURL(e.VideoURL)), style, render.YouTubeAllow)
	case element.TypeContainer:
		return "<div" + style + "></div>"
	case element.TypeText:
		return "<div" + style + ">" + text + "</div>"
	case element.TypeDivider:
		return "<hr" + style + ">"
	default:
		return ""
	}
}

func styleAttr(e element.Element) string {
	s := StyleString(e.Styles)
	if s == "" {
		return ""
	}
	return " style=\"" + html.EscapeString(s) + "\""
}

