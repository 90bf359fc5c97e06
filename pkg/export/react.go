package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/render"
)

// React writes a single-file functional component that reproduces the
// HTML export's structure. All text and attribute values are emitted as
// JavaScript string literals inside JSX expressions, so content needs no
// JSX escaping.
func React(elems []element.Element, name string) []byte {
	var buf bytes.Buffer
	buf.WriteString("import React from \"react\";\n\n")
	fmt.Fprintf(&buf, "export default function %s() {\n", name)
	buf.WriteString("  return (\n")
	buf.WriteString("    <div className=\"container\" style={{ position: \"relative\", width: \"100%\", minHeight: \"100vh\" }}>\n")
	for _, e := range visible(elems) {
		writeJSXWrapper(&buf, e, 3)
	}
	buf.WriteString("    </div>\n")
	buf.WriteString("  );\n")
	buf.WriteString("}\n")
	return buf.Bytes()
}

func writeJSXWrapper(buf *bytes.Buffer, e element.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	geom := element.NewStyles(
		"position", "absolute",
		"left", render.Px(e.X),
		"top", render.Px(e.Y),
		"width", render.Px(e.Width),
		"height", render.Px(e.Height),
	)
	fmt.Fprintf(buf, "%s<div id={%s} style={%s}>\n", indent, jsString("element-"+e.ID), jsStyle(geom))
	if e.Type == element.TypeContainer {
		inner := indent + "  "
		children := visible(e.Children)
		if len(children) == 0 {
			fmt.Fprintf(buf, "%s<div style={%s} />\n", inner, jsStyle(e.Styles))
		} else {
			fmt.Fprintf(buf, "%s<div style={%s}>\n", inner, jsStyle(e.Styles))
			for _, c := range children {
				writeJSXWrapper(buf, c, depth+2)
			}
			fmt.Fprintf(buf, "%s</div>\n", inner)
		}
	} else if jsx := innerJSX(e); jsx != "" {
		fmt.Fprintf(buf, "%s  %s\n", indent, jsx)
	}
	fmt.Fprintf(buf, "%s</div>\n", indent)
}

func innerJSX(e element.Element) string {
	style := " style={" + jsStyle(e.Styles) + "}"
	text := "{" + jsString(e.Content) + "}"

	switch e.Type {
	case element.TypeHeading:
		return "<h1" + style + ">" + text + "</h1>"
	case element.TypeParagraph:
		return "<p" + style + ">" + text + "</p>"
	case element.TypeButton:
		return "<button type=\"button\"" + style + ">" + text + "</button>"
	case element.TypeImage:
		return fmt.Sprintf("<img src={%s} alt={%s}%s />", jsString(e.ImageSource()), jsString(e.AltText()), style)
	case element.TypeInput:
		return fmt.Sprintf("<input type={%s} placeholder={%s}%s />", jsString(e.InputTypeAttr()), jsString(e.Placeholder), style)
	case element.TypeLink:
		return fmt.Sprintf("<a href={%s}%s>%s</a>", jsString(e.Href()), style, text)
	case element.TypeYouTube:
		return fmt.Sprintf("<iframe src={%s} title=\"YouTube video\"%s frameBorder=\"0\" allow={%s} allowFullScreen />",
			jsString(element.EmbedURL(e.VideoURL)), style, jsString(render.YouTubeAllow))
	case element.TypeText:
		return "<div" + style + ">" + text + "</div>"
	case element.TypeDivider:
		return "<hr" + style + " />"
	default:
		return ""
	}
}

// jsStyle renders styles as an object literal with camelCase keys.
func jsStyle(s element.Styles) string {
	if s.Len() == 0 {
		return "{}"
	}
	parts := make([]string, 0, s.Len())
	s.Each(func(k, v string) {
		parts = append(parts, jsString(element.JSName(k))+": "+jsString(v))
	})
	return "{ " + strings.Join(parts, ", ") + " }"
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
