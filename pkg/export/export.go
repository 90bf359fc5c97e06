package export

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/gosimple/slug"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// Format names an export target.
type Format string

// Supported formats.
const (
	FormatHTML  Format = "html"
	FormatCSS   Format = "css"
	FormatReact Format = "react"
	FormatJSON  Format = "json"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatHTML, FormatCSS, FormatReact, FormatJSON}

// ParseFormat resolves a format name. Aliases: jsx, component → react.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatHTML, FormatCSS, FormatReact, FormatJSON:
		return f, nil
	case "jsx", "component":
		return FormatReact, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported export format %q (must be one of: html, css, react, json)", name)
	}
}

// Artifact is an export result ready to be offered as a download.
type Artifact struct {
	Format   Format `json:"format"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Content  []byte `json:"content"`
}

// Default artifact metadata.
const (
	DefaultTitle     = "Exported Design"
	DefaultComponent = "ExportedPage"
)

// Options control an export.
type Options struct {
	Format Format
	// Title is the HTML document title.
	Title string
	// Component is the component name for FormatReact. When empty it is
	// derived from Title.
	Component string
}

// ValidateAndSetDefaults checks the format and fills in names.
func (o *Options) ValidateAndSetDefaults() error {
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if strings.TrimSpace(o.Title) == "" {
		o.Title = DefaultTitle
	}
	if o.Component == "" {
		o.Component = ComponentName(o.Title)
	}
	return nil
}

// Render serializes elems in the requested format. The output depends only
// on elems and opts. Unknown formats fail with
// [errors.ErrCodeUnsupportedFormat].
func Render(elems []element.Element, opts Options) (Artifact, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Artifact{}, err
	}
	var content []byte
	switch opts.Format {
	case FormatHTML:
		content = HTML(elems, opts.Title)
	case FormatCSS:
		content = CSS(elems)
	case FormatReact:
		content = React(elems, opts.Component)
	case FormatJSON:
		data, err := JSON(elems)
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeInternal, err, "encode elements")
		}
		content = data
	default:
		return Artifact{}, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported export format %q", opts.Format)
	}
	return newArtifact(opts, content), nil
}

// newArtifact attaches download metadata to content. opts must be
// validated.
func newArtifact(opts Options, content []byte) Artifact {
	a := Artifact{Format: opts.Format, Content: content}
	switch opts.Format {
	case FormatHTML:
		a.Filename, a.MIMEType = "export.html", "text/html"
	case FormatCSS:
		a.Filename, a.MIMEType = "styles.css", "text/css"
	case FormatReact:
		a.Filename, a.MIMEType = opts.Component+".jsx", "text/javascript"
	case FormatJSON:
		a.Filename, a.MIMEType = "elements.json", "application/json"
	}
	return a
}

// StyleString joins styles as "prop: value" pairs separated by "; " in
// insertion order.
func StyleString(s element.Styles) string { return s.Inline() }

// JSON encodes the element document, indented.
func JSON(elems []element.Element) ([]byte, error) {
	if elems == nil {
		elems = []element.Element{}
	}
	data, err := json.MarshalIndent(elems, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ComponentName derives a PascalCase identifier from a title.
//
//	"My Landing Page" -> "MyLandingPage"
//	"2024 launch"     -> "Page2024Launch"
//	""                -> "ExportedPage"
func ComponentName(title string) string {
	var b strings.Builder
	for _, part := range strings.Split(slug.Make(title), "-") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	name := b.String()
	switch {
	case name == "":
		return DefaultComponent
	case unicode.IsDigit([]rune(name)[0]):
		return "Page" + name
	default:
		return name
	}
}

// visible returns the elements that paint, keeping order.
func visible(elems []element.Element) []element.Element {
	out := make([]element.Element, 0, len(elems))
	for _, e := range elems {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}
