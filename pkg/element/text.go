package element

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// TextFromHTML returns the text of an HTML fragment with every tag and
// the bodies of script and style elements removed, and entities decoded.
// It is for callers that know their input is HTML, such as content
// pasted from a web page; stored text is never passed through it.
func TextFromHTML(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(fragment)))
}
