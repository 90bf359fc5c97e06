package element

import (
	"sort"
	"strings"
)

// CSSName converts a style key to its CSS property name.
//
//	backgroundColor  -> background-color
//	WebkitTransform  -> -webkit-transform
//	msTransform      -> -ms-transform
//	font-size        -> font-size
//	--brand-color    -> --brand-color
func CSSName(key string) string {
	if strings.HasPrefix(key, "--") || strings.ContainsRune(key, '-') {
		return key
	}
	var b strings.Builder
	if strings.HasPrefix(key, "ms") && len(key) > 2 && isUpper(key[2]) {
		b.WriteByte('-')
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if isUpper(c) {
			b.WriteByte('-')
			b.WriteByte(c + ('a' - 'A'))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// JSName converts a style key to its camelCase DOM style name.
// Custom properties are returned unchanged.
//
//	background-color  -> backgroundColor
//	-webkit-transform -> WebkitTransform
//	-ms-transform     -> msTransform
func JSName(key string) string {
	if strings.HasPrefix(key, "--") || !strings.ContainsRune(key, '-') {
		return key
	}
	if strings.HasPrefix(key, "-ms-") {
		key = key[1:]
	}
	var b strings.Builder
	upper := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '-' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// knownProperties lists the style keys the inspector offers, in camelCase.
var knownProperties = map[string]bool{
	"position": true, "top": true, "right": true, "bottom": true, "left": true,
	"width": true, "height": true, "minWidth": true, "maxWidth": true,
	"minHeight": true, "maxHeight": true, "margin": true, "padding": true,
	"display": true, "flexDirection": true, "justifyContent": true,
	"alignItems": true, "gap": true, "backgroundColor": true, "color": true,
	"fontSize": true, "fontWeight": true, "fontFamily": true, "fontStyle": true,
	"lineHeight": true, "letterSpacing": true, "textAlign": true,
	"textDecoration": true, "textTransform": true, "borderRadius": true,
	"border": true, "borderColor": true, "borderWidth": true, "borderStyle": true,
	"boxShadow": true, "opacity": true, "transform": true, "transition": true,
	"zIndex": true, "overflow": true, "backgroundImage": true,
	"backgroundSize": true, "backgroundPosition": true, "backgroundRepeat": true,
	"cursor": true, "objectFit": true,
}

// IsKnownProperty reports whether key (in either spelling) is one of the
// properties the builder's inspector edits. Other keys are still legal.
func IsKnownProperty(key string) bool {
	return knownProperties[JSName(key)]
}

// KnownProperties returns the inspector's style keys, sorted.
func KnownProperties() []string {
	out := make([]string, 0, len(knownProperties))
	for k := range knownProperties {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
