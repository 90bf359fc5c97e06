package render

import "github.com/matzehuels/pagesmith/pkg/element"

// previewDefaults is applied in preview mode for every property the element
// does not set. Order is the order fallbacks are appended in.
var previewDefaults = []struct{ key, value string }{
	{"position", "relative"},
	{"width", "100%"},
	{"height", "auto"},
	{"margin", "0"},
	{"padding", "0"},
	{"display", "block"},
	{"flexDirection", "row"},
	{"justifyContent", "flex-start"},
	{"alignItems", "stretch"},
	{"gap", "0"},
	{"backgroundColor", "transparent"},
	{"color", "inherit"},
	{"fontSize", "inherit"},
	{"fontWeight", "normal"},
	{"textAlign", "left"},
	{"borderRadius", "0"},
	{"border", "none"},
	{"boxShadow", "none"},
	{"opacity", "1"},
	{"transform", "none"},
	{"transition", forcedTransition},
	{"zIndex", "auto"},
	{"overflow", "visible"},
	{"backgroundImage", "none"},
	{"backgroundSize", "cover"},
	{"backgroundPosition", "center"},
	{"backgroundRepeat", "no-repeat"},
	{"minWidth", "auto"},
	{"maxWidth", "none"},
	{"minHeight", "auto"},
	{"maxHeight", "none"},
}

const forcedTransition = "all 0.3s ease"

// typeDefaults override entries of previewDefaults for one element type.
var typeDefaults = map[element.Type]map[string]string{
	element.TypeHeading: {"fontWeight": "bold"},
}

// PreviewStyles returns the computed preview styles of e.
//
// The element's own declarations come first, in their order, with keys in
// camelCase; empty values count as unset. Every table property the element
// leaves unset follows in table order. transition is always forced to
// "all 0.3s ease". The element is not modified.
func PreviewStyles(e element.Element) element.Styles {
	var out element.Styles
	e.Styles.Each(func(k, v string) {
		if v == "" {
			return
		}
		out.Set(element.JSName(k), v)
	})
	if _, ok := out.Get("transition"); ok {
		out.Set("transition", forcedTransition)
	}

	overrides := typeDefaults[e.Type]
	for _, d := range previewDefaults {
		if _, ok := out.Get(d.key); ok {
			continue
		}
		v := d.value
		if o, ok := overrides[d.key]; ok {
			v = o
		}
		out.Set(d.key, v)
	}
	return out
}
