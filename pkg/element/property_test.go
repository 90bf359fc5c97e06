package element

import (
	"sort"
	"testing"
)

func TestCSSName(t *testing.T) {
	tests := map[string]string{
		"color":           "color",
		"backgroundColor": "background-color",
		"zIndex":          "z-index",
		"WebkitTransform": "-webkit-transform",
		"msTransform":     "-ms-transform",
		"font-size":       "font-size",
		"--brand-color":   "--brand-color",
	}
	for in, want := range tests {
		if got := CSSName(in); got != want {
			t.Errorf("CSSName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJSName(t *testing.T) {
	tests := map[string]string{
		"color":             "color",
		"background-color":  "backgroundColor",
		"z-index":           "zIndex",
		"-webkit-transform": "WebkitTransform",
		"-ms-transform":     "msTransform",
		"fontSize":          "fontSize",
		"--brand-color":     "--brand-color",
	}
	for in, want := range tests {
		if got := JSName(in); got != want {
			t.Errorf("JSName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameConversionRoundTrip(t *testing.T) {
	for _, k := range []string{"backgroundColor", "zIndex", "borderRadius", "WebkitTransform", "msTransform"} {
		if got := JSName(CSSName(k)); got != k {
			t.Errorf("JSName(CSSName(%q)) = %q", k, got)
		}
	}
}

func TestIsKnownProperty(t *testing.T) {
	if !IsKnownProperty("fontSize") || !IsKnownProperty("font-size") {
		t.Error("fontSize should be known in both spellings")
	}
	if IsKnownProperty("gridTemplateAreas") {
		t.Error("gridTemplateAreas should not be a known inspector property")
	}
}

func TestKnownProperties(t *testing.T) {
	keys := KnownProperties()
	if !sort.StringsAreSorted(keys) {
		t.Error("KnownProperties() not sorted")
	}
	for _, k := range keys {
		if !IsKnownProperty(k) {
			t.Errorf("IsKnownProperty(%q) = false", k)
		}
	}
}
