// Package element defines the canvas document model.
//
// A document is an ordered slice of [Element] values. Each element has a
// closed [Type] tag that selects how renderers and exporters treat it, pixel
// geometry, an ordered [Styles] map of CSS declarations, and a handful of
// type-specific fields (src, alt, url, videoUrl, placeholder, inputType).
// Containers carry child elements; the builder only produces flat documents
// but every consumer in this module walks children recursively.
//
// # Style merging
//
// [Merge] applies a [Patch] to an element without touching its inputs: style
// keys are merged one by one (last write wins), every other field present in
// the patch replaces the element's value.
//
//	updated := element.Merge(el, element.Patch{
//	    Styles: element.NewStyles("color", "red"),
//	})
//
// # Ordering
//
// Style key order is part of the document: exporters must produce
// byte-identical output for identical input, so [Styles] remembers insertion
// order through JSON, BSON and YAML round trips.
//
// # Validation
//
// The model itself accepts anything (unknown types render as nothing).
// [ValidateDocument] is applied at the persistence boundary and rejects
// duplicate ids, malformed style names, style values that would break out of
// a declaration, and unsafe URLs.
package element
