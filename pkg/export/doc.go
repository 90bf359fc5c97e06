// Package export serializes an element document into downloadable
// artifacts.
//
// Formats:
//   - html: a standalone HTML5 page, one absolutely positioned wrapper per
//     element with the element's styles inline
//   - css: one "#element-{id}" rule per element, kebab-case properties
//   - react: a single-file functional component with style objects
//   - json: the element document itself
//
// Every serializer is a pure function of its input: the same document
// always produces the same bytes, which is what lets [Runner] cache
// artifacts by content hash.
package export
