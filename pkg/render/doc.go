// Package render is the live renderer: it maps elements to HTML nodes for
// the interactive canvas and for the read-only page preview.
//
// # Contexts
//
// [ModePreview] renders elements in document order as flowing blocks. Each
// node receives the element's styles completed from a fixed default table
// (see [PreviewStyles]); the table is applied at render time and never
// written back to the element.
//
// [ModeEdit] places every element absolutely at its x/y/width/height inside
// a canvas box carrying data-element-id, data-type and data-locked
// attributes, so a client can map clicks back to the Element Store.
// Locked elements are painted normally; refusing edits is up to the caller.
//
// # Variants
//
//	heading    <h1>
//	paragraph  <p>
//	button     <button>
//	image      <img src alt>       (alt defaults to "Image")
//	input      <input type placeholder>
//	link       <a href>            (href defaults to "#")
//	youtube    <iframe>            (watch links become embed links)
//	container  <div> with children rendered recursively
//	text       <div>
//	divider    <hr>
//
// Hidden elements and unknown types paint nothing.
//
//	var buf bytes.Buffer
//	err := render.Page(&buf, elems,
//	    render.WithViewport(render.ViewportMobile),
//	    render.WithTitle(project.Name))
package render
