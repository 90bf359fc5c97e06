// Package pkg provides the core libraries of Pagesmith, a drag-and-drop
// website builder.
//
// # Overview
//
// A page is a flat list of absolutely positioned elements (headings, text,
// buttons, images, inputs, links, YouTube embeds, containers). The editor
// mutates that list, renderers turn it into a live preview, and exporters
// turn it into files a user can download. The pkg directory is organized
// into four areas:
//
//  1. [element] - The element model, style maps and the style merge engine
//  2. [editor] - The in-memory element store and its background sync
//  3. [render], [export] - Live preview and HTML/CSS/React/JSON export
//  4. [project], [auth], [storage], [session] - Accounts and persistence
//
// # Architecture
//
// The typical data flow:
//
//	User edit (add, move, restyle)
//	         ↓
//	    [editor] Store (merge patch, emit change)
//	         ↓                       ↘
//	    [render] Page (preview)      [editor] Syncer → [project] Service → [storage]
//	         ↓
//	    [export] Runner (cache → HTML / CSS / React / JSON)
//
// # Quick Start
//
// Build a page and export it:
//
//	store := editor.New(editor.Session{ProjectName: "Landing"})
//	btn := store.Add(element.Element{Type: element.TypeButton, Content: "Sign up"})
//	store.Update(btn.ID, element.Patch{Styles: element.NewStyles("backgroundColor", "blue")})
//
//	runner := export.NewRunner(cache.NewMemoryCache(), nil, nil)
//	a, _, err := runner.Export(ctx, store.Elements(), export.Options{Format: export.FormatHTML})
//
// # Main Packages
//
// [element] - Element records, insertion-ordered [element.Styles], partial
// updates ([element.Patch]) and document validation.
//
// [editor] - The single source of truth while editing. [editor.Syncer]
// persists snapshots through any [editor.Persister], such as the API
// [client] or a [project.Service].
//
// [render] - Preview and canvas rendering to an HTML node tree, with mobile,
// tablet and desktop viewports.
//
// [export] - Standalone HTML documents, CSS rule sets, React components and
// JSON, with a content-addressed artifact [cache].
//
// [project] - Owner-scoped projects, element operations and the template
// gallery, over any [project.Repository].
//
// [storage] - Repository backends: memory, MongoDB and SQLite.
//
// [auth], [session] - Password accounts and bearer-token sessions.
//
// [client] - HTTP client for the REST API served by internal/api.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by every layer; the API maps codes to
// HTTP statuses.
//
// [observability] - Hook registry for HTTP, export, cache and sync events.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/storage/...            # Storage backends (memory, sqlite)
//	MONGODB_URI=mongodb://localhost go test ./pkg/storage/mongo
package pkg
