// Package editor holds the state of one editing session.
//
// [Store] is the single source of truth for a document's elements and the
// current selection. It is built for an explicit [Session] (project id and
// name) and mutated only through its operations:
//
//	s := editor.New(editor.Session{ProjectID: id})
//	s.ReplaceAll(project.Elements)
//	btn := s.Add(element.Element{Type: element.TypeButton, Content: "Buy"})
//	s.Update(btn.ID, element.Patch{Styles: element.NewStyles("color", "red")})
//
// Referencing an unknown id is a no-op, never an error.
//
// Persistence is local first. [Syncer] snapshots the store and saves it
// through a [Persister] in the background; failures are reported but the
// in-memory document is never rolled back.
package editor
