// Package project holds the persisted records (users, projects, templates),
// the storage interfaces they live behind, and the [Service] that
// implements project and template operations.
//
// Every project operation is scoped to its owner: a project that exists
// but belongs to someone else is reported as not found. Documents are
// normalized, stripped of markup and validated by the service before they
// are stored, so backends store what they are given.
//
// Templates are seeded from YAML:
//
//	templates:
//	  - name: Product Launch
//	    category: landing
//	    elements:
//	      - type: heading
//	        content: Hello
//	        x: 80
//	        y: 60
//	        width: 640
//	        height: 64
//	        styles:
//	          fontSize: 48px
package project
