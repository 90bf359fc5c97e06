package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/pagesmith/pkg/editor"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// document is the on-disk form of a page: a name, the remote project it
// was pulled from (if any) and its elements.
type document struct {
	Name      string            `json:"name"`
	ProjectID string            `json:"projectId,omitempty"`
	Elements  []element.Element `json:"elements"`
}

// readDocument loads a document file. A bare JSON array of elements is
// accepted too; its name is taken from the file name.
func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read document %s", path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		store := editor.New(editor.Session{})
		if !store.LoadJSON(trimmed) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: not an array of element records", path)
		}
		return &document{Name: nameFromPath(path), Elements: store.Elements()}, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse document %s", path)
	}
	if doc.Name == "" {
		doc.Name = nameFromPath(path)
	}
	if doc.Elements == nil {
		doc.Elements = []element.Element{}
	}
	return &doc, nil
}

// writeDocument writes doc atomically: to a temp file, then renamed.
func writeDocument(path string, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pagesmith-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// storeFor opens an editor store over doc's elements.
func storeFor(doc *document) *editor.Store {
	s := editor.New(editor.Session{ProjectID: doc.ProjectID, ProjectName: doc.Name}, editor.WithClock(time.Now))
	s.ReplaceAll(doc.Elements)
	return s
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
