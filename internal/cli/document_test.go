package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadDocumentObject(t *testing.T) {
	path := writeFile(t, "landing.json", `{
		"name": "Landing",
		"projectId": "p1",
		"elements": [{"id": "heading_1", "type": "heading", "content": "Hi", "x": 1, "y": 2, "width": 3, "height": 4, "styles": {"color": "red"}}]
	}`)

	doc, err := readDocument(path)
	if err != nil {
		t.Fatalf("readDocument() error: %v", err)
	}
	if doc.Name != "Landing" || doc.ProjectID != "p1" {
		t.Errorf("doc = %q/%q, want Landing/p1", doc.Name, doc.ProjectID)
	}
	if len(doc.Elements) != 1 || doc.Elements[0].Styles.Value("color") != "red" {
		t.Errorf("elements = %+v", doc.Elements)
	}
}

func TestReadDocumentBareArray(t *testing.T) {
	path := writeFile(t, "my-page.json", `[{"type": "button", "content": "Go"}]`)

	doc, err := readDocument(path)
	if err != nil {
		t.Fatalf("readDocument() error: %v", err)
	}
	if doc.Name != "my-page" {
		t.Errorf("Name = %q, want %q", doc.Name, "my-page")
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(doc.Elements))
	}
	if doc.Elements[0].ID == "" {
		t.Error("element without id should get one on load")
	}
}

func TestReadDocumentEmptyElements(t *testing.T) {
	path := writeFile(t, "empty.json", `{"name": "Empty"}`)

	doc, err := readDocument(path)
	if err != nil {
		t.Fatalf("readDocument() error: %v", err)
	}
	if doc.Elements == nil {
		t.Error("Elements should be an empty slice, not nil")
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    errors.Code
	}{
		{"bad json", `{"name": `, errors.ErrCodeInvalidFormat},
		{"array of scalars", `[1, 2, 3]`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readDocument(writeFile(t, "doc.json", tt.content))
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}

	_, err := readDocument(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.IsNotFound(err) {
		t.Errorf("missing file: err = %v, want not found", err)
	}
}

func TestWriteDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	doc := &document{
		Name: "Out",
		Elements: []element.Element{{
			ID: "text_1", Type: element.TypeText, Content: "x", Width: 10, Height: 10,
			Styles: element.NewStyles("zIndex", "2", "color", "blue"),
		}},
	}
	if err := writeDocument(path, doc); err != nil {
		t.Fatalf("writeDocument() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"zIndex": "2",`) {
		t.Errorf("style order not preserved:\n%s", data)
	}

	got, err := readDocument(path)
	if err != nil {
		t.Fatalf("readDocument() error: %v", err)
	}
	if got.Name != "Out" || !got.Elements[0].Styles.Equal(doc.Elements[0].Styles) {
		t.Errorf("round trip = %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
