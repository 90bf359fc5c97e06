package project

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pagesmith/pkg/errors"
)

//go:embed templates.yaml
var defaultTemplates []byte

// seedFile is the layout of a template seed file.
type seedFile struct {
	Templates []Template `yaml:"templates"`
}

// ReadTemplates decodes a YAML seed file. Unknown keys are rejected so that
// typos in hand-written seeds surface instead of being dropped.
func ReadTemplates(r io.Reader) ([]Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []Template{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse template seed")
	}
	if f.Templates == nil {
		f.Templates = []Template{}
	}
	return f.Templates, nil
}

// LoadTemplates reads a seed file from disk.
func LoadTemplates(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open template seed %s", path)
	}
	defer f.Close()
	return ReadTemplates(f)
}

// DefaultTemplates returns the built-in starter templates.
func DefaultTemplates() []Template {
	ts, err := ReadTemplates(bytes.NewReader(defaultTemplates))
	if err != nil {
		panic("project: built-in templates: " + err.Error())
	}
	return ts
}

// WriteTemplates encodes templates in the seed file layout.
func WriteTemplates(w io.Writer, ts []Template) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seedFile{Templates: ts}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode templates")
	}
	return enc.Close()
}
