package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// newOpts holds the command-line flags for the new command.
type newOpts struct {
	template  string // template name, slug or id; skips the picker
	templates string // seed file to pick from instead of the built-ins
	name      string
	blank     bool
	force     bool
}

// newCommand creates the new command.
func (c *CLI) newCommand() *cobra.Command {
	var opts newOpts

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Start a document from a template",
		Long: `Start a new document. Without --template or --blank an interactive picker
lists the available starter templates.

The document is written to the given file, or to <name>.json.`,
		Example: `  pagesmith new
  pagesmith new site.json --template product-launch --name "Spring Launch"
  pagesmith new --blank --name Notes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runNew(path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template name or id (skips the picker)")
	cmd.Flags().StringVar(&opts.templates, "templates", "", "YAML seed file to choose templates from")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "document name (default: template name)")
	cmd.Flags().BoolVar(&opts.blank, "blank", false, "start from an empty page")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing file")

	completeFlags(cmd, map[string]completeFunc{"template": completeTemplates})
	return cmd
}

func (c *CLI) runNew(path string, opts newOpts) error {
	ts := project.DefaultTemplates()
	if opts.templates != "" {
		loaded, err := project.LoadTemplates(opts.templates)
		if err != nil {
			return err
		}
		ts = loaded
	}

	var chosen *project.Template
	switch {
	case opts.blank:
	case opts.template != "":
		t, ok := findTemplate(ts, opts.template)
		if !ok {
			return errors.New(errors.ErrCodeTemplateNotFound, "no template named %q", opts.template)
		}
		chosen = t
	default:
		final, err := tea.NewProgram(NewTemplateListModel(ts)).Run()
		if err != nil {
			return fmt.Errorf("template picker: %w", err)
		}
		m := final.(TemplateListModel)
		if !m.Selected {
			printInfo("Cancelled")
			return nil
		}
		chosen = m.Template
	}

	doc := newDocument(chosen, opts.name, time.Now)
	if path == "" {
		path = slug.Make(doc.Name) + ".json"
	}
	if !opts.force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeConflict, "%s already exists (use --force to overwrite)", path)
		}
	}
	if err := writeDocument(path, doc); err != nil {
		return err
	}

	if chosen != nil {
		printSuccess("Created %s from %s", StyleHighlight.Render(doc.Name), chosen.Name)
	} else {
		printSuccess("Created blank page %s", StyleHighlight.Render(doc.Name))
	}
	printFile(path)
	printNextStep("Preview it", fmt.Sprintf("%s preview %s --open", appName, path))
	return nil
}

// newDocument copies t's elements under fresh ids. A nil t gives an
// empty page. The name defaults to the template's name.
func newDocument(t *project.Template, name string, now func() time.Time) *document {
	doc := &document{Name: strings.TrimSpace(name), Elements: []element.Element{}}
	if t != nil {
		doc.Elements = element.NormalizeAll(t.Elements)
		element.RegenerateIDs(doc.Elements, now)
		if doc.Name == "" {
			doc.Name = t.Name
		}
	}
	if doc.Name == "" {
		doc.Name = "Untitled"
	}
	return doc
}

// findTemplate matches key against template ids, then names by slug, so
// "Product Launch", "product-launch" and the stored id all work.
func findTemplate(ts []project.Template, key string) (*project.Template, bool) {
	want := slug.Make(key)
	for i := range ts {
		if ts[i].ID != "" && ts[i].ID == key {
			return &ts[i], true
		}
	}
	for i := range ts {
		if slug.Make(ts[i].Name) == want {
			return &ts[i], true
		}
	}
	return nil, false
}
