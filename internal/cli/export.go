package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/export"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output    string // output file, "-" for stdout, or base path for multiple formats
	formats   []export.Format
	title     string
	component string
	noCache   bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr string
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a document as HTML, CSS, React or JSON",
		Long: `Export a document to one or more artifact formats.

Without --output each artifact is written to the current directory under its
default name (index.html, styles.css, <Component>.jsx, design.json).`,
		Example: `  pagesmith export page.json
  pagesmith export page.json -f html,css
  pagesmith export page.json -f react --component Landing -o Landing.jsx
  pagesmith export page.json -f css -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			if opts.output == "-" && len(formats) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(formats))
			}
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "html", "export format(s): html, css, react, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, '-' for stdout, or base path (multiple formats)")
	cmd.Flags().StringVar(&opts.title, "title", "", "HTML document title (default: document name)")
	cmd.Flags().StringVar(&opts.component, "component", "", "React component name (default: derived from title)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the export cache")

	completeFlags(cmd, map[string]completeFunc{"format": completeFormats})
	return cmd
}

// parseFormats parses the --format flag into export formats, dropping
// duplicates. Aliases such as jsx resolve to their canonical format.
func parseFormats(s string) ([]export.Format, error) {
	var out []export.Format
	seen := map[export.Format]bool{}
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no export format given")
	}
	return out, nil
}

func (c *CLI) runExport(ctx context.Context, path string, opts exportOpts) error {
	prog := newProgress(c.Logger)

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	runner, err := c.newExportRunner(opts.noCache)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = doc.Name
	}

	for _, f := range opts.formats {
		a, hit, err := runner.Export(ctx, doc.Elements, export.Options{
			Format:    f,
			Title:     title,
			Component: opts.component,
		})
		if err != nil {
			return err
		}
		c.Logger.Debug("exported", "format", f, "bytes", len(a.Content), "cached", hit)

		if opts.output == "-" {
			_, err := os.Stdout.Write(a.Content)
			return err
		}

		out := exportPath(opts.output, a, len(opts.formats) > 1)
		if err := os.WriteFile(out, a.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printExported(a, hit)
		printFile(out)
	}

	prog.done(fmt.Sprintf("Exported %d elements", len(doc.Elements)))
	return nil
}

// exportPath picks the file an artifact is written to. With several formats
// the output flag is a base path and each artifact keeps its extension.
func exportPath(output string, a export.Artifact, multi bool) string {
	switch {
	case output == "":
		return a.Filename
	case multi:
		base := strings.TrimSuffix(output, filepath.Ext(output))
		return base + filepath.Ext(a.Filename)
	default:
		return output
	}
}
