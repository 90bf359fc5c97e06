package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/matzehuels/pagesmith/pkg/editor"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// remoteCommand creates the remote command with its subcommands.
func (c *CLI) remoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Sync documents with a pagesmith server",
		Long: `Log in to a pagesmith server, then pull projects into local documents and
push local edits back.

A pulled document remembers its project id, so a later push updates the same
project. Pushing a document without one creates a new project.`,
	}

	cmd.AddCommand(c.remoteLoginCommand())
	cmd.AddCommand(c.remoteLogoutCommand())
	cmd.AddCommand(c.remoteWhoamiCommand())
	cmd.AddCommand(c.remoteListCommand())
	cmd.AddCommand(c.remotePullCommand())
	cmd.AddCommand(c.remotePushCommand())
	cmd.AddCommand(c.remoteDeleteCommand())
	cmd.AddCommand(c.remoteExportCommand())
	cmd.AddCommand(c.remoteTemplatesCommand())

	return cmd
}

func (c *CLI) remoteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your projects on the server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}
			ps, err := cl.ListProjects(ctx)
			if err != nil {
				return err
			}
			if len(ps) == 0 {
				printInfo("No projects yet")
				printNextStep("Push a document", appName+" remote push page.json")
				return nil
			}

			rows := make([][]string, 0, len(ps))
			for _, p := range ps {
				rows = append(rows, []string{
					p.ID, p.Name, fmt.Sprint(len(p.Elements)), p.LastModified.Local().Format("Jan 2 15:04"),
				})
			}
			fmt.Println(listTable([]string{"ID", "Name", "Elements", "Modified"}, rows))
			return nil
		},
	}
}

func (c *CLI) remotePullCommand() *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "pull [project-id]",
		Short: "Download a project into a local document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}

			store := editor.New(editor.Session{ProjectID: args[0]})
			if err := editor.Load(ctx, store, cl); err != nil {
				return err
			}
			doc := &document{
				Name:      store.Session().ProjectName,
				ProjectID: args[0],
				Elements:  store.Elements(),
			}
			if output == "" {
				output = slug.Make(doc.Name) + ".json"
			}
			if !force {
				if _, err := os.Stat(output); err == nil {
					return errors.New(errors.ErrCodeConflict, "%s already exists (use --force to overwrite)", output)
				}
			}
			if err := writeDocument(output, doc); err != nil {
				return err
			}
			printSuccess("Pulled %s (%d elements)", StyleHighlight.Render(doc.Name), len(doc.Elements))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "document file (default: <name>.json)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) remotePushCommand() *cobra.Command {
	var projectID, name string

	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Upload a local document to the server",
		Long: `Upload a local document. A document pulled from the server (or given
--project) replaces that project's elements; any other document becomes a
new project and the file is updated with its id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if projectID != "" {
				doc.ProjectID = projectID
			}
			if name != "" {
				doc.Name = name
			}
			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}

			if doc.ProjectID == "" {
				p, err := cl.CreateProject(ctx, project.CreateRequest{Name: doc.Name, Elements: doc.Elements})
				if err != nil {
					return err
				}
				doc.ProjectID = p.ID
				if err := writeDocument(args[0], doc); err != nil {
					return err
				}
				printSuccess("Created project %s", StyleHighlight.Render(p.Name))
				printKeyValue("ID", p.ID)
				return nil
			}

			if name != "" {
				if _, err := cl.SaveProject(ctx, doc.ProjectID, project.SaveRequest{Name: &doc.Name, Elements: doc.Elements}); err != nil {
					return err
				}
			} else if err := c.pushElements(ctx, cl, doc); err != nil {
				return err
			}
			if projectID != "" {
				if err := writeDocument(args[0], doc); err != nil {
					return err
				}
			}
			printSuccess("Pushed %s (%d elements)", StyleHighlight.Render(doc.Name), len(doc.Elements))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id to update (remembered in the document)")
	cmd.Flags().StringVar(&name, "name", "", "rename the project")
	return cmd
}

// pushElements saves doc through a syncer and waits for the result.
func (c *CLI) pushElements(ctx context.Context, p editor.Persister, doc *document) error {
	var (
		mu   sync.Mutex
		errs error
	)
	store := storeFor(doc)
	syncer := editor.NewSyncer(store, p,
		editor.WithLogger(c.Logger),
		editor.WithNotifier(func(err error) {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
		}))

	spinner := newSpinnerWithContext(ctx, "Pushing "+doc.Name+"...")
	spinner.Start()
	syncer.Save(ctx)
	syncer.Wait()
	spinner.Stop()
	return errs
}

func (c *CLI) remoteDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [project-id]",
		Aliases: []string{"rm"},
		Short:   "Delete a project on the server",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}
			if err := cl.DeleteProject(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

func (c *CLI) remoteExportCommand() *cobra.Command {
	var formatStr, output string

	cmd := &cobra.Command{
		Use:   "export [project-id]",
		Short: "Export a stored project on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}
			data, err := cl.Export(ctx, args[0], format)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if output == "" {
				output = defaultFilename(format)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %s", format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatStr, "format", "f", "html", "export format: html, css, react, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or '-' for stdout")
	completeFlags(cmd, map[string]completeFunc{"format": completeFormats})
	return cmd
}

// defaultFilename names a server export written without --output.
func defaultFilename(f export.Format) string {
	switch f {
	case export.FormatCSS:
		return "styles.css"
	case export.FormatReact:
		return export.DefaultComponent + ".jsx"
	case export.FormatJSON:
		return "design.json"
	default:
		return "index.html"
	}
}

func (c *CLI) remoteTemplatesCommand() *cobra.Command {
	var use, name string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List server templates, or create a project from one",
		Example: `  pagesmith remote templates
  pagesmith remote templates --use 3f2a... --name "My Portfolio"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			_, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}

			if use != "" {
				p, err := cl.CreateFromTemplate(ctx, use, name)
				if err != nil {
					return err
				}
				printSuccess("Created project %s", StyleHighlight.Render(p.Name))
				printKeyValue("ID", p.ID)
				printNextStep("Pull it", fmt.Sprintf("%s remote pull %s", appName, p.ID))
				return nil
			}

			ts, err := cl.ListTemplates(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ts))
			for _, t := range ts {
				rows = append(rows, []string{t.ID, t.Name, string(t.Category), truncate(t.Description, 40)})
			}
			fmt.Println(listTable([]string{"ID", "Name", "Category", "Description"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&use, "use", "", "template id to create a project from")
	cmd.Flags().StringVar(&name, "name", "", "name of the new project (default: template name)")
	return cmd
}

// listTable renders a plain bordered table.
func listTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
