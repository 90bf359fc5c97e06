package cli

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/render"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output   string
		viewport string
		edit     bool
		selected string
		open     bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render a document as a standalone preview page",
		Long: `Render a document the way the editor's preview shows it.

The --viewport flag sets the frame width: mobile (375px), tablet (768px) or
desktop (full width). With --edit the canvas view is rendered instead, with
every element at its stored position.`,
		Example: `  pagesmith preview page.json --viewport mobile --open
  pagesmith preview page.json --edit --select button_1700000000000 -o canvas.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := render.ParseViewport(viewport)
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newExportRunner(noCache)
			if err != nil {
				return err
			}
			page, _, err := runner.Preview(cmd.Context(), doc.Elements, export.PreviewOptions{
				Viewport: vp,
				Title:    doc.Name,
				Edit:     edit,
				Selected: selected,
			})
			if err != nil {
				return fmt.Errorf("render preview: %w", err)
			}

			if output == "" {
				output = doc.Name + "-preview.html"
			}
			if output == "-" {
				_, err := os.Stdout.Write(page)
				return err
			}
			if err := os.WriteFile(output, page, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			c.Logger.Debug("rendered preview", "viewport", vp, "elements", len(doc.Elements))
			printSuccess("Rendered %s preview (%s)", vp, vp.Width())
			printFile(output)

			if open {
				abs, err := filepath.Abs(output)
				if err != nil {
					return err
				}
				if err := openBrowser((&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()); err != nil {
					printWarning("Could not open browser: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or '-' for stdout (default: <name>-preview.html)")
	cmd.Flags().StringVar(&viewport, "viewport", "desktop", "preview width: mobile, tablet, desktop")
	cmd.Flags().BoolVar(&edit, "edit", false, "render the positioned editing canvas")
	cmd.Flags().StringVar(&selected, "select", "", "element id to mark as selected (with --edit)")
	cmd.Flags().BoolVar(&open, "open", false, "open the preview in a browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the preview cache")

	completeFlags(cmd, map[string]completeFunc{"viewport": completeViewports})
	return cmd
}

// openBrowser opens the URL in the user's default browser.
// Only http, https and file URLs are accepted.
func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "file":
	default:
		return fmt.Errorf("URL scheme must be http, https or file, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
