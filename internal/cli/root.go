package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/buildinfo"
	"github.com/matzehuels/pagesmith/pkg/config"
	"github.com/matzehuels/pagesmith/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus export, cache, HTTP and sync
//     events from the observability hooks
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Pagesmith builds web pages from positioned elements",
		Long: `Pagesmith is a drag-and-drop website builder core. It edits element
documents, previews them, and exports them as HTML, CSS or React components.

Documents are JSON files holding a page's elements. The same documents can be
stored on a pagesmith server ('pagesmith serve') and synced with 'remote'.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetExportHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
				observability.SetSyncHooks(hooks)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.elementCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.remoteCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
