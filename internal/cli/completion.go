package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for pagesmith on stdout.

Besides command names, the scripts complete export formats, viewports,
element types, style properties and built-in template names.

  bash:        source <(pagesmith completion bash)
  zsh:         pagesmith completion zsh > "${fpath[1]}/_pagesmith"
  fish:        pagesmith completion fish > ~/.config/fish/completions/pagesmith.fish
  powershell:  pagesmith completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// =============================================================================
// Flag Completions
// =============================================================================

type completeFunc = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// completeFormats completes the comma-separated --format list.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for _, f := range export.Formats {
		out = append(out, prefix+string(f))
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeViewports(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(render.ViewportMobile) + "\t" + render.ViewportMobile.Width(),
		string(render.ViewportTablet) + "\t" + render.ViewportTablet.Width(),
		string(render.ViewportDesktop) + "\t" + render.ViewportDesktop.Width(),
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeElementTypes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, t := range element.Types() {
		out = append(out, string(t))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeStyleKeys completes the key of a --style key=value pair.
func completeStyleKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, k := range element.KnownProperties() {
		out = append(out, k+"=")
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeTemplates completes built-in template ids with their names.
func completeTemplates(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, t := range project.DefaultTemplates() {
		out = append(out, t.ID+"\t"+t.Name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFlags registers completions on cmd, ignoring flags it lacks.
func completeFlags(cmd *cobra.Command, fns map[string]completeFunc) {
	for name, fn := range fns {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, fn)
		}
	}
}
