// completion.go implements the "denver completion" command and the dynamic
// completion of container names.
package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/model"
)

// supportedShells lists the shells a completion script can be generated for.
var supportedShells = []string{"bash", "zsh", "fish", "powershell"}

// NewCompletionCommand creates the "completion" cobra command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate a shell completion script",
		Long: `Generate the completion script for bash, zsh, fish, or powershell.
Container names complete from the configuration file.

Examples:
  source <(denver completion bash)
  denver completion zsh > "${fpath[1]}/_denver"
  denver completion fish > ~/.config/fish/completions/denver.fish`,

		Args:      cobra.ExactArgs(1),
		ValidArgs: supportedShells,

		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
		},
	}

	return cmd
}

// writeCompletion writes root's completion script for shell to w.
func writeCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return model.Errorf(model.KindUnknownShell,
			"unsupported shell %q (supported: %s)", shell, strings.Join(supportedShells, ", "))
	}
}

// completeContainerNames completes the first positional argument with the
// declared container names. A configuration that cannot be loaded yields
// no suggestions.
func completeContainerNames(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, name := range cfg.Names() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
