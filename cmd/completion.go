package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// completionShells lists the shells a completion script can be generated for.
var completionShells = []string{"bash", "zsh", "fish"}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script for checklints.

  bash:  checklints completion bash > /etc/bash_completion.d/checklints
  zsh:   checklints completion zsh > "${fpath[1]}/_checklints"
  fish:  checklints completion fish > ~/.config/fish/completions/checklints.fish`,
		ValidArgs: completionShells,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return GenerateCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish)", shell)
	}
}
