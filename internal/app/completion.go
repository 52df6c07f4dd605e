package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	var noDescriptions bool

	cmd := &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for your shell.

  bash        source <(bookpipe completion bash)
  zsh         bookpipe completion zsh > "${fpath[1]}/_bookpipe"
  fish        bookpipe completion fish > ~/.config/fish/completions/bookpipe.fish
  powershell  bookpipe completion powershell | Out-String | Invoke-Expression`,
		Args:                  cobra.ExactArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			withDesc := !noDescriptions
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, withDesc)
			case "zsh":
				if withDesc {
					return root.GenZshCompletion(out)
				}
				return root.GenZshCompletionNoDesc(out)
			case "fish":
				return root.GenFishCompletion(out, withDesc)
			case "powershell":
				if withDesc {
					return root.GenPowerShellCompletionWithDesc(out)
				}
				return root.GenPowerShellCompletion(out)
			default:
				return fmt.Errorf("unsupported shell %q", args[0])
			}
		},
	}

	cmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false, "Omit command descriptions from completions")
	return cmd
}
