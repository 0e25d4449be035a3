package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for matdump.

To load completions:

Bash:
  $ source <(matdump completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ matdump completion bash > /etc/bash_completion.d/matdump
  # macOS:
  $ matdump completion bash > $(brew --prefix)/etc/bash_completion.d/matdump

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ matdump completion zsh > "${fpath[1]}/_matdump"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ matdump completion fish | source

  # To load completions for each session, execute once:
  $ matdump completion fish > ~/.config/fish/completions/matdump.fish

PowerShell:
  PS> matdump completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> matdump completion powershell > matdump.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
