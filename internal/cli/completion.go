package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for vlink.

Bash:
  # Add to ~/.bashrc:
  source <(vlink completion bash)

Zsh:
  # Add to ~/.zshrc:
  source <(vlink completion zsh)

Fish:
  vlink completion fish > ~/.config/fish/completions/vlink.fish

PowerShell:
  vlink completion powershell >> $PROFILE
`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return cmd.Help()
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	rootCmd.RegisterFlagCompletionFunc("platform", completePlatform)
	configGetCmd.ValidArgsFunction = completeConfigKey
	configSetCmd.ValidArgsFunction = completeConfigKey
	configUnsetCmd.ValidArgsFunction = completeConfigKey
}

// completePlatform suggests supported platform identifiers for -p
func completePlatform(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(strings.Split(platformList(), ", "), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKey suggests config keys for the first argument only
func completeConfigKey(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return filterPrefix(configKeys, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(options []string, prefix string) []string {
	var out []string
	for _, o := range options {
		if strings.HasPrefix(o, prefix) {
			out = append(out, o)
		}
	}
	return out
}
