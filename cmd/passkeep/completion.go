package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/internal/keyring"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script for your shell",
	Long: `To load completions:

Bash:
  $ source <(passkeep completion bash)

Zsh:
  $ passkeep completion zsh > ~/.zsh/completions/_passkeep

Fish:
  $ passkeep completion fish > ~/.config/fish/completions/passkeep.fish

PowerShell:
  PS> passkeep completion powershell >> $PROFILE

Dynamic completion (service names):
  Set PASSKEEP_COMPLETION_ENABLED=1 to enable service name completion.
  It only works when the master password is cached in the OS keyring,
  so tab completion never prompts for a password.
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

func init() {
	rootCmd.AddCommand(completionCmd)

	for _, cmd := range []*cobra.Command{
		getCmd, updateCmd, removeCmd, favoriteCmd,
		totpShowCmd, totpURICmd, totpRemoveCmd,
	} {
		cmd.ValidArgsFunction = completeServices
	}
}

// isDynamicCompletionEnabled reports whether service completion is opted in.
// Disabled by default so tab completion never touches the vault.
func isDynamicCompletionEnabled() bool {
	return os.Getenv("PASSKEEP_COMPLETION_ENABLED") == "1"
}

// unlockForCompletion unlocks the vault from the keyring cache only. It
// never prompts; without a cached password completion stays silent.
func unlockForCompletion() bool {
	if !isDynamicCompletionEnabled() || manager == nil {
		return false
	}
	if manager.IsUnlocked() {
		return true
	}

	password, err := keyring.Get(manager.Path())
	if err != nil {
		return false
	}
	return manager.Unlock(password) == nil
}

// completeServices completes service names for commands taking a service arg.
func completeServices(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if !unlockForCompletion() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer manager.Lock()

	creds, err := manager.ListAll()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var services []string
	for _, c := range creds {
		if strings.HasPrefix(c.Service, toComplete) {
			services = append(services, c.Service)
		}
	}
	return services, cobra.ShellCompDirectiveNoFileComp
}

// completeTags completes tag names under the same constraints.
func completeTags(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if !unlockForCompletion() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer manager.Lock()

	all, err := manager.Tags()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var tags []string
	for _, tag := range all {
		if strings.HasPrefix(tag, toComplete) {
			tags = append(tags, tag)
		}
	}
	return tags, cobra.ShellCompDirectiveNoFileComp
}
