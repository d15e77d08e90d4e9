package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for tt.

The completion command allows you to generate shell completion scripts for
bash, zsh, fish, and powershell. This enables tab-completion for commands,
flags, and arguments in your shell.

Usage:
  tt completion bash       Generate bash completion script
  tt completion zsh        Generate zsh completion script
  tt completion fish       Generate fish completion script
  tt completion powershell Generate powershell completion script

Installation Instructions:

Bash:
  # Load completion temporarily (current session only):
  source <(tt completion bash)

  # Install completion permanently:
  # Linux:
  tt completion bash > ~/.local/share/bash-completion/completions/tt

  # macOS (requires bash-completion from Homebrew):
  tt completion bash > $(brew --prefix)/etc/bash_completion.d/tt

Zsh:
  # Load completion temporarily (current session only):
  source <(tt completion zsh)

  # Install completion permanently:
  # Add to ~/.zshrc:
  echo 'fpath=(~/.zsh/completion $fpath)' >> ~/.zshrc
  echo 'autoload -Uz compinit && compinit' >> ~/.zshrc

  # Generate completion file:
  mkdir -p ~/.zsh/completion
  tt completion zsh > ~/.zsh/completion/_tt

  # Then restart your shell

Fish:
  # Install completion permanently:
  tt completion fish > ~/.config/fish/completions/tt.fish

PowerShell:
  # Open your PowerShell profile:
  notepad $PROFILE

  # Add this line to your profile:
  tt completion powershell | Out-String | Invoke-Expression

  # Save and restart PowerShell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactValidArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		generateCompletion(args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	listCmd.ValidArgsFunction = completePeriods
	reportCmd.ValidArgsFunction = completePeriods
	startCmd.ValidArgsFunction = completeProjects
	addCmd.ValidArgsFunction = completeProjects
	reportRunCmd.ValidArgsFunction = completeReports
	reportDeleteCmd.ValidArgsFunction = completeReports
	projectsRemoveCmd.ValidArgsFunction = completeProjects
}

// completePeriods offers the named periods for the first argument.
func completePeriods(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, p := range timeutil.Periods {
		if !strings.Contains(p, " ") {
			out = append(out, p)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeProjects offers registered projects for the first argument.
func completeProjects(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeFromServices(cmd, func(s *service.Services) []string {
		return s.Project.List()
	})
}

// completeReports offers saved report names.
func completeReports(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeFromServices(cmd, func(s *service.Services) []string {
		names, _ := s.Report.Names()
		return names
	})
}

// completeFromServices opens a runtime without the lost log prompt, since
// the shell owns the terminal while completing.
func completeFromServices(cmd *cobra.Command, fn func(*service.Services) []string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := deps.Open(ctx, ModeInteractive)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = rt.Close() }()
	return fn(rt.Services), cobra.ShellCompDirectiveNoFileComp
}

// generateCompletion generates the appropriate completion script based on shell type
func generateCompletion(shell string) {
	var err error

	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(deps.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(deps.Stdout)
	case "fish":
		err = rootCmd.GenFishCompletion(deps.Stdout, true)
	case "powershell":
		err = rootCmd.GenPowerShellCompletionWithDesc(deps.Stdout)
	default:
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unsupported shell '%s'\n", shell)
		_, _ = fmt.Fprintln(deps.Stderr, "Supported shells: bash, zsh, fish, powershell")
		deps.Exit(1)
		return
	}

	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to generate %s completion: %v\n", shell, err)
		deps.Exit(1)
		return
	}
}
