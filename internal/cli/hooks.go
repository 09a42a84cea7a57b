package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/hooks"
)

// NewHooksCommand creates the hooks command group (install, uninstall,
// status)
func NewHooksCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the git hooks",
	}

	cobraCmd.AddCommand(newHooksInstallCommand(fs, gitClient))
	cobraCmd.AddCommand(newHooksUninstallCommand(fs, gitClient))
	cobraCmd.AddCommand(newHooksStatusCommand(fs, gitClient))

	return cobraCmd
}

func newHooksInstallCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	var legacy bool

	cobraCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the git hooks",
		Long: `Install git hooks for automatic version management.

Modern mode (default) installs prepare-commit-msg and post-commit hooks
that amend version changes into the commit and create tags. Legacy mode
installs a single commit-msg hook that stages version changes for a
follow-up commit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			installer := hooks.NewInstaller(fs, gitClient)
			installed, err := installer.Install(legacy)
			if err != nil {
				return err
			}

			for _, name := range installed {
				fmt.Fprintln(out, successStyle.Render("Installed "+name+" hook"))
			}
			if legacy {
				fmt.Fprintln(out, subtleStyle.Render("Legacy mode: version files are staged, re-commit to include them"))
			} else {
				fmt.Fprintln(out, subtleStyle.Render("Commits with feat/fix/breaking changes now bump the version automatically"))
			}

			return nil
		},
	}

	cobraCmd.Flags().BoolVar(&legacy, "legacy", false, "Install the legacy commit-msg hook instead")

	return cobraCmd
}

func newHooksUninstallCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the managed git hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			installer := hooks.NewInstaller(fs, gitClient)
			removed, skipped, err := installer.Uninstall()
			if err != nil {
				return err
			}

			for _, name := range removed {
				fmt.Fprintln(out, successStyle.Render("Removed "+name+" hook"))
			}
			for _, name := range skipped {
				fmt.Fprintln(out, warnStyle.Render("Skipped "+name+" (not managed by verbump)"))
			}
			if len(removed) == 0 && len(skipped) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No hooks found"))
			}

			return nil
		},
	}
}

func newHooksStatusCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the git hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			installer := hooks.NewInstaller(fs, gitClient)
			report, err := installer.Status()
			if err != nil {
				return err
			}

			mode := string(report.Mode)
			switch report.Mode {
			case hooks.ModeNotInstalled:
				mode = subtleStyle.Render(mode)
			case hooks.ModePartial:
				mode = warnStyle.Render(mode)
			default:
				mode = successStyle.Render(mode)
			}
			fmt.Fprintf(out, "Mode: %s\n", mode)
			if report.MarkerMode != "" && report.MarkerMode != report.Mode {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Marker file records %s mode, reinstall to repair", report.MarkerMode)))
			}

			for _, name := range []string{"prepare-commit-msg", "commit-msg", "post-commit"} {
				state := report.Hooks[name]
				rendered := string(state)
				switch state {
				case hooks.HookManaged:
					rendered = successStyle.Render(rendered)
				case hooks.HookForeign:
					rendered = warnStyle.Render(rendered)
				default:
					rendered = subtleStyle.Render(rendered)
				}
				fmt.Fprintf(out, "%-20s %s\n", name, rendered)
			}

			for _, path := range report.StaleFiles {
				fmt.Fprintln(out, warnStyle.Render("Stale runtime file: "+path+" (remove it if no commit is in progress)"))
			}

			return nil
		},
	}
}

// NewHookCommand creates the hidden command the installed hook scripts
// invoke. Arguments after the hook name are passed through from git.
func NewHookCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	var (
		configFile string
		noTag      bool
	)

	cobraCmd := &cobra.Command{
		Use:    "hook <prepare-commit-msg|commit-msg|post-commit> [args...]",
		Short:  "Run a git hook (invoked by the installed hook scripts)",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := hooks.NewRunner(fs, gitClient)
			runner.Out = cmd.OutOrStdout()
			if gitDir, err := gitClient.GitDir(); err == nil {
				runner.Log = hooks.NewHookLogger(gitDir)
			}

			arg := func(i int) string {
				if i < len(args) {
					return args[i]
				}
				return ""
			}

			switch args[0] {
			case "prepare-commit-msg":
				return runner.PrepareCommitMsg(arg(1), arg(2), arg(3))
			case "commit-msg":
				return runner.CommitMsg(arg(1), arg(2), arg(3), configFile)
			case "post-commit":
				return runner.PostCommit(configFile, !noTag)
			default:
				return fmt.Errorf("unknown hook %q", args[0])
			}
		},
	}

	cobraCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to project config file")
	cobraCmd.Flags().BoolVar(&noTag, "no-create-tag", false, "Skip creating a git tag after bumping")

	return cobraCmd
}
