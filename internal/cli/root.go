// Package cli wires the command surface. Every command takes its
// dependencies explicitly so tests can substitute mocks.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/github"
)

// Version is the tool's own version, overridden at build time with
// -ldflags "-X github.com/verbump/verbump/internal/cli.Version=...".
var Version = "dev"

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, gitClient git.GitClient, ghClient github.GitHubClient) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "verbump",
		Version: Version,
		Short:   "Semantic version bumping driven by conventional commits",
		Long: `verbump reads conventional commit messages and keeps project
version files, changelogs, and git tags in sync.

Install the git hooks once and every feat/fix/breaking commit bumps the
version automatically.`,
		SilenceUsage: true,
	}

	// Add subcommands
	rootCmd.AddCommand(NewBumpCommand(fs, gitClient))
	rootCmd.AddCommand(NewMajorCommand(fs, gitClient))
	rootCmd.AddCommand(NewMinorCommand(fs, gitClient))
	rootCmd.AddCommand(NewPatchCommand(fs, gitClient))
	rootCmd.AddCommand(NewVersionCommand(fs, gitClient))
	rootCmd.AddCommand(NewCheckCommand(fs))
	rootCmd.AddCommand(NewInitCommand(fs, gitClient))
	rootCmd.AddCommand(NewReleaseCommand(fs, gitClient, ghClient))
	rootCmd.AddCommand(NewHooksCommand(fs, gitClient))
	rootCmd.AddCommand(NewHookCommand(fs, gitClient))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()
	gitClient := git.NewOSGitClient()

	// No token is fine until a command actually needs the API.
	var ghClient github.GitHubClient
	if client, err := github.NewClientFromEnv(); err == nil {
		ghClient = client
	}

	rootCmd := NewRootCommand(fs, gitClient, ghClient)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
