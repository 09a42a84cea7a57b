package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
)

// VersionCommand prints the current project version
type VersionCommand struct {
	fs  filesystem.FileSystem
	git git.GitClient

	configFile string
	all        bool
}

// NewVersionCommand creates the version command
func NewVersionCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	cmd := &VersionCommand{fs: fs, git: gitClient}

	cobraCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the current project version",
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.configFile, "config", "c", "", "Path to project config file (auto-detected if not set)")
	cobraCmd.Flags().BoolVar(&cmd.all, "all", false, "Show the version read from every configured file")

	return cobraCmd
}

// Run executes the version command
func (c *VersionCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	configPath, cfg, err := loadProjectConfig(c.fs, c.configFile)
	if err != nil {
		return err
	}

	manager, err := managerFor(c.fs, cfg, configPath, out)
	if err != nil {
		return err
	}

	if c.all {
		versions := manager.ReadVersions()
		for _, path := range manager.Paths() {
			version := versions[path]
			if version == nil {
				fmt.Fprintf(out, "%s: %s\n", path, errorStyle.Render("no version found"))
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", path, version)
		}
		if !manager.ValidateVersionConsistency() {
			fmt.Fprintln(out, warnStyle.Render("Warning: configured version files disagree on the current version"))
		}
		return nil
	}

	current, err := manager.GetPrimaryVersion()
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no version found in %s", manager.Paths()[0])
	}

	fmt.Fprintln(out, current)
	return nil
}
