package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

// CheckCommand validates a commit message against the conventional
// commit format and reports the bump it would trigger
type CheckCommand struct {
	fs filesystem.FileSystem

	file string
}

// NewCheckCommand creates the check command
func NewCheckCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &CheckCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "check [message]",
		Short: "Check a commit message for conventional commit format",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.file, "file", "f", "", "Read the commit message from a file")

	return cobraCmd
}

// Run executes the check command
func (c *CheckCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var message string
	switch {
	case c.file != "":
		content, err := c.fs.ReadFile(c.file)
		if err != nil {
			return fmt.Errorf("failed to read message file: %w", err)
		}
		message = strings.TrimSpace(string(content))
	case len(args) == 1:
		message = strings.TrimSpace(args[0])
	default:
		return fmt.Errorf("provide a message argument or --file")
	}

	if message == "" {
		return fmt.Errorf("commit message is empty")
	}

	if models.IsFixupCommit(message) {
		fmt.Fprintln(out, subtleStyle.Render("Fixup/squash commit - no version bump"))
		return nil
	}

	commit, err := models.ParseCommit(message)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("Not a conventional commit: "+err.Error()))
		return err
	}

	fmt.Fprintf(out, "Type: %s\n", commit.Type)
	if commit.Scope != "" {
		fmt.Fprintf(out, "Scope: %s\n", commit.Scope)
	}
	if commit.Breaking {
		fmt.Fprintln(out, warnStyle.Render("Breaking change"))
	}
	if label := commit.PrereleaseLabel(); label != "" {
		fmt.Fprintf(out, "Pre-release: %s\n", label)
	}
	fmt.Fprintf(out, "Bump: %s\n", commit.BumpType())

	return nil
}
