package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/changelog"
	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/github"
)

// ReleaseCommand publishes a GitHub release for an existing tag, using
// the matching changelog section as the release body
type ReleaseCommand struct {
	fs  filesystem.FileSystem
	git git.GitClient
	gh  github.GitHubClient

	tag           string
	remote        string
	changelogFile string
	draft         bool
	prerelease    bool
}

// NewReleaseCommand creates the release command
func NewReleaseCommand(fs filesystem.FileSystem, gitClient git.GitClient, ghClient github.GitHubClient) *cobra.Command {
	cmd := &ReleaseCommand{fs: fs, git: gitClient, gh: ghClient}

	cobraCmd := &cobra.Command{
		Use:   "release",
		Short: "Create a GitHub release for an existing tag",
		Long: `Create a GitHub release for a version tag. The release body is
taken from the matching CHANGELOG.md section when one exists.

Requires a GH_TOKEN or GITHUB_TOKEN environment variable.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.tag, "tag", "", "Tag to release (defaults to the latest tag)")
	cobraCmd.Flags().StringVar(&cmd.remote, "remote", "origin", "Git remote to resolve the repository from")
	cobraCmd.Flags().StringVar(&cmd.changelogFile, "changelog", "CHANGELOG.md", "Path to changelog file")
	cobraCmd.Flags().BoolVar(&cmd.draft, "draft", false, "Create the release as a draft")
	cobraCmd.Flags().BoolVar(&cmd.prerelease, "prerelease", false, "Mark the release as a pre-release")

	return cobraCmd
}

// Run executes the release command
func (c *ReleaseCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if c.gh == nil {
		return github.ErrGitHubTokenNotFound
	}

	tag := c.tag
	if tag == "" {
		latest, err := c.git.LatestTag()
		if err != nil {
			return err
		}
		if latest == "" {
			return fmt.Errorf("no tags found; create one first or pass --tag")
		}
		tag = latest
	}

	exists, err := c.git.TagExists(tag)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("tag %s does not exist", tag)
	}

	remoteURL, err := c.git.RemoteURL(c.remote)
	if err != nil {
		return err
	}
	owner, repo, err := github.ParseRepoURL(remoteURL)
	if err != nil {
		return err
	}

	version := strings.TrimPrefix(tag, "v")
	body := c.changelogBody(version)

	release, err := c.gh.CreateRelease(ctx, owner, repo, &github.CreateReleaseRequest{
		TagName:    tag,
		Name:       tag,
		Body:       body,
		Draft:      c.draft,
		Prerelease: c.prerelease || strings.Contains(version, "-"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, successStyle.Render("Created release "+release.TagName))
	if release.HTMLURL != "" {
		fmt.Fprintln(out, subtleStyle.Render(release.HTMLURL))
	}

	return nil
}

// changelogBody extracts the changelog section for the version. Missing
// file or section yields an empty body, not an error.
func (c *ReleaseCommand) changelogBody(version string) string {
	content, err := c.fs.ReadFile(c.changelogFile)
	if err != nil {
		return ""
	}

	manager := changelog.NewManager(c.fs, changelog.NewConfig())
	for _, section := range manager.Parse(string(content)) {
		if section.Version != version {
			continue
		}
		// Drop the "## [version]" heading, keep the body.
		if len(section.Lines) > 1 {
			return strings.TrimSpace(strings.Join(section.Lines[1:], "\n"))
		}
		return ""
	}

	return ""
}
