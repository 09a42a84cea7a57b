package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/changelog"
	"github.com/verbump/verbump/internal/config"
	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/models"
	"github.com/verbump/verbump/internal/versioning"
)

// bumpOptions holds the flags shared by bump and its shorthands
type bumpOptions struct {
	configFile    string
	dryRun        bool
	prerelease    string
	skipChangelog bool
	changelogFile string
	messages      []string
}

func (o *bumpOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "", "Path to project config file (auto-detected if not set)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Show what would be done without making changes")
	cmd.Flags().StringVar(&o.prerelease, "pre", "", "Pre-release label (alpha, beta, rc)")
	cmd.Flags().BoolVar(&o.skipChangelog, "skip-changelog", false, "Skip updating the changelog")
	cmd.Flags().StringVar(&o.changelogFile, "changelog", "", "Path to changelog file")
	cmd.Flags().StringArrayVarP(&o.messages, "message", "m", nil, "Commit message(s) to use instead of git history")
}

func (o *bumpOptions) validate() error {
	switch o.prerelease {
	case "", "alpha", "beta", "rc":
		return nil
	default:
		return fmt.Errorf("invalid pre-release label %q: must be one of alpha, beta, rc", o.prerelease)
	}
}

// BumpCommand handles version bumping from the command line
type BumpCommand struct {
	fs  filesystem.FileSystem
	git git.GitClient

	opts        bumpOptions
	explicit    string
	interactive bool
}

// NewBumpCommand creates the bump command. Without --type the bump is
// derived from the commit history since the last tag.
func NewBumpCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	cmd := &BumpCommand{fs: fs, git: gitClient}

	cobraCmd := &cobra.Command{
		Use:   "bump",
		Short: "Bump the version based on conventional commits",
		Long: `Determine the next version from conventional commit messages and
write it to every configured version file.

The bump type is derived from the commits since the last tag, or forced
with --type or one of the major/minor/patch shorthands.`,
		RunE: cmd.Run,
	}

	cmd.opts.register(cobraCmd)
	cobraCmd.Flags().StringVar(&cmd.explicit, "type", "", "Force bump type (major, minor, patch)")
	cobraCmd.Flags().BoolVarP(&cmd.interactive, "interactive", "i", false, "Select the bump type interactively")

	return cobraCmd
}

// Run executes the bump command
func (c *BumpCommand) Run(cmd *cobra.Command, args []string) error {
	bumpType := models.BumpNone
	forced := false

	if c.explicit != "" {
		parsed, err := models.ParseBumpType(c.explicit)
		if err != nil {
			return err
		}
		bumpType = parsed
		forced = true
	}

	if c.interactive {
		selected, err := selectBumpType()
		if err != nil {
			return err
		}
		if selected == models.BumpNone {
			return nil
		}
		bumpType = selected
		forced = true
	}

	return runBump(cmd, c.fs, c.git, bumpType, forced, c.opts)
}

// selectBumpType prompts for a bump type; BumpNone means aborted.
func selectBumpType() (models.BumpType, error) {
	var choice string

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Select version bump").
			Options(
				huh.NewOption("major - breaking changes", "major"),
				huh.NewOption("minor - new features", "minor"),
				huh.NewOption("patch - bug fixes", "patch"),
			).
			Value(&choice),
	))

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return models.BumpNone, nil
		}
		return models.BumpNone, err
	}

	return models.ParseBumpType(choice)
}

func newShorthandCommand(fs filesystem.FileSystem, gitClient git.GitClient, bumpType models.BumpType, short string) *cobra.Command {
	var opts bumpOptions

	cobraCmd := &cobra.Command{
		Use:   string(bumpType),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, fs, gitClient, bumpType, true, opts)
		},
	}

	opts.register(cobraCmd)
	return cobraCmd
}

// NewMajorCommand creates the major shorthand
func NewMajorCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	return newShorthandCommand(fs, gitClient, models.BumpMajor, "Create a major version bump (breaking changes)")
}

// NewMinorCommand creates the minor shorthand
func NewMinorCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	return newShorthandCommand(fs, gitClient, models.BumpMinor, "Create a minor version bump (new features)")
}

// NewPatchCommand creates the patch shorthand
func NewPatchCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	return newShorthandCommand(fs, gitClient, models.BumpPatch, "Create a patch version bump (bug fixes)")
}

// runBump is the shared bump flow. When forced is false the bump type
// is derived from the collected commits.
func runBump(cmd *cobra.Command, fs filesystem.FileSystem, gitClient git.GitClient, bumpType models.BumpType, forced bool, opts bumpOptions) error {
	out := cmd.OutOrStdout()

	if err := opts.validate(); err != nil {
		return err
	}

	configPath, cfg, err := loadProjectConfig(fs, opts.configFile)
	if err != nil {
		return err
	}

	manager, err := managerFor(fs, cfg, configPath, out)
	if err != nil {
		return err
	}

	current, err := manager.GetPrimaryVersion()
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no version found in %s", manager.Paths()[0])
	}

	if !manager.ValidateVersionConsistency() {
		fmt.Fprintln(out, warnStyle.Render("Warning: configured version files disagree on the current version"))
	}

	commits, err := collectCommits(gitClient, opts.messages)
	if err != nil {
		return err
	}
	if len(commits) == 0 && !forced {
		fmt.Fprintln(out, warnStyle.Render("Warning: no conventional commits found"))
	}

	if !forced {
		bumpType = highestBump(commits)
	}
	if bumpType == models.BumpNone {
		fmt.Fprintln(out, subtleStyle.Render("No version change needed"))
		return nil
	}

	prerelease := opts.prerelease
	if prerelease == "" {
		prerelease = prereleaseFromCommits(commits)
	}

	next := current.Bump(bumpType, prerelease)
	if next.String() == current.String() {
		fmt.Fprintln(out, subtleStyle.Render("No version change needed"))
		return nil
	}

	if opts.dryRun {
		fmt.Fprintf(out, "%s Would bump %s -> %s\n", infoStyle.Render("Dry run:"), current, next)
		return nil
	}

	updated := manager.WriteVersions(next)
	if len(updated) == 0 {
		return fmt.Errorf("failed to update any version file")
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Version bumped: %s -> %s", current, next)))

	if opts.skipChangelog {
		return nil
	}

	changelogPath := opts.changelogFile
	if changelogPath == "" {
		changelogPath = cfg.ChangelogFile
	}
	if changelogPath == "" {
		changelogPath = filepath.Join(filepath.Dir(configPath), "CHANGELOG.md")
	}

	if err := updateChangelog(fs, gitClient, changelogPath, next.String(), commits); err != nil {
		return fmt.Errorf("failed to update changelog: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("Updated "+changelogPath))

	return nil
}

// loadProjectConfig resolves the config path (flag, discovery, legacy
// default) and loads it.
func loadProjectConfig(fs filesystem.FileSystem, flagPath string) (string, *config.Config, error) {
	configPath := flagPath
	if configPath == "" {
		cwd, err := fs.Getwd()
		if err != nil {
			return "", nil, err
		}
		configPath = config.FindConfigFile(fs, cwd)
		if configPath == "" {
			configPath = filepath.Join(cwd, "pyproject.toml")
		}
	}

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return "", nil, err
	}

	return configPath, cfg, nil
}

func managerFor(fs filesystem.FileSystem, cfg *config.Config, configPath string, out io.Writer) (*versioning.VersionManager, error) {
	managerCfg := cfg.ManagerConfig()
	if managerCfg.VersionFile == "" && len(managerCfg.VersionFiles) == 0 {
		managerCfg.VersionFile = configPath
	}

	manager, err := versioning.ManagerFromConfig(fs, managerCfg)
	if err != nil {
		return nil, err
	}
	manager.Warnf = func(format string, args ...interface{}) {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf(format, args...)))
	}

	return manager, nil
}

// collectCommits parses explicit messages, or falls back to the git
// history since the last tag. Merge and fixup commits are dropped.
func collectCommits(gitClient git.GitClient, messages []string) ([]*models.ConventionalCommit, error) {
	if len(messages) > 0 {
		var commits []*models.ConventionalCommit
		for _, msg := range messages {
			commit, err := models.ParseCommit(msg)
			if err != nil {
				return nil, fmt.Errorf("invalid commit message %q: %w", msg, err)
			}
			commits = append(commits, commit)
		}
		return commits, nil
	}

	history := git.NewHistoryCache(gitClient)
	tag, err := history.LatestTag()
	if err != nil {
		return nil, err
	}
	raw, err := history.CommitMessagesSince(tag)
	if err != nil {
		return nil, err
	}

	var commits []*models.ConventionalCommit
	for _, msg := range raw {
		if models.IsMergeMessage(msg) {
			continue
		}
		commit, err := models.ParseCommitSkippingFixups(msg)
		if err != nil || commit == nil {
			continue
		}
		commits = append(commits, commit)
	}

	return commits, nil
}

// highestBump returns the largest bump any commit calls for
func highestBump(commits []*models.ConventionalCommit) models.BumpType {
	result := models.BumpNone
	for _, commit := range commits {
		switch commit.BumpType() {
		case models.BumpMajor:
			return models.BumpMajor
		case models.BumpMinor:
			result = models.BumpMinor
		case models.BumpPatch:
			if result == models.BumpNone {
				result = models.BumpPatch
			}
		}
	}
	return result
}

func prereleaseFromCommits(commits []*models.ConventionalCommit) string {
	for _, commit := range commits {
		if label := commit.PrereleaseLabel(); label != "" {
			return label
		}
	}
	return ""
}

// updateChangelog writes the new version section, pulling repo URL and
// sidecar overrides when available.
func updateChangelog(fs filesystem.FileSystem, gitClient git.GitClient, path, version string, commits []*models.ConventionalCommit) error {
	chlogCfg, err := changelog.LoadSidecarConfig(fs, filepath.Dir(path))
	if err != nil {
		chlogCfg = changelog.NewConfig()
	}
	if chlogCfg.RepoURL == "" {
		if url, err := gitClient.RemoteURL("origin"); err == nil {
			chlogCfg.RepoURL = url
		}
	}

	manager := changelog.NewManager(fs, chlogCfg)
	return manager.Update(path, version, commits, time.Now())
}
