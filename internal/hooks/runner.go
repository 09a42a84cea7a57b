package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/verbump/verbump/internal/changelog"
	"github.com/verbump/verbump/internal/config"
	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/models"
	"github.com/verbump/verbump/internal/versioning"
)

// skipFlagName is written by prepare-commit-msg when the following
// post-commit run must not bump (amend, rebase, fixup).
const skipFlagName = ".verbump_skip_version_bump"

// lockFileName guards against the post-commit amend re-entering the
// post-commit hook.
const lockFileName = ".verbump_post_commit_lock"

// origHeadMaxAge bounds how old ORIG_HEAD may be to still count as
// evidence of an in-flight amend.
const origHeadMaxAge = 60 * time.Second

// Runner executes the hook entry points. Git invokes hooks with the
// repository root as working directory.
type Runner struct {
	fs  filesystem.FileSystem
	git git.GitClient

	// Out receives user-facing status lines.
	Out io.Writer

	// Log receives diagnostics, normally the rotating hook log.
	Log *slog.Logger

	// Now is the clock, replaceable in tests.
	Now func() time.Time

	// Getenv reads environment variables, replaceable in tests.
	Getenv func(string) string
}

// NewRunner creates a Runner with OS defaults
func NewRunner(fs filesystem.FileSystem, gitClient git.GitClient) *Runner {
	return &Runner{
		fs:     fs,
		git:    gitClient,
		Out:    os.Stdout,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    time.Now,
		Getenv: os.Getenv,
	}
}

func (r *Runner) echo(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// isAmend walks the detection ladder from most to least reliable
// signal. The hook argument from git is authoritative when present;
// the rest are fallbacks for invocations without arguments.
func (r *Runner) isAmend(commitSource, commitSHA, message string) bool {
	r.Log.Debug("amend detection", "source", commitSource, "sha", commitSHA)

	if commitSource == "commit" {
		return true
	}
	if commitSource == "squash" || commitSource == "merge" {
		return true
	}

	if rebasing, _ := r.git.RebaseInProgress(); rebasing {
		return true
	}

	action := strings.ToLower(r.Getenv("GIT_REFLOG_ACTION"))
	if strings.Contains(action, "amend") || strings.Contains(action, "rebase") {
		return true
	}

	head, err := r.git.Head()
	if err != nil || head == "" {
		return false
	}

	if r.origHeadMatches(head) {
		return true
	}

	// Last resort: an amend re-presents the HEAD message verbatim.
	if message != "" {
		headMessage, err := r.git.HeadMessage()
		if err == nil && stripCommentLines(message) == strings.TrimSpace(headMessage) {
			return true
		}
	}

	return false
}

// origHeadMatches reports whether ORIG_HEAD equals HEAD and was written
// recently. During an amend git sets ORIG_HEAD to the commit being
// rewritten, which is the current HEAD.
func (r *Runner) origHeadMatches(head string) bool {
	gitDir, err := r.git.GitDir()
	if err != nil {
		return false
	}

	origHeadPath := filepath.Join(gitDir, "ORIG_HEAD")
	info, err := r.fs.Stat(origHeadPath)
	if err != nil {
		return false
	}
	if r.Now().Sub(info.ModTime()) > origHeadMaxAge {
		return false
	}

	content, err := r.fs.ReadFile(origHeadPath)
	if err != nil {
		return false
	}

	return strings.TrimSpace(string(content)) == head
}

func stripCommentLines(message string) string {
	var kept []string
	for _, line := range strings.Split(message, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func (r *Runner) writeSkipFlag(repoRoot, reason string) {
	path := filepath.Join(repoRoot, skipFlagName)
	_ = r.fs.WriteFile(path, []byte(reason), 0o644)
}

// consumeSkipFlag removes the flag and returns its reason, or "" when
// no flag was set.
func (r *Runner) consumeSkipFlag(repoRoot string) string {
	path := filepath.Join(repoRoot, skipFlagName)
	if !r.fs.Exists(path) {
		return ""
	}

	content, err := r.fs.ReadFile(path)
	_ = r.fs.Remove(path)
	if err != nil {
		return "unknown"
	}

	return strings.TrimSpace(string(content))
}

func (r *Runner) lockActive(repoRoot string) bool {
	return r.fs.Exists(filepath.Join(repoRoot, lockFileName))
}

func (r *Runner) createLock(repoRoot string) error {
	token, err := gonanoid.New()
	if err != nil {
		token = fmt.Sprintf("pid-%d", os.Getpid())
	}

	path := filepath.Join(repoRoot, lockFileName)
	return r.fs.WriteFile(path, []byte("verbump post-commit lock "+token), 0o644)
}

func (r *Runner) removeLock(repoRoot string) {
	path := filepath.Join(repoRoot, lockFileName)
	if r.fs.Exists(path) {
		_ = r.fs.Remove(path)
	}
}

// PrepareCommitMsg runs as the prepare-commit-msg hook. It never bumps;
// it classifies the commit and leaves a skip flag for post-commit when
// the commit must not trigger a bump. Errors never fail the commit.
func (r *Runner) PrepareCommitMsg(msgFile, commitSource, commitSHA string) error {
	repoRoot, err := r.git.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}

	// No message file usually means a rebase step.
	if msgFile == "" {
		if commitSource == "squash" || commitSource == "merge" || r.isAmend(commitSource, commitSHA, "") {
			r.writeSkipFlag(repoRoot, "rebase_operation")
		}
		return nil
	}

	if !r.fs.Exists(msgFile) {
		return nil
	}

	if commitSource != "commit" {
		if merge, _ := r.git.HasMergeParent(); merge {
			return nil
		}
	}

	if r.isAmend(commitSource, commitSHA, "") {
		r.Log.Info("amend detected, flagging post-commit to skip")
		r.writeSkipFlag(repoRoot, "amend")
		return nil
	}

	content, err := r.fs.ReadFile(msgFile)
	if err != nil {
		return nil
	}
	message := strings.TrimSpace(string(content))
	if message == "" {
		return nil
	}

	if models.IsFixupCommit(message) {
		r.writeSkipFlag(repoRoot, "fixup_commit")
		return nil
	}

	if _, err := models.ParseCommit(message); err != nil {
		r.echo("note: commit message is not a conventional commit, no version bump will occur")
	}

	return nil
}

// PostCommit runs as the post-commit hook. When the HEAD commit calls
// for a bump it rewrites the version files, amends them into the
// commit, and optionally tags the result.
func (r *Runner) PostCommit(configPath string, createTag bool) error {
	repoRoot, err := r.git.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}

	if skip, reason := r.shouldSkipPostCommit(); skip {
		r.Log.Info("skipping post-commit", "reason", reason)
		r.echo("Skipping version bump (%s)", reason)
		return nil
	}

	if reason := r.consumeSkipFlag(repoRoot); reason != "" {
		r.Log.Info("skip flag found", "reason", reason)
		r.echo("Skipping version bump (%s)", reason)
		return nil
	}

	if r.lockActive(repoRoot) {
		return nil
	}
	if err := r.createLock(repoRoot); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer r.removeLock(repoRoot)

	message, err := r.git.HeadMessage()
	if err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	if models.IsFixupCommit(message) {
		r.echo("Fixup/squash commit detected - skipping version bump")
		return nil
	}

	newVersion, updated, err := r.applyBump(message, configPath, repoRoot)
	if err != nil {
		return err
	}
	if newVersion == "" {
		return nil
	}

	if err := r.git.StageFiles(updated); err != nil {
		return err
	}
	if err := r.git.AmendNoEdit(); err != nil {
		return err
	}
	r.echo("Version bumped to %s", newVersion)

	if createTag {
		tagName := "v" + newVersion
		exists, err := r.git.TagExists(tagName)
		if err != nil {
			return err
		}
		if exists {
			r.echo("Tag %s already exists", tagName)
			return nil
		}
		if err := r.git.CreateTag(tagName, "Release "+newVersion); err != nil {
			return err
		}
		r.echo("Created tag: %s", tagName)
	}

	return nil
}

func (r *Runner) shouldSkipPostCommit() (bool, string) {
	if merge, _ := r.git.HasMergeParent(); merge {
		return true, "merge commit"
	}
	if rebasing, _ := r.git.RebaseInProgress(); rebasing {
		return true, "rebase in progress"
	}

	action := strings.ToLower(r.Getenv("GIT_REFLOG_ACTION"))
	if strings.Contains(action, "rebase") || strings.Contains(action, "cherry-pick") {
		return true, "git operation " + action
	}

	return false, ""
}

// CommitMsg runs as the commit-msg hook in legacy mode. It bumps and
// stages version files before the commit is finalized, so the changes
// land in the same commit without an amend.
func (r *Runner) CommitMsg(msgFile, commitSource, commitSHA, configPath string) error {
	repoRoot, err := r.git.RepoRoot()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}

	// Post-commit mode owns bumping when its lock is present.
	if r.lockActive(repoRoot) {
		r.echo("Post-commit hook active - skipping commit-msg hook")
		return nil
	}

	if msgFile == "" {
		gitDir, err := r.git.GitDir()
		if err != nil {
			return err
		}
		msgFile = filepath.Join(gitDir, "COMMIT_EDITMSG")
		if !r.fs.Exists(msgFile) {
			return fmt.Errorf("could not find commit message file")
		}
	}

	content, err := r.fs.ReadFile(msgFile)
	if err != nil {
		return fmt.Errorf("failed to read commit message: %w", err)
	}
	message := strings.TrimSpace(string(content))
	if message == "" {
		return nil
	}

	if models.IsFixupCommit(message) {
		r.echo("Fixup/squash commit detected - skipping version bump")
		return nil
	}

	if r.isAmend(commitSource, commitSHA, message) {
		r.echo("Amend detected - skipping version bump")
		return nil
	}

	newVersion, updated, err := r.applyBump(message, configPath, repoRoot)
	if err != nil {
		return err
	}
	if newVersion == "" {
		r.echo("No version bump needed")
		return nil
	}

	if err := r.git.StageFiles(updated); err != nil {
		return err
	}
	r.echo("Version bumped to %s (files staged for commit)", newVersion)

	return nil
}

// applyBump parses the message, computes the next version, and writes
// it to every configured file. Returns an empty version when the
// message does not call for a bump.
func (r *Runner) applyBump(message, configPath, repoRoot string) (string, []string, error) {
	commit, err := models.ParseCommit(message)
	if err != nil {
		// Non-conventional commits simply don't bump.
		return "", nil, nil
	}

	bumpType := commit.BumpType()
	if bumpType == models.BumpNone {
		return "", nil, nil
	}

	if configPath == "" {
		configPath = config.FindConfigFile(r.fs, repoRoot)
	}
	if configPath == "" {
		configPath = filepath.Join(repoRoot, "pyproject.toml")
	}

	cfg, err := config.Load(r.fs, configPath)
	if err != nil {
		return "", nil, err
	}

	managerCfg := cfg.ManagerConfig()
	if managerCfg.VersionFile == "" && len(managerCfg.VersionFiles) == 0 {
		managerCfg.VersionFile = configPath
	}

	manager, err := versioning.ManagerFromConfig(r.fs, managerCfg)
	if err != nil {
		return "", nil, err
	}
	manager.Warnf = func(format string, args ...interface{}) {
		r.Log.Warn(fmt.Sprintf(format, args...))
	}

	current, err := manager.GetPrimaryVersion()
	if err != nil {
		return "", nil, err
	}
	if current == nil {
		return "", nil, fmt.Errorf("no version found in configured files")
	}

	next := current.Bump(bumpType, commit.PrereleaseLabel())
	r.Log.Info("bumping version", "from", current.String(), "to", next.String(), "bump", string(bumpType))
	updated := manager.WriteVersions(next)
	if len(updated) == 0 {
		return "", nil, fmt.Errorf("failed to update any version file")
	}

	// A broken changelog must not fail the commit; the version bump
	// already happened.
	changelogPath, err := r.updateChangelog(cfg, configPath, next.String(), commit)
	if err != nil {
		r.Log.Warn("changelog update failed", "error", err)
	} else {
		updated = append(updated, changelogPath)
	}

	return next.String(), updated, nil
}

// updateChangelog prepends the new version section, honoring the
// sidecar config and falling back to the origin remote for compare
// links. Returns the changelog path for staging.
func (r *Runner) updateChangelog(cfg *config.Config, configPath, version string, commit *models.ConventionalCommit) (string, error) {
	path := cfg.ChangelogFile
	if path == "" {
		path = filepath.Join(filepath.Dir(configPath), "CHANGELOG.md")
	}

	clConfig, err := changelog.LoadSidecarConfig(r.fs, filepath.Dir(configPath))
	if err != nil {
		return "", err
	}
	if clConfig.RepoURL == "" {
		if url, err := r.git.RemoteURL("origin"); err == nil {
			clConfig.RepoURL = url
		}
	}

	manager := changelog.NewManager(r.fs, clConfig)
	if err := manager.Update(path, version, []*models.ConventionalCommit{commit}, r.Now()); err != nil {
		return "", err
	}

	return path, nil
}
