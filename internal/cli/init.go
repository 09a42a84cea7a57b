package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
)

// knownVersionFiles maps well-known file names to their handler type.
// An empty type means auto-detection suffices.
var knownVersionFiles = map[string]string{
	"pyproject.toml": "",
	"package.json":   "",
	"composer.json":  "",
	"Cargo.toml":     "",
	"Pipfile":        "",
	"VERSION":        "generic",
	"version.txt":    "generic",
}

// InitCommand scans the repository for version files and writes a
// starter verbump.toml
type InitCommand struct {
	fs  filesystem.FileSystem
	git git.GitClient

	force bool
}

// NewInitCommand creates the init command
func NewInitCommand(fs filesystem.FileSystem, gitClient git.GitClient) *cobra.Command {
	cmd := &InitCommand{fs: fs, git: gitClient}

	cobraCmd := &cobra.Command{
		Use:   "init",
		Short: "Scan the repository and write a starter verbump.toml",
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.force, "force", false, "Overwrite an existing verbump.toml")

	return cobraCmd
}

type initFileEntry struct {
	Path     string `toml:"path"`
	FileType string `toml:"file_type,omitempty"`
}

type initDocument struct {
	Verbump struct {
		VersionFiles []initFileEntry `toml:"version_files"`
	} `toml:"verbump"`
}

// Run executes the init command
func (c *InitCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	root, err := c.git.RepoRoot()
	if err != nil {
		root, err = c.fs.Getwd()
		if err != nil {
			return err
		}
	}

	configPath := filepath.Join(root, "verbump.toml")
	if c.fs.Exists(configPath) && !c.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	entries, err := c.scan(root)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no known version files found under %s", root)
	}

	var doc initDocument
	doc.Verbump.VersionFiles = entries

	content, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := c.fs.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintln(out, successStyle.Render("Created "+configPath))
	for _, entry := range entries {
		fmt.Fprintf(out, "  %s\n", entry.Path)
	}

	return nil
}

// scan walks the tree collecting known version files, honoring
// .gitignore rules and skipping the .git directory.
func (c *InitCommand) scan(root string) ([]initFileEntry, error) {
	ignore, _ := gitignore.NewRepository(root)

	var entries []initFileEntry
	err := c.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" || d.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}

		fileType, known := knownVersionFiles[d.Name()]
		if !known {
			return nil
		}
		if ignore != nil {
			if match := ignore.Match(path); match != nil && match.Ignore() {
				return nil
			}
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		entries = append(entries, initFileEntry{Path: rel, FileType: fileType})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Root-level manifests first, then lexicographic.
	sort.Slice(entries, func(i, j int) bool {
		di := strings.Count(entries[i].Path, string(filepath.Separator))
		dj := strings.Count(entries[j].Path, string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return entries[i].Path < entries[j].Path
	})

	return entries, nil
}
