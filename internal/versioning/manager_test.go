package versioning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

func TestVersionManager_ReadVersions(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))
	fs.AddFile("/repo/package.json", []byte(`{"version": "1.0.0"}`))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/package.json"},
	})
	require.NoError(t, err)

	versions := manager.ReadVersions()
	require.Len(t, versions, 2)
	assert.Equal(t, "1.0.0", versions["/repo/pyproject.toml"].String())
	assert.Equal(t, "1.0.0", versions["/repo/package.json"].String())
}

func TestVersionManager_PerFileIsolation(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))
	// Second file missing entirely.

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/absent.json"},
	})
	require.NoError(t, err)

	versions := manager.ReadVersions()
	require.NotNil(t, versions["/repo/pyproject.toml"])
	assert.Nil(t, versions["/repo/absent.json"])
}

func TestVersionManager_WriteVersions(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))
	fs.AddFile("/repo/package.json", []byte(`{"version": "1.0.0"}`))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/package.json"},
	})
	require.NoError(t, err)

	next := models.FromComponents(1, 1, 0, "", "", "")
	updated := manager.WriteVersions(next)
	assert.ElementsMatch(t, []string{"/repo/pyproject.toml", "/repo/package.json"}, updated)

	assert.Contains(t, string(fs.Content("/repo/package.json")), "1.1.0")
	assert.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.1.0")
}

func TestVersionManager_WriteVersionsPartialFailure(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/absent.json"},
	})
	require.NoError(t, err)

	updated := manager.WriteVersions(models.FromComponents(2, 0, 0, "", "", ""))
	assert.Equal(t, []string{"/repo/pyproject.toml"}, updated)
}

func TestVersionManager_WarnfReceivesFailures(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/absent.json"},
	})
	require.NoError(t, err)

	var warnings []string
	manager.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	manager.ReadVersions()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "/repo/absent.json")

	warnings = nil
	manager.WriteVersions(models.FromComponents(2, 0, 0, "", "", ""))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "/repo/absent.json")
}

func TestVersionManager_GetPrimaryVersion(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.2.3\"\n"))
	fs.AddFile("/repo/package.json", []byte(`{"version": "9.9.9"}`))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/package.json"},
	})
	require.NoError(t, err)

	version, err := manager.GetPrimaryVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "1.2.3", version.String())
}

func TestVersionManager_ValidateVersionConsistency(t *testing.T) {
	tests := []struct {
		name     string
		tomlVer  string
		jsonVer  string
		expected bool
	}{
		{"matching versions", "1.0.0", "1.0.0", true},
		{"diverged versions", "1.0.0", "2.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMockFileSystem()
			fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \""+tt.tomlVer+"\"\n"))
			fs.AddFile("/repo/package.json", []byte(`{"version": "`+tt.jsonVer+`"}`))

			manager, err := NewVersionManager(fs, []VersionFileConfig{
				{Path: "/repo/pyproject.toml"},
				{Path: "/repo/package.json"},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.expected, manager.ValidateVersionConsistency())
		})
	}
}

func TestVersionManager_ConsistencyIgnoresUnreadable(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))

	manager, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/pyproject.toml"},
		{Path: "/repo/absent.json"},
	})
	require.NoError(t, err)

	assert.True(t, manager.ValidateVersionConsistency())
}

func TestManagerFromConfig_LegacyFallback(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	manager, err := ManagerFromConfig(fs, ManagerConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pyproject.toml"}, manager.Paths())

	manager, err = ManagerFromConfig(fs, ManagerConfig{VersionFile: "/repo/Cargo.toml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/Cargo.toml"}, manager.Paths())
}

func TestNewVersionManager_BadHandlerConfig(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	_, err := NewVersionManager(fs, []VersionFileConfig{
		{Path: "/repo/x", FileType: "yaml"},
	})
	assert.ErrorIs(t, err, ErrUnknownFileType)
}
