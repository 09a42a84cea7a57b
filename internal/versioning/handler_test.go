package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

func TestNewFileHandler_Detection(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	tests := []struct {
		path string
		want string
	}{
		{"/repo/pyproject.toml", "*versioning.TOMLHandler"},
		{"/repo/Cargo.toml", "*versioning.TOMLHandler"},
		{"/repo/Pipfile", "*versioning.TOMLHandler"},
		{"/repo/package.json", "*versioning.JSONHandler"},
		{"/repo/composer.json", "*versioning.JSONHandler"},
		{"/repo/VERSION", "*versioning.GenericHandler"},
		{"/repo/app.h", "*versioning.GenericHandler"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			handler, err := NewFileHandler(fs, VersionFileConfig{Path: tt.path})
			require.NoError(t, err)
			assert.IsType(t, handlerOfType(tt.want), handler)
		})
	}
}

func handlerOfType(name string) FileHandler {
	switch name {
	case "*versioning.TOMLHandler":
		return &TOMLHandler{}
	case "*versioning.JSONHandler":
		return &JSONHandler{}
	default:
		return &GenericHandler{}
	}
}

func TestNewFileHandler_ExplicitTypeOverridesDetection(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/data.json", FileType: "generic"})
	require.NoError(t, err)
	assert.IsType(t, &GenericHandler{}, handler)
}

func TestNewFileHandler_UnknownType(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	_, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/x", FileType: "yaml"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFileType)
}

func TestTOMLHandler_ReadWrite(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nname = 'demo'\nversion = \"1.2.3\"\n"))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/pyproject.toml"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "1.2.3", version.String())

	require.NoError(t, handler.WriteVersion(version.Bump(models.BumpMinor, "")))

	after, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "1.3.0", after.String())

	// Sibling keys survive the rewrite.
	assert.Contains(t, string(fs.Content("/repo/pyproject.toml")), "demo")
}

func TestTOMLHandler_ToolTableFallback(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/config.toml", []byte("[tool.verbump]\nversion = \"0.4.0\"\n"))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/config.toml"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "0.4.0", version.String())

	// The write must land back in the table the read found.
	require.NoError(t, handler.WriteVersion(version.Bump(models.BumpPatch, "")))
	content := string(fs.Content("/repo/config.toml"))
	assert.Contains(t, content, "0.4.1")
	assert.NotContains(t, content, "[project]")
}

func TestTOMLHandler_MissingFile(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/absent.toml"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	assert.NoError(t, err)
	assert.Nil(t, version)

	writeErr := handler.WriteVersion(models.FromComponents(1, 0, 0, "", "", ""))
	assert.ErrorIs(t, writeErr, ErrFileNotFound)
}

func TestTOMLHandler_MalformedContent(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/broken.toml", []byte("[project\nversion="))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/broken.toml"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	assert.NoError(t, err)
	assert.Nil(t, version)
}

func TestJSONHandler_ReadWrite(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/package.json", []byte(`{"name": "demo", "version": "2.0.0"}`))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/package.json"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "2.0.0", version.String())

	require.NoError(t, handler.WriteVersion(version.Bump(models.BumpMajor, "")))

	content := string(fs.Content("/repo/package.json"))
	assert.Contains(t, content, `"version": "3.0.0"`)
	assert.Contains(t, content, `"name": "demo"`)
}

func TestJSONHandler_CustomKey(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/meta.json", []byte(`{"app": {"release": "1.0.0"}}`))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/meta.json", VersionKey: "app.release"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "1.0.0", version.String())
}

func TestGenericHandler_DefaultPattern(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/setup.cfg", []byte("[metadata]\nversion = \"0.9.1\"\n"))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/setup.cfg", FileType: "generic"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "0.9.1", version.String())

	require.NoError(t, handler.WriteVersion(version.Bump(models.BumpPatch, "")))
	assert.Contains(t, string(fs.Content("/repo/setup.cfg")), `version = "0.9.2"`)
}

func TestGenericHandler_ComponentGroups(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/version.h", []byte(
		"#define VERSION_MAJOR 1\n#define VERSION_MINOR 4\n#define VERSION_PATCH 2\n"))

	handler, err := NewFileHandler(fs, VersionFileConfig{
		Path:           "/repo/version.h",
		FileType:       "generic",
		VersionPattern: `(?s)VERSION_MAJOR (\d+).*VERSION_MINOR (\d+).*VERSION_PATCH (\d+)`,
	})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "1.4.2", version.String())
}

func TestGenericHandler_NoMatchOnWrite(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/notes.txt", []byte("nothing relevant here\n"))

	handler, err := NewFileHandler(fs, VersionFileConfig{Path: "/repo/notes.txt", FileType: "generic"})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	assert.NoError(t, err)
	assert.Nil(t, version)

	writeErr := handler.WriteVersion(models.FromComponents(1, 0, 0, "", "", ""))
	assert.ErrorIs(t, writeErr, ErrNoMatch)
}

func TestGenericHandler_InvalidPattern(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	_, err := NewFileHandler(fs, VersionFileConfig{
		Path:           "/repo/x",
		FileType:       "generic",
		VersionPattern: "(unclosed",
	})
	assert.Error(t, err)
}

func TestCommonPatterns(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/Dockerfile", []byte(`LABEL version="2.1.0"`+"\n"))

	pattern, ok := CommonPatterns["dockerfile"]
	require.True(t, ok)

	handler, err := NewFileHandler(fs, VersionFileConfig{
		Path:               "/repo/Dockerfile",
		FileType:           "generic",
		VersionPattern:     pattern.Pattern,
		VersionReplacement: pattern.Replacement,
	})
	require.NoError(t, err)

	version, err := handler.ReadVersion()
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, "2.1.0", version.String())
}
