package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests.
type MockFileSystem struct {
	files      map[string]*mockFile
	currentDir string
}

type mockFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates an empty MockFileSystem rooted at /repo.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:      make(map[string]*mockFile),
		currentDir: "/repo",
	}
}

// AddFile seeds a file, creating parent directories implicitly.
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	clean := filepath.Clean(path)
	mfs.files[clean] = &mockFile{
		content: content,
		mode:    0644,
		modTime: time.Now(),
	}
	mfs.addParents(clean)
}

// AddDir seeds a directory.
func (mfs *MockFileSystem) AddDir(path string) {
	clean := filepath.Clean(path)
	mfs.files[clean] = &mockFile{
		mode:    fs.ModeDir | 0755,
		modTime: time.Now(),
		isDir:   true,
	}
	mfs.addParents(clean)
}

// SetModTime overrides a file's modification time (for recency checks).
func (mfs *MockFileSystem) SetModTime(path string, t time.Time) {
	if f, ok := mfs.files[filepath.Clean(path)]; ok {
		f.modTime = t
	}
}

// Content returns the current bytes of a seeded or written file.
func (mfs *MockFileSystem) Content(path string) []byte {
	if f, ok := mfs.files[filepath.Clean(path)]; ok {
		return f.content
	}
	return nil
}

func (mfs *MockFileSystem) addParents(path string) {
	dir := filepath.Dir(path)
	for dir != "." && dir != "/" && dir != path {
		if _, ok := mfs.files[dir]; !ok {
			mfs.files[dir] = &mockFile{
				mode:    fs.ModeDir | 0755,
				modTime: time.Now(),
				isDir:   true,
			}
		}
		path = dir
		dir = filepath.Dir(dir)
	}
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	f, ok := mfs.files[filepath.Clean(path)]
	if !ok || f.isDir {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return f.content, nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	clean := filepath.Clean(path)
	mfs.files[clean] = &mockFile{
		content: data,
		mode:    perm,
		modTime: time.Now(),
	}
	mfs.addParents(clean)
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	clean := filepath.Clean(path)
	if _, ok := mfs.files[clean]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(mfs.files, clean)
	return nil
}

func (mfs *MockFileSystem) Chmod(path string, perm fs.FileMode) error {
	f, ok := mfs.files[filepath.Clean(path)]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: path, Err: fs.ErrNotExist}
	}
	f.mode = perm
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	clean := filepath.Clean(path)
	dir, ok := mfs.files[clean]
	if !ok || !dir.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	var names []string
	for p := range mfs.files {
		if filepath.Dir(p) == clean {
			names = append(names, p)
		}
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, p := range names {
		entries = append(entries, &mockDirEntry{info: mfs.infoFor(p)})
	}
	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.AddDir(path)
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	clean := filepath.Clean(path)
	if _, ok := mfs.files[clean]; !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return mfs.infoFor(clean), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, ok := mfs.files[filepath.Clean(path)]
	return ok
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	return mfs.currentDir, nil
}

func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	clean := filepath.Clean(root)
	if _, ok := mfs.files[clean]; !ok {
		return fn(root, nil, &fs.PathError{Op: "walk", Path: root, Err: fs.ErrNotExist})
	}

	var paths []string
	for p := range mfs.files {
		if p == clean || strings.HasPrefix(p, clean+string(filepath.Separator)) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	for i := 0; i < len(paths); i++ {
		p := paths[i]
		err := fn(p, &mockDirEntry{info: mfs.infoFor(p)}, nil)
		if errors.Is(err, fs.SkipAll) {
			return nil
		}
		if errors.Is(err, fs.SkipDir) {
			// Skip the subtree, keep walking siblings.
			prefix := p + string(filepath.Separator)
			for i+1 < len(paths) && strings.HasPrefix(paths[i+1], prefix) {
				i++
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (mfs *MockFileSystem) infoFor(path string) fs.FileInfo {
	f := mfs.files[path]
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(f.content)),
		mode:    f.mode,
		modTime: f.modTime,
		isDir:   f.isDir,
	}
}
