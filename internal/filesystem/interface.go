package filesystem

import (
	"io/fs"
)

// FileSystem abstracts file operations so version files, changelogs and
// hook scripts can be exercised against an in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	Chmod(path string, perm fs.FileMode) error

	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)

	WalkDir(root string, fn fs.WalkDirFunc) error
}
