// Package vfs is the filesystem adapter trait the interpreter core
// consumes (never the host filesystem directly, keeping runs hermetic),
// plus an in-memory reference implementation and a YAML fixture loader for
// tests.
package vfs

import (
	"errors"
	"os"
	"time"
)

// Sentinel errors every FS implementation maps its own failures onto, so
// internal/exec and internal/builtin can translate them to exit statuses
// and messages without knowing which FS is behind the interface.
var (
	ErrNotFound         = errors.New("no such file or directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIsDir            = errors.New("is a directory")
	ErrNotDir           = errors.New("not a directory")
	ErrExists           = errors.New("file exists")
	ErrNotEmpty         = errors.New("directory not empty")
)

// FileInfo is the subset of file metadata the interpreter's test
// operators and builtins (stat, test -f/-d/-s, ls-alikes) need.
type FileInfo struct {
	Name    string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
	IsLink  bool
}

// DirEntry is one entry returned by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// WriteOpts controls WriteFile's create/truncate/append semantics.
type WriteOpts struct {
	Append    bool
	Truncate  bool
	CreateNew bool // fail with ErrExists if the file already exists
}

// RemoveOpts controls Remove's recursive/force semantics.
type RemoveOpts struct {
	Recursive bool
	Force     bool // suppress ErrNotFound
}

// FS is the filesystem contract the interpreter core is written against.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, opts WriteOpts) error
	Stat(path string) (FileInfo, error)
	Lstat(path string) (FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)
	Symlink(target, link string) error
	Readlink(path string) (string, error)
	Realpath(path string) (string, error)
	Mkdir(path string, recursive bool) error
	Remove(path string, opts RemoveOpts) error
	Chmod(path string, mode os.FileMode) error
	Utimes(path string, mtime time.Time) error
	Exists(path string) bool
	Copy(src, dst string, recursive bool) error
	Move(src, dst string) error
}
