// Package gpfs implements the GuineaPig in-memory file system: a
// string-keyed, line-oriented store that doubles as a map-reduce job's
// GPFS-backed input/output side.
package gpfs

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when cat/head/tail is asked for a (dir, file)
// pair that has never been appended to.
var ErrNotFound = errors.New("gpfs: file not found")

const namespacePrefix = "gpfs:"

// HasPrefix reports whether a directory string names a GPFS location.
func HasPrefix(dir string) bool {
	return len(dir) >= len(namespacePrefix) && dir[:len(namespacePrefix)] == namespacePrefix
}

// Strip removes the "gpfs:" namespace marker, if present, so that
// "gpfs:foo" and "foo" address the same directory.
func Strip(dir string) string {
	if HasPrefix(dir) {
		return dir[len(namespacePrefix):]
	}
	return dir
}

type fileKey struct {
	dir  string
	file string
}

// FS is the in-memory store. The zero value is not usable; use New.
type FS struct {
	mu       sync.RWMutex
	filesIn  map[string][]string
	linesOf  map[fileKey][]string
}

// New creates an empty store, live for the lifetime of the process.
func New() *FS {
	return &FS{
		filesIn: make(map[string][]string),
		linesOf: make(map[fileKey][]string),
	}
}

// ListDirs returns every directory with at least one recorded file.
func (fs *FS) ListDirs() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dirs := make([]string, 0, len(fs.filesIn))
	for d := range fs.filesIn {
		dirs = append(dirs, d)
	}
	return dirs
}

// ListFiles returns the files previously appended to d, in insertion order.
func (fs *FS) ListFiles(dir string) []string {
	d := Strip(dir)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	files := fs.filesIn[d]
	out := make([]string, len(files))
	copy(out, files)
	return out
}

// Append records line under (dir, file), creating the file on first use.
// line must not carry a trailing newline.
func (fs *FS) Append(dir, file, line string) {
	d := Strip(dir)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	k := fileKey{d, file}
	if _, ok := fs.linesOf[k]; !ok {
		fs.filesIn[d] = append(fs.filesIn[d], file)
		fs.linesOf[k] = nil
	}
	fs.linesOf[k] = append(fs.linesOf[k], line)
}

// Cat returns the full content of (dir, file) in insertion order.
func (fs *FS) Cat(dir, file string) ([]string, error) {
	return fs.slice(dir, file, func(lines []string) []string { return lines })
}

// Head returns the first n lines of (dir, file).
func (fs *FS) Head(dir, file string, n int) ([]string, error) {
	return fs.slice(dir, file, func(lines []string) []string {
		if n > len(lines) {
			n = len(lines)
		}
		return lines[:n]
	})
}

// Tail returns the last n lines of (dir, file).
func (fs *FS) Tail(dir, file string, n int) ([]string, error) {
	return fs.slice(dir, file, func(lines []string) []string {
		if n > len(lines) {
			n = 0
		} else {
			n = len(lines) - n
		}
		return lines[n:]
	})
}

func (fs *FS) slice(dir, file string, pick func([]string) []string) ([]string, error) {
	d := Strip(dir)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	lines, ok := fs.linesOf[fileKey{d, file}]
	if !ok {
		return nil, errors.WithStack(ErrNotFound)
	}
	picked := pick(lines)
	out := make([]string, len(picked))
	copy(out, picked)
	return out, nil
}

// RmDir atomically removes dir, its file list, and every (dir, file) line
// sequence. Removing an absent directory is a no-op.
func (fs *FS) RmDir(dir string) {
	d := Strip(dir)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	files, ok := fs.filesIn[d]
	if !ok {
		return
	}
	for _, f := range files {
		delete(fs.linesOf, fileKey{d, f})
	}
	delete(fs.filesIn, d)
}
