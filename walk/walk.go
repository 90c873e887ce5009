package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Type string

const (
	Auto       Type = "auto"
	Filesystem Type = "filesystem"
	Git        Type = "git"
)

func (t Type) String() string {
	return string(t)
}

// TypeString parses a walk type from its string form.
func TypeString(s string) (Type, error) {
	switch t := Type(s); t {
	case Auto, Filesystem, Git:
		return t, nil
	default:
		return "", fmt.Errorf("unknown walk type: %v", s)
	}
}

// File represents a file discovered within the tree root.
type File struct {
	Path    string
	RelPath string
	Info    fs.FileInfo
}

// HasChanged checks if the file has changed by comparing its current state (size, mod time) to when it was first
// read. It returns a boolean indicating if the file has changed, the current file info, and an error if any.
func (f *File) HasChanged() (bool, fs.FileInfo, error) {
	// get the file's current state
	current, err := os.Stat(f.Path)
	if err != nil {
		return false, nil, fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}

	// check the size first
	if f.Info.Size() != current.Size() {
		return true, current, nil
	}

	// POSIX specifies EPOCH time for Mod time, but some filesystems give more precision.
	// Some formatters mess with the mod time but not to the same precision, triggering false positives.
	// We truncate everything below a second.
	if f.Info.ModTime().Truncate(time.Second) != current.ModTime().Truncate(time.Second) {
		return true, current, nil
	}

	return false, nil, nil
}

func (f *File) String() string {
	return f.RelPath
}

type WalkFunc func(file *File) error

type Walker interface {
	Root() string
	Walk(ctx context.Context, fn WalkFunc) error
}

func New(walkerType Type, root string) (Walker, error) {
	switch walkerType {
	case Git:
		return NewGit(root)
	case Auto:
		return Detect(root)
	case Filesystem:
		return NewFilesystem(root)
	default:
		return nil, fmt.Errorf("unknown walker type: %v", walkerType)
	}
}

// Detect prefers the git index when root is a git repository, falling back to the filesystem.
func Detect(root string) (Walker, error) {
	w, err := NewGit(root)
	if err == nil {
		return w, nil
	}

	log.Debugf("falling back to filesystem walker: %v", err)

	return NewFilesystem(root)
}

// hidden reports whether any segment of a relative path is a dot file or directory.
func hidden(relPath string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(relPath), "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}

	return false
}
