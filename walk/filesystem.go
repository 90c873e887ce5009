package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

type filesystemWalker struct {
	root          string
	relPathOffset int
}

func (f filesystemWalker) Root() string {
	return f.root
}

func (f filesystemWalker) relPath(path string) (string, error) {
	// quick optimization for the majority of use cases
	if len(path) >= f.relPathOffset && path[:len(f.root)] == f.root {
		return path[f.relPathOffset:], nil
	}
	// fallback to proper relative path resolution
	return filepath.Rel(f.root, path)
}

func (f filesystemWalker) Walk(ctx context.Context, fn WalkFunc) error {
	walkFn := func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == f.root {
			return nil
		}

		// dot files and directories are never discovered
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		// ignore directories, symlinked directories are not followed
		if info.IsDir() {
			return nil
		}

		// symlinks are discovered when they point at a regular file
		if info.Mode()&os.ModeSymlink == os.ModeSymlink {
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				log.Debugf("skipping symlink %s: target is missing or not a regular file", path)

				return nil
			}

			// track the target, which is what the formatter rewrites
			info = target
		}

		relPath, err := f.relPath(path)
		if err != nil {
			return fmt.Errorf("failed to determine a relative path for %s: %w", path, err)
		}

		return fn(&File{
			Path:    path,
			RelPath: relPath,
			Info:    info,
		})
	}

	return filepath.Walk(f.root, walkFn)
}

func NewFilesystem(root string) (Walker, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tree root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("tree root %s is not a directory", root)
	}

	relPathOffset := len(root) + 1
	if strings.HasSuffix(root, string(filepath.Separator)) {
		relPathOffset = len(root)
	}

	return filesystemWalker{
		root:          root,
		relPathOffset: relPathOffset,
	}, nil
}
