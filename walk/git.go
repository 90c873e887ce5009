package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
)

type gitWalker struct {
	root string
	repo *git.Repository
	log  *log.Logger
}

func (g gitWalker) Root() string {
	return g.root
}

// Walk emits the regular files tracked in the git index, in index order.
func (g gitWalker) Walk(ctx context.Context, fn WalkFunc) error {
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("failed to open git index: %w", err)
	}

	for _, entry := range idx.Entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// we only want regular files, not symlinks or submodules
		if !entry.Mode.IsRegular() {
			continue
		}

		relPath := filepath.FromSlash(entry.Name)
		if hidden(relPath) {
			continue
		}

		path := filepath.Join(g.root, relPath)

		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			// tracked but removed from the working tree
			g.log.Debugf("path %s not found on disk, skipping", relPath)

			continue
		} else if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.Mode().IsRegular() {
			continue
		}

		if err = fn(&File{
			Path:    path,
			RelPath: relPath,
			Info:    info,
		}); err != nil {
			return err
		}
	}

	return nil
}

func NewGit(root string) (Walker, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repo: %w", err)
	}

	return &gitWalker{
		root: root,
		repo: repo,
		log:  log.WithPrefix("walk | git"),
	}, nil
}
