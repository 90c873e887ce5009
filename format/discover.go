package format

import (
	"context"
	"fmt"

	"github.com/numtide/fixstyle/stats"
	"github.com/numtide/fixstyle/walk"
)

// Discover walks the tree once and returns, for each pattern in order, the files matching it.
// A file matching several patterns is returned once per pattern.
func Discover(
	ctx context.Context,
	walker walk.Walker,
	patterns []*Pattern,
	statz *stats.Stats,
) ([]*walk.File, error) {
	matches := make([][]*walk.File, len(patterns))

	err := walker.Walk(ctx, func(file *walk.File) error {
		statz.Add(stats.Traversed, 1)

		for idx, pattern := range patterns {
			if pattern.Match(file.RelPath) {
				matches[idx] = append(matches[idx], file)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", walker.Root(), err)
	}

	var files []*walk.File
	for idx := range matches {
		files = append(files, matches[idx]...)
	}

	statz.Add(stats.Matched, len(files))

	return files, nil
}
