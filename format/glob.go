package format

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Pattern is a recursive glob matched against slash separated paths relative to the tree root.
// `*` never crosses a `/`, while `**/` matches zero or more directories.
type Pattern struct {
	raw   string
	globs []glob.Glob
}

func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether relPath, in either slash or platform form, matches the pattern.
func (p *Pattern) Match(relPath string) bool {
	path := filepath.ToSlash(relPath)

	for idx := range p.globs {
		if p.globs[idx].Match(path) {
			return true
		}
	}

	return false
}

// CompilePatterns prepares the patterns, preserving their order.
func CompilePatterns(patterns []string) ([]*Pattern, error) {
	result := make([]*Pattern, len(patterns))

	for i, pattern := range patterns {
		p := &Pattern{raw: pattern}

		// gobwas treats `**/` as requiring at least one directory, so we also compile every variant with
		// one or more of them removed
		for _, variant := range expandRecursive(pattern) {
			g, err := glob.Compile(variant, '/')
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern '%v': %w", pattern, err)
			}

			p.globs = append(p.globs, g)
		}

		result[i] = p
	}

	return result, nil
}

func expandRecursive(pattern string) []string {
	for i := 0; i+3 <= len(pattern); i++ {
		if pattern[i:i+3] != "**/" || (i > 0 && pattern[i-1] != '/') {
			continue
		}

		var variants []string
		for _, tail := range expandRecursive(pattern[i+3:]) {
			variants = append(variants, pattern[:i+3]+tail, pattern[:i]+tail)
		}

		return variants
	}

	return []string{pattern}
}
