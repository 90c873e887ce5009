package format

import (
	"path/filepath"
	"slices"
	"strings"
)

// IsExcluded reports whether any segment of path is exactly one of the dirs.
// A directory named `liblibs` does not match `libs`.
func IsExcluded(path string, dirs []string) bool {
	if len(dirs) == 0 {
		return false
	}

	cleaned := filepath.Clean(filepath.FromSlash(path))

	for _, segment := range strings.Split(cleaned, string(filepath.Separator)) {
		if slices.Contains(dirs, segment) {
			return true
		}
	}

	return false
}
