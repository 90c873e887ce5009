package walk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/numtide/fixstyle/test"
	"github.com/numtide/fixstyle/walk"
	"github.com/stretchr/testify/require"
)

func TestFilesystemWalker(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	walker, err := walk.NewFilesystem(tempDir)
	as.NoError(err)
	as.Equal(tempDir, walker.Root())

	var paths []string

	err = walker.Walk(context.Background(), func(file *walk.File) error {
		as.Equal(filepath.Join(tempDir, file.RelPath), file.Path)
		as.False(file.Info.IsDir())

		paths = append(paths, filepath.ToSlash(file.RelPath))

		return nil
	})
	as.NoError(err)

	// lexical order, .hidden/h.cpp is skipped
	as.Equal(test.ExamplesPaths, paths)
}

func TestFilesystemWalkerSymlinks(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	// a link to a regular file
	as.NoError(os.Symlink(filepath.Join(tempDir, "a.cpp"), filepath.Join(tempDir, "z.cpp")))
	// a dangling link
	as.NoError(os.Symlink(filepath.Join(tempDir, "missing.cpp"), filepath.Join(tempDir, "dangling.cpp")))
	// a link to a directory, which is not followed
	as.NoError(os.Symlink(filepath.Join(tempDir, "sub"), filepath.Join(tempDir, "zsub")))

	target, err := os.Stat(filepath.Join(tempDir, "a.cpp"))
	as.NoError(err)

	walker, err := walk.NewFilesystem(tempDir)
	as.NoError(err)

	var paths []string

	err = walker.Walk(context.Background(), func(file *walk.File) error {
		if file.RelPath == "z.cpp" {
			// the info describes the target, not the link
			as.True(file.Info.Mode().IsRegular())
			as.Equal(target.Size(), file.Info.Size())

			changed, _, err := file.HasChanged()
			as.NoError(err)
			as.False(changed)
		}

		paths = append(paths, filepath.ToSlash(file.RelPath))

		return nil
	})
	as.NoError(err)

	as.Equal(append(append([]string{}, test.ExamplesPaths...), "z.cpp"), paths)
}

func TestFilesystemWalkerCancelled(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	walker, err := walk.NewFilesystem(tempDir)
	as.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = walker.Walk(ctx, func(*walk.File) error {
		return nil
	})
	as.ErrorIs(err, context.Canceled)
}

func TestFilesystemWalkerInvalidRoot(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	_, err := walk.NewFilesystem(filepath.Join(tempDir, "missing"))
	as.ErrorContains(err, "failed to stat tree root")

	_, err = walk.NewFilesystem(filepath.Join(tempDir, "a.cpp"))
	as.ErrorContains(err, "is not a directory")
}

func TestHasChanged(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)
	path := filepath.Join(tempDir, "a.cpp")

	info, err := os.Stat(path)
	as.NoError(err)

	file := &walk.File{Path: path, RelPath: "a.cpp", Info: info}

	changed, _, err := file.HasChanged()
	as.NoError(err)
	as.False(changed)

	// grow the file
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	as.NoError(err)
	_, err = f.WriteString("// formatted\n")
	as.NoError(err)
	as.NoError(f.Close())

	changed, current, err := file.HasChanged()
	as.NoError(err)
	as.True(changed)
	as.Equal(info.Size()+int64(len("// formatted\n")), current.Size())

	as.NoError(os.Remove(path))

	_, _, err = file.HasChanged()
	as.ErrorContains(err, "failed to stat")
}

func TestTypeString(t *testing.T) {
	as := require.New(t)

	for _, name := range []string{"auto", "filesystem", "git"} {
		walkType, err := walk.TypeString(name)
		as.NoError(err)
		as.Equal(name, walkType.String())
	}

	_, err := walk.TypeString("jujutsu")
	as.ErrorContains(err, "unknown walk type: jujutsu")
}
