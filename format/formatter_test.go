package format_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/numtide/fixstyle/config"
	"github.com/numtide/fixstyle/format"
	"github.com/numtide/fixstyle/test"
	"github.com/numtide/fixstyle/walk"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
)

func newFile(t *testing.T, root string, relPath string) *walk.File {
	t.Helper()

	path := filepath.Join(root, relPath)

	info, err := os.Stat(path)
	require.NoError(t, err)

	return &walk.File{
		Path:    path,
		RelPath: relPath,
		Info:    info,
	}
}

func TestFormatterNotFound(t *testing.T) {
	as := require.New(t)

	env := expand.ListEnviron(os.Environ()...)
	cfg := &config.Formatter{Command: "fix-style-missing-formatter", Options: []string{config.InPlaceFlag}}

	tempDir := test.TempExamples(t)
	out := &bytes.Buffer{}

	// the command is only resolved once there is something to format
	formatter := format.NewFormatter(tempDir, env, cfg, out)
	as.Equal("fix-style-missing-formatter", formatter.Command())
	as.Empty(formatter.Executable())

	err := formatter.Apply(context.Background(), newFile(t, tempDir, "a.cpp"))
	as.ErrorIs(err, format.ErrCommandNotFound)
	as.ErrorContains(err, "fix-style-missing-formatter")

	// nothing is printed for a file which was never handed to the formatter
	as.Empty(out.String())
}

func TestFormatterApply(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)
	command, logPath := test.RecordingFormatter(t)

	env := expand.ListEnviron(os.Environ()...)
	cfg := &config.Formatter{Command: command, Options: []string{config.InPlaceFlag}}

	out := &bytes.Buffer{}

	formatter := format.NewFormatter(tempDir, env, cfg, out)
	as.Empty(formatter.Executable())

	ctx := context.Background()

	as.NoError(formatter.Apply(ctx, newFile(t, tempDir, "a.cpp")))
	as.Equal(command, formatter.Executable())
	as.NoError(formatter.Apply(ctx, newFile(t, tempDir, filepath.Join("sub", "b.h"))))

	as.Equal("Formatting a.cpp...\nFormatting "+filepath.Join("sub", "b.h")+"...\n", out.String())
	as.Equal([]string{"-i a.cpp", "-i " + filepath.Join("sub", "b.h")}, test.Invocations(t, logPath))

	// options are not mutated between invocations
	as.Equal([]string{config.InPlaceFlag}, cfg.Options)
}

func TestFormatterRunsInTreeRoot(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	// fails unless the relative path resolves from the working directory
	command := test.WriteScript(t, "formatter", `test -f "$2" || exit 1`)

	env := expand.ListEnviron(os.Environ()...)
	cfg := &config.Formatter{Command: command, Options: []string{config.InPlaceFlag}}

	formatter := format.NewFormatter(tempDir, env, cfg, &bytes.Buffer{})

	as.NoError(formatter.Apply(context.Background(), newFile(t, tempDir, "e.glsl")))
}

func TestFormatterFailure(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)
	command := test.WriteScript(t, "formatter", `echo "cannot format $2" >&2; exit 3`)

	env := expand.ListEnviron(os.Environ()...)
	cfg := &config.Formatter{Command: command, Options: []string{config.InPlaceFlag}}

	out := &bytes.Buffer{}

	formatter := format.NewFormatter(tempDir, env, cfg, out)

	err := formatter.Apply(context.Background(), newFile(t, tempDir, "a.cpp"))
	as.ErrorContains(err, "formatter '"+command+"' failed to apply to a.cpp")
	as.ErrorContains(err, "exit status 3")

	// the progress line is still printed ahead of the invocation
	as.Equal("Formatting a.cpp...\n", out.String())
}
