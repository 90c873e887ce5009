package test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cp "github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
)

// ExamplesPaths lists the files in test/examples in filesystem walk order, dot files excluded.
var ExamplesPaths = []string{
	"README.md",
	"a.cpp",
	"build/d.glsl",
	"e.glsl",
	"liblibs/i.cpp",
	"libs/c.cpp",
	"mylibs/f.cpp",
	"sub/b.h",
	"sub/libs/g.h",
}

func TempExamples(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	TempExamplesInDir(t, tempDir)

	return tempDir
}

func TempExamplesInDir(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, cp.Copy("../test/examples", dir), "failed to copy test data to dir")
}

func TempFile(t *testing.T, dir string, pattern string, contents *string) *os.File {
	t.Helper()

	file, err := os.CreateTemp(dir, pattern)
	require.NoError(t, err, "failed to create temp file")

	if contents == nil {
		return file
	}

	_, err = file.WriteString(*contents)
	require.NoError(t, err, "failed to write contents to temp file")
	require.NoError(t, file.Close(), "failed to close temp file")

	file, err = os.Open(file.Name())
	require.NoError(t, err, "failed to open temp file")

	return file
}

// WriteScript writes an executable shell script with the given body into a new temp dir, returning its path.
func WriteScript(t *testing.T, name string, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	contents := "#!/bin/sh\n" + body + "\n"

	require.NoError(t, os.WriteFile(path, []byte(contents), 0o755), "failed to write script") //nolint:gosec

	return path
}

// RecordingFormatter writes a formatter which appends its arguments, one invocation per line, to a log file.
// It returns the path to the formatter and the path to the log.
func RecordingFormatter(t *testing.T) (string, string) {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "invocations.log")
	script := WriteScript(t, "formatter", fmt.Sprintf(`printf '%%s\n' "$*" >> "%s"`, logPath))

	return script, logPath
}

// Invocations reads the log written by a RecordingFormatter.
func Invocations(t *testing.T, logPath string) []string {
	t.Helper()

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err, "failed to read invocations log")

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// ChangeWorkDir changes the current working directory for the duration of the test.
// The original directory is restored when the test ends.
func ChangeWorkDir(t *testing.T, dir string) {
	t.Helper()

	// capture current cwd, so we can replace it after the test is finished
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(fmt.Errorf("failed to get current working directory: %w", err))
	}

	t.Cleanup(func() {
		// return to the previous working directory
		if err := os.Chdir(cwd); err != nil {
			t.Fatal(fmt.Errorf("failed to return to the previous working directory: %w", err))
		}
	})

	// change to the new directory
	if err := os.Chdir(dir); err != nil {
		t.Fatal(fmt.Errorf("failed to change working directory: %w", err))
	}
}
