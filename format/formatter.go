package format

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/numtide/fixstyle/config"
	fslog "github.com/numtide/fixstyle/internal/log"
	"github.com/numtide/fixstyle/walk"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

var (
	// ErrCommandNotFound is returned when the formatter command is not available.
	ErrCommandNotFound = errors.New("formatter command not found in PATH")
	// ErrFormattingFailed is returned when one or more formatter invocations exited with an error.
	ErrFormattingFailed = errors.New("formatting failure")
	// ErrFailOnChange is returned when --fail-on-change is enabled and the formatter modified a file.
	ErrFailOnChange = errors.New("unexpected changes detected, --fail-on-change is enabled")
)

// Formatter is the external command applied in place to each discovered file.
type Formatter struct {
	config *config.Formatter

	log        *log.Logger
	env        expand.Environ
	executable string // path to the executable described by Command, resolved on first use
	workingDir string

	// progress lines are written here, one per invocation
	out io.Writer
}

// Command returns the formatter command as configured.
func (f *Formatter) Command() string {
	return f.config.Command
}

// Executable returns the path to the executable defined by Command, empty until it has been resolved.
func (f *Formatter) Executable() string {
	return f.executable
}

// lookPath resolves Command against PATH once, relative commands being resolved from the working directory.
func (f *Formatter) lookPath() error {
	if f.executable != "" {
		return nil
	}

	executable, err := interp.LookPathDir(f.workingDir, f.env, f.config.Command)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, f.config.Command)
	}

	f.log.Debugf("resolved executable: %s", executable)
	f.executable = executable

	return nil
}

// Apply prints a progress line for file and then runs the formatter against it, blocking until it exits.
// ErrCommandNotFound is returned, before anything is printed, when the command cannot be resolved.
func (f *Formatter) Apply(ctx context.Context, file *walk.File) error {
	start := time.Now()

	if err := f.lookPath(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(f.out, "Formatting %s...\n", file.RelPath); err != nil {
		return fmt.Errorf("failed to write progress for %s: %w", file.RelPath, err)
	}

	args := append(slices.Clone(f.config.Options), file.RelPath)

	cmd := exec.CommandContext(ctx, f.executable, args...) //nolint:gosec
	// replace the default Cancel handler installed by CommandContext because it sends SIGKILL (-9).
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.Dir = f.workingDir

	f.log.Debugf("executing: %s", cmd.String())

	out, err := cmd.CombinedOutput()
	if err != nil {
		f.log.Errorf("failed to format %s: %s", file.RelPath, err)

		if len(out) > 0 {
			_, _ = fmt.Fprintf(os.Stderr, "\n%s\n", out)
		}

		return fmt.Errorf("formatter '%s' failed to apply to %s: %w", f.Command(), file.RelPath, err)
	}

	if len(out) > 0 {
		w := fslog.Writer{Log: f.log, Level: log.DebugLevel}
		_, _ = w.Write(out)
	}

	f.log.Infof("%s processed in %v", file.RelPath, time.Since(start))

	return nil
}

// NewFormatter creates a Formatter running in treeRoot. The command is not resolved until the first file is applied.
func NewFormatter(
	treeRoot string,
	env expand.Environ,
	cfg *config.Formatter,
	out io.Writer,
) *Formatter {
	return &Formatter{
		config:     cfg,
		log:        log.WithPrefix("format | " + filepath.Base(cfg.Command)),
		env:        env,
		workingDir: treeRoot,
		out:        out,
	}
}
