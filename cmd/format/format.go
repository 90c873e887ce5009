package format

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/numtide/fixstyle/config"
	"github.com/numtide/fixstyle/format"
	"github.com/numtide/fixstyle/stats"
	"github.com/numtide/fixstyle/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/expand"
)

const (
	BatchSize = 1024
)

func Run(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command) error {
	cmd.SilenceUsage = true

	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// create a prefixed logger
	l := log.WithPrefix("format")

	patterns, err := format.CompilePatterns(cfg.Includes)
	if err != nil {
		return fmt.Errorf("failed to compile includes: %w", err)
	}

	env := expand.ListEnviron(os.Environ()...)

	formatter := format.NewFormatter(cfg.TreeRoot, env, &cfg.Formatter, cmd.OutOrStdout())

	walkType, err := walk.TypeString(cfg.Walk)
	if err != nil {
		return fmt.Errorf("invalid walk type: %w", err)
	}

	walker, err := walk.New(walkType, cfg.TreeRoot)
	if err != nil {
		return fmt.Errorf("failed to create walker: %w", err)
	}

	l.Debugf("tree root: %s", cfg.TreeRoot)

	// create an app context and listen for shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exit)

		select {
		case <-exit:
			cancel()
		case <-ctx.Done():
		}
	}()

	eg, ctx := errgroup.WithContext(ctx)

	// files which survived exclusion, in discovery order
	filesCh := make(chan *walk.File, BatchSize)

	var formatErrors []error

	eg.Go(discoverFiles(ctx, cfg, walker, patterns, statz, filesCh))
	eg.Go(applyFormatter(ctx, cfg, formatter, statz, filesCh, &formatErrors))

	if err = eg.Wait(); err != nil {
		return err
	}

	statz.Log(l)

	if len(formatErrors) > 0 {
		return fmt.Errorf(
			"%w: %d of %d file(s) failed\n%w",
			format.ErrFormattingFailed, len(formatErrors), statz.Value(stats.Formatted)+len(formatErrors),
			errors.Join(formatErrors...),
		)
	}

	// if fail on change has been enabled, check that no files were actually changed, throwing an error if so
	if cfg.FailOnChange && statz.Value(stats.Changed) != 0 {
		return format.ErrFailOnChange
	}

	return nil
}

func discoverFiles(
	ctx context.Context,
	cfg *config.Config,
	walker walk.Walker,
	patterns []*format.Pattern,
	statz *stats.Stats,
	filesCh chan<- *walk.File,
) func() error {
	return func() error {
		// close the files channel when we're done
		defer close(filesCh)

		files, err := format.Discover(ctx, walker, patterns, statz)
		if err != nil {
			return err
		}

		for _, file := range files {
			if format.IsExcluded(file.RelPath, cfg.Excludes) {
				log.Debugf("path matched excluded directories: %s", file.RelPath)
				statz.Add(stats.Excluded, 1)

				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case filesCh <- file:
			}
		}

		return nil
	}
}

// applyFormatter invokes the formatter on each file in turn.
// A failing invocation is recorded in formatErrors and does not stop the remaining files.
func applyFormatter(
	ctx context.Context,
	cfg *config.Config,
	formatter *format.Formatter,
	statz *stats.Stats,
	filesCh <-chan *walk.File,
	formatErrors *[]error,
) func() error {
	return func() error {
		for file := range filesCh {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := formatter.Apply(ctx, file)
			if errors.Is(err, format.ErrCommandNotFound) {
				// no point trying the remaining files
				return fmt.Errorf("failed to initialise formatter: %w", err)
			} else if err != nil {
				statz.Add(stats.Failed, 1)
				*formatErrors = append(*formatErrors, err)

				continue
			}

			// the formatter may have removed or renamed the file
			changed, newInfo, err := file.HasChanged()
			if err != nil {
				statz.Add(stats.Failed, 1)
				*formatErrors = append(*formatErrors, fmt.Errorf("failed to check %s for changes: %w", file.RelPath, err))

				continue
			}

			statz.Add(stats.Formatted, 1)

			if changed {
				statz.Add(stats.Changed, 1)

				logMethod := log.Debug
				if cfg.FailOnChange {
					// surface the changed file more obviously
					logMethod = log.Error
				}

				logMethod(
					"file has changed",
					"path", file.RelPath,
					"prev_size", file.Info.Size(),
					"current_size", newInfo.Size(),
				)

				file.Info = newInfo
			}
		}

		return nil
	}
}
