package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/numtide/fixstyle/walk"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InPlaceFlag is passed to the formatter so that it rewrites the file on disk.
const InPlaceFlag = "-i"

var (
	// Includes are the recursive globs used to discover files, applied in order.
	Includes = []string{"**/*.cpp", "**/*.h", "**/*.glsl"}
	// Excludes are directory names. Any file with one of these as a path segment is skipped.
	Excludes = []string{"libs", "build"}

	ErrInvalidWalk = errors.New("invalid walk type")
)

// Config holds the resolved settings for a single run.
type Config struct {
	FailOnChange     bool   `mapstructure:"fail-on-change"`
	Quiet            bool   `mapstructure:"quiet"`
	TreeRoot         string `mapstructure:"tree-root"`
	Verbose          uint8  `mapstructure:"verbose"`
	Walk             string `mapstructure:"walk"`
	WorkingDirectory string `mapstructure:"working-dir"`

	Formatter Formatter `mapstructure:",squash"`

	// fixed, never read from flags or the environment
	Includes []string `mapstructure:"-"`
	Excludes []string `mapstructure:"-"`
}

type Formatter struct {
	// Command is the executable invoked once per file.
	Command string `mapstructure:"formatter"`
	// Options are passed to Command ahead of the file path.
	Options []string `mapstructure:"-"`
}

// SetFlags appends our flags to the provided flag set.
// Flag names match the mapstructure tags in Config so viper can unmarshal them directly.
func SetFlags(fs *pflag.FlagSet) {
	fs.Bool(
		"fail-on-change", false,
		"Exit with error if any files were changed by the formatter. Useful for CI. (env $FIX_STYLE_FAIL_ON_CHANGE)",
	)
	fs.String(
		"formatter", "clang-format",
		"The formatter to invoke for each file, it is passed "+InPlaceFlag+" and the file path. "+
			"(env $FIX_STYLE_FORMATTER)",
	)
	fs.BoolP(
		"quiet", "q", false,
		"Only log errors. (env $FIX_STYLE_QUIET)",
	)
	fs.String(
		"tree-root", "",
		"The root directory from which files are discovered (defaults to the working directory). "+
			"(env $FIX_STYLE_TREE_ROOT)",
	)
	fs.CountP(
		"verbose", "v",
		"Set the verbosity of logs e.g. -vv. (env $FIX_STYLE_VERBOSE)",
	)
	fs.String(
		"walk", walk.Filesystem.String(),
		"The method used to traverse the files within the tree root. Currently supports "+
			"<auto|filesystem|git>. (env $FIX_STYLE_WALK)",
	)
	fs.StringP(
		"working-dir", "C", ".",
		"Run as if fix-style was started in the specified working directory instead of the current working "+
			"directory. (env $FIX_STYLE_WORKING_DIR)",
	)
}

// NewViper creates a Viper instance pre-configured with the following options:
// * automatic env enabled
// * `FIX_STYLE_` env prefix for environment variables
// * replacement of `-` with `_` when mapping flags to env e.g. `tree-root` => `FIX_STYLE_TREE_ROOT`.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("fix_style")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return v
}

// FromViper takes a viper instance and produces a Config instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var err error

	cfg := &Config{}

	if err = v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// default if it isn't set (e.g. in tests when using a bare viper instance)
	if cfg.WorkingDirectory == "" {
		cfg.WorkingDirectory = "."
	}

	if cfg.Walk == "" {
		cfg.Walk = walk.Filesystem.String()
	}

	if cfg.Formatter.Command == "" {
		cfg.Formatter.Command = "clang-format"
	}

	if _, err = walk.TypeString(cfg.Walk); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWalk, cfg.Walk)
	}

	// resolve the working directory to an absolute path
	cfg.WorkingDirectory, err = filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	// the tree root defaults to the working directory, relative tree roots are resolved against it
	if cfg.TreeRoot == "" {
		cfg.TreeRoot = cfg.WorkingDirectory
	} else if !filepath.IsAbs(cfg.TreeRoot) {
		cfg.TreeRoot = filepath.Join(cfg.WorkingDirectory, cfg.TreeRoot)
	}

	cfg.TreeRoot = filepath.Clean(cfg.TreeRoot)

	cfg.Formatter.Options = []string{InPlaceFlag}
	cfg.Includes = append([]string(nil), Includes...)
	cfg.Excludes = append([]string(nil), Excludes...)

	return cfg, nil
}
