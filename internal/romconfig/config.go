// Package romconfig loads the rom-config YAML named in spec.md §6 and
// binds the `init` subcommand's flags (--rom-config, --output-path,
// --build-path, --dry) through viper, so they can be overridden by
// environment variables the way Manu343726-cucaracha's cmd/root.go binds
// cobra flags through viper.
package romconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigModule mirrors the original Rust ConfigModule
// (original_source/src/config/config.rs): the pieces needed to rebuild
// one linkable object from a de-linked module.
type ConfigModule struct {
	Object       string `yaml:"object"`
	Hash         string `yaml:"hash"`
	Splits       string `yaml:"splits"`
	Symbols      string `yaml:"symbols"`
	OverlayLoads string `yaml:"overlay_loads,omitempty"`
}

// Config is the top-level per-ROM configuration: the main module plus
// every overlay.
type Config struct {
	Module   ConfigModule   `yaml:"module"`
	Overlays []ConfigModule `yaml:"overlays"`
}

// RunOptions are the CLI-surface options named in spec.md §6.
type RunOptions struct {
	RomConfigPath string
	OutputPath    string
	BuildPath     string
	Dry           bool

	// FilterScriptPath optionally names a JS file compiled into an
	// xref.SymbolFilter by internal/script (SPEC_FULL.md §4.7).
	FilterScriptPath string
}

// LoadRunOptions binds flags already registered on v (by the cobra
// command) to environment variables under the DSDELINK_ prefix and
// returns the resolved options.
func LoadRunOptions(v *viper.Viper) (RunOptions, error) {
	v.SetEnvPrefix("dsdelink")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	opts := RunOptions{
		RomConfigPath:    v.GetString("rom-config"),
		OutputPath:       v.GetString("output-path"),
		BuildPath:        v.GetString("build-path"),
		Dry:              v.GetBool("dry"),
		FilterScriptPath: v.GetString("filter-script"),
	}

	if opts.RomConfigPath == "" {
		return opts, fmt.Errorf("--rom-config is required")
	}
	if opts.BuildPath == "" && opts.OutputPath != "" {
		opts.BuildPath = filepath.Join(opts.OutputPath, "build")
	}
	return opts, nil
}

// RequireOutputPath returns an error if opts has no output path, for
// commands (like `init`) that write files and so cannot proceed
// without one, unlike read-only commands such as `info`/`inspect`.
func (opts RunOptions) RequireOutputPath() error {
	if opts.OutputPath == "" {
		return fmt.Errorf("--output-path is required")
	}
	return nil
}
