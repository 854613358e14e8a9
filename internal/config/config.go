// Package config loads .blfmt.toml and merges it with command line flags.
// Flags win over the file, the file wins over the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/format"
)

// FileName is the config file looked up from the start directory upwards.
const FileName = ".blfmt.toml"

const maxIndentWidth = 16

// Config is the effective configuration of a run.
type Config struct {
	// Path of the file the values came from; empty when none was found.
	Path        string
	Style       format.Style
	IndentWidth int
	UseTabs     bool
	Jobs        int
	Cache       bool
	Exclude     []string
}

// fileConfig mirrors the TOML document.
type fileConfig struct {
	Style       string   `toml:"style"`
	IndentWidth int      `toml:"indent_width"`
	UseTabs     bool     `toml:"use_tabs"`
	Jobs        int      `toml:"jobs"`
	Cache       bool     `toml:"cache"`
	Exclude     []string `toml:"exclude"`
}

// Error is a config problem tied to a file and a diagnostic code.
type Error struct {
	Path string
	Code diag.Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code.ID(), e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Style: format.StyleStroustrup, IndentWidth: 4, Cache: true}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the config for startDir, or returns the
// defaults when there is no file.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path on top of the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.Path = path

	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, &Error{Path: path, Code: diag.CfgParseError, Msg: "failed to parse TOML", Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, invalid(path, "unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("style") {
		style, err := format.ParseStyle(fc.Style)
		if err != nil {
			return Config{}, invalid(path, "%v", err)
		}
		cfg.Style = style
	}
	if meta.IsDefined("indent_width") {
		if err := checkIndent(fc.IndentWidth); err != nil {
			return Config{}, invalid(path, "indent_width: %v", err)
		}
		cfg.IndentWidth = fc.IndentWidth
	}
	if meta.IsDefined("use_tabs") {
		cfg.UseTabs = fc.UseTabs
	}
	if meta.IsDefined("jobs") {
		if fc.Jobs < 0 {
			return Config{}, invalid(path, "jobs must not be negative, got %d", fc.Jobs)
		}
		cfg.Jobs = fc.Jobs
	}
	if meta.IsDefined("cache") {
		cfg.Cache = fc.Cache
	}
	if meta.IsDefined("exclude") {
		for _, pat := range fc.Exclude {
			if _, err := filepath.Match(pat, ""); err != nil {
				return Config{}, invalid(path, "exclude pattern %q: %v", pat, err)
			}
		}
		cfg.Exclude = fc.Exclude
	}
	return cfg, nil
}

func invalid(path, msg string, args ...any) error {
	return &Error{Path: path, Code: diag.CfgInvalidValue, Msg: fmt.Sprintf(msg, args...)}
}

func checkIndent(n int) error {
	if n < 1 || n > maxIndentWidth {
		return fmt.Errorf("must be between 1 and %d, got %d", maxIndentWidth, n)
	}
	return nil
}

// Overrides holds the flags given on the command line; nil fields were not set.
type Overrides struct {
	Style       *string
	IndentWidth *int
	UseTabs     *bool
	Jobs        *int
	NoCache     *bool
	Exclude     []string
}

// Merge applies o over c. Exclude patterns from flags are appended.
func (c Config) Merge(o Overrides) (Config, error) {
	if o.Style != nil {
		style, err := format.ParseStyle(*o.Style)
		if err != nil {
			return Config{}, err
		}
		c.Style = style
	}
	if o.IndentWidth != nil {
		if err := checkIndent(*o.IndentWidth); err != nil {
			return Config{}, fmt.Errorf("--indent %w", err)
		}
		c.IndentWidth = *o.IndentWidth
	}
	if o.UseTabs != nil {
		c.UseTabs = *o.UseTabs
	}
	if o.Jobs != nil {
		if *o.Jobs < 0 {
			return Config{}, fmt.Errorf("--jobs must not be negative, got %d", *o.Jobs)
		}
		c.Jobs = *o.Jobs
	}
	if o.NoCache != nil && *o.NoCache {
		c.Cache = false
	}
	if len(o.Exclude) > 0 {
		c.Exclude = append(append([]string(nil), c.Exclude...), o.Exclude...)
	}
	return c, nil
}

// FormatOptions returns the formatter options the config selects.
func (c Config) FormatOptions() format.Options {
	return format.Options{Style: c.Style, IndentWidth: c.IndentWidth, UseTabs: c.UseTabs}
}
