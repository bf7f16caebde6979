package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "irgraph.toml"

type fileConfig struct {
	Output outputConfig `toml:"output"`
	Trace  traceConfig  `toml:"trace"`
	Cache  cacheConfig  `toml:"cache"`
	Load   loadSection  `toml:"load"`
}

type outputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type cacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type loadSection struct {
	Backend string `toml:"backend"`
	Jobs    int    `toml:"jobs"`
}

// findConfig searches startDir and its parents for irgraph.toml.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
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

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Load.Jobs < 0 {
		return fileConfig{}, fmt.Errorf("%s: [load].jobs must not be negative", path)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// flagSetter is the subset of a flag set that applyConfig writes.
type flagSetter interface {
	Changed(name string) bool
	Set(name, value string) error
}

// applyConfig copies file values into flags the user did not set.
func applyConfig(flags flagSetter, cfg fileConfig) error {
	values := []struct {
		flag  string
		value string
	}{
		{"color", cfg.Output.Color},
		{"trace-level", cfg.Trace.Level},
		{"trace-mode", cfg.Trace.Mode},
		{"trace", cfg.Trace.Output},
		{"cache-dir", cfg.Cache.Dir},
		{"backend", cfg.Load.Backend},
	}
	if cfg.Load.Jobs > 0 {
		values = append(values, struct{ flag, value string }{"jobs", strconv.Itoa(cfg.Load.Jobs)})
	}
	if cfg.Cache.Enabled != nil {
		values = append(values, struct{ flag, value string }{"no-cache", strconv.FormatBool(!*cfg.Cache.Enabled)})
	}
	for _, v := range values {
		if v.value == "" || flags.Changed(v.flag) {
			continue
		}
		if err := flags.Set(v.flag, v.value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", v.flag, err)
		}
	}
	return nil
}
