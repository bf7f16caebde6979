package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := filepath.Join(root, configFileName)
	require.NoError(t, os.WriteFile(want, []byte("[load]\njobs = 2\n"), 0o644))

	got, ok, err := findConfig(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) string {
		p := filepath.Join(dir, configFileName)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	cfg, err := loadConfig(write("[cache]\ndir = \"cache\"\n[load]\nbackend = \"llir\"\njobs = 3\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.Cache.Dir)
	assert.Equal(t, "llir", cfg.Load.Backend)
	assert.Equal(t, 3, cfg.Load.Jobs)
	assert.Nil(t, cfg.Cache.Enabled)

	_, err = loadConfig(write("[load]\nthreads = 3\n"))
	assert.ErrorContains(t, err, "unknown keys: load.threads")

	_, err = loadConfig(write("[load]\njobs = -1\n"))
	assert.ErrorContains(t, err, "must not be negative")

	_, err = loadConfig(write("[load\n"))
	assert.ErrorContains(t, err, "failed to parse TOML")
}

func TestApplyConfig_FlagsWin(t *testing.T) {
	a := &app{}
	root := newRootCmd(a)
	pf := root.PersistentFlags()
	require.NoError(t, pf.Set("backend", "llvmc"))

	enabled := false
	cfg := fileConfig{
		Output: outputConfig{Color: "off"},
		Cache:  cacheConfig{Enabled: &enabled},
		Load:   loadSection{Backend: "llir", Jobs: 4},
	}
	require.NoError(t, applyConfig(pf, cfg))

	backend, _ := pf.GetString("backend")
	assert.Equal(t, "llvmc", backend)
	jobs, _ := pf.GetInt("jobs")
	assert.Equal(t, 4, jobs)
	noCache, _ := pf.GetBool("no-cache")
	assert.True(t, noCache)
	colorFlag, _ := pf.GetString("color")
	assert.Equal(t, "off", colorFlag)
}

func TestApplyConfig_BadValue(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Int("jobs", 0, "")
	cmd.Flags().String("color", "", "")
	err := applyConfig(cmd.Flags(), fileConfig{Output: outputConfig{Color: "on"}, Cache: cacheConfig{Dir: "/tmp/irgraph"}})
	require.ErrorContains(t, err, "cache-dir")
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.False(t, shouldUseTUI(uiModeOn, true))
	assert.True(t, shouldUseTUI(uiModeOn, false))
	assert.False(t, shouldUseTUI(uiModeOff, false))
}
