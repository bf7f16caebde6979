package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "ir", name)
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	base := []string{"--ui", "off", "--color", "off"}
	code = runCLI(context.Background(), append(base, args...), &out, &errb)
	return code, out.String(), errb.String()
}

func TestLocs(t *testing.T) {
	code, out, errOut := run(t, "--no-cache", "locs", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "/src/parity.c:3\n")
	assert.Contains(t, out, "/src/parity.c:4:7\n")
}

func TestDumpJSON(t *testing.T) {
	code, out, errOut := run(t, "--no-cache", "dump", "--format", "json", fixture("inlineasm.ll"))
	require.Equal(t, 0, code, errOut)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc["functions"])
}

func TestCallsAndFuncs(t *testing.T) {
	code, out, errOut := run(t, "--no-cache", "calls", fixture("inlineasm.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "SITE")
	assert.Contains(t, out, "asm")

	code, out, errOut = run(t, "--no-cache", "funcs", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "even")
	assert.Contains(t, out, "ext")
}

func TestCallgraph(t *testing.T) {
	code, out, errOut := run(t, "--no-cache", "callgraph", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "  wave 1: ext\n")
	assert.Contains(t, out, "recursive: even odd\n")
	assert.NotContains(t, out, "calls into recursion")
}

func TestPartialFailure(t *testing.T) {
	code, out, errOut := run(t, "--no-cache", "locs", fixture("truncated.ll"), fixture("parity.ll"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "==> "+fixture("parity.ll")+" <==")
	assert.Contains(t, errOut, fixture("truncated.ll")+": ")
	assert.Contains(t, errOut, "1 of 2 inputs failed")
	assert.NotContains(t, errOut, "error: failed")
}

func TestStatsUsesCache(t *testing.T) {
	dir := t.TempDir()
	code, out, errOut := run(t, "--cache-dir", dir, "stats", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "functions")
	assert.NotContains(t, out, "source")

	code, out, errOut = run(t, "--cache-dir", dir, "stats", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "cache")
}

func TestConfigFileSetsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(cfg, []byte("[output]\nformat = \"json\"\n\n[cache]\nenabled = false\n"), 0o644))

	code, out, errOut := run(t, "--config", cfg, "dump", fixture("inlineasm.ll"))
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "{"), out)

	code, out, errOut = run(t, "--config", cfg, "dump", "--format", "text", fixture("inlineasm.ll"))
	require.Equal(t, 0, code, errOut)
	assert.False(t, strings.HasPrefix(out, "{"), out)
}

func TestInvalidFlags(t *testing.T) {
	tests := [][]string{
		{"--color", "sometimes", "locs", fixture("parity.ll")},
		{"--trace-level", "loud", "locs", fixture("parity.ll")},
		{"--log-level", "chatty", "locs", fixture("parity.ll")},
		{"--backend", "nope", "--no-cache", "locs", fixture("parity.ll")},
		{"dump", "--format", "xml", fixture("parity.ll")},
		{"locs"},
	}
	for _, args := range tests {
		code, _, errOut := run(t, args...)
		assert.Equal(t, 1, code, "args %v", args)
		assert.Contains(t, errOut, "error: ", "args %v", args)
	}
}

func TestTraceToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.ndjson")
	code, _, errOut := run(t, "--no-cache", "--trace", out, "--trace-level", "debug", "locs", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reconstruct:")
	assert.Contains(t, string(data), "pipeline")
}

func TestTimings(t *testing.T) {
	code, _, errOut := run(t, "--no-cache", "--timings", "locs", fixture("parity.ll"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "timings:")
	assert.Contains(t, errOut, "total")
}

func TestVersionJSON(t *testing.T) {
	code, out, errOut := run(t, "version", "--format", "json", "--hash")
	require.Equal(t, 0, code, errOut)
	var payload struct {
		Tool      string   `json:"tool"`
		Version   string   `json:"version"`
		GitCommit string   `json:"git_commit"`
		Backends  []string `json:"backends"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "irgraph", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GitCommit)
	assert.Contains(t, payload.Backends, "llir")
}
