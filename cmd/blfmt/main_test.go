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

	"github.com/BendyLand/blfmt-sub000/internal/diagfmt"
	"github.com/BendyLand/blfmt-sub000/internal/driver"
)

const (
	messyMain = "int main(void){return 0;}\n"
	tidyMain  = "int main(void)\n{\n    return 0;\n}\n"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFormatRewritesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)

	stdout, _, err := execute(t, "", "--no-cache", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "reformatted "+path)
	assert.Equal(t, tidyMain, readFile(t, path))

	stdout, _, err = execute(t, "", "--no-cache", "--check", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestCheckReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)

	stdout, _, err := execute(t, "", "--no-cache", "--check", dir)
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, path+"\n", stdout)
	assert.Equal(t, messyMain, readFile(t, path), "--check must not touch files")
}

func TestQuietCheckPrintsNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.c", messyMain)

	stdout, _, err := execute(t, "", "-q", "--no-cache", "--check", dir)
	require.ErrorIs(t, err, errReported)
	assert.Empty(t, stdout)
}

func TestStdin(t *testing.T) {
	stdout, _, err := execute(t, messyMain, "--no-cache", "-")
	require.NoError(t, err)
	assert.Equal(t, tidyMain, stdout)
}

func TestStdinCheck(t *testing.T) {
	stdout, _, err := execute(t, messyMain, "--no-cache", "--check", "--lang", "cpp", "-")
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, "<stdin>\n", stdout)
}

func TestStdoutLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)

	stdout, _, err := execute(t, "", "--no-cache", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, tidyMain, stdout)
	assert.Equal(t, messyMain, readFile(t, path))
}

func TestJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.c", messyMain)
	writeFile(t, dir, "b.c", tidyMain)

	stdout, _, err := execute(t, "", "--no-cache", "--check", "--format", "json", dir)
	require.ErrorIs(t, err, errReported)

	var run diagfmt.RunJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &run), stdout)
	require.Len(t, run.Files, 2)
	assert.Equal(t, 1, run.Changed)
	assert.Equal(t, 0, run.Failed)
	assert.True(t, run.Files[0].Changed)
	assert.False(t, run.Files[1].Changed)
}

func TestShortDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.c", "int main(void){return 0;}\n@@@\n")

	_, stderr, err := execute(t, "", "--no-cache", "--stdout", "--format", "short", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning FMT1003 ")
	assert.NotContains(t, stderr, " | ", "short output has no snippets")
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".blfmt.toml", "indent_width = 2\n")
	path := writeFile(t, dir, "main.c", messyMain)

	stdout, _, err := execute(t, "", "--no-cache", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, "int main(void)\n{\n  return 0;\n}\n", stdout)

	stdout, _, err = execute(t, "", "--no-cache", "--stdout", "--indent", "8", path)
	require.NoError(t, err)
	assert.Equal(t, "int main(void)\n{\n        return 0;\n}\n", stdout)
}

func TestBadConfigFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".blfmt.toml", "style = \"gnu\"\n")
	path := writeFile(t, dir, "main.c", messyMain)

	_, _, err := execute(t, "", "--no-cache", path)
	require.Error(t, err)
	assert.Equal(t, messyMain, readFile(t, path))
}

func TestExcludeFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vendor"), 0o755))
	vendored := writeFile(t, dir, filepath.Join("vendor", "lib.c"), messyMain)
	own := writeFile(t, dir, "main.c", messyMain)

	_, _, err := execute(t, "", "--no-cache", "--exclude", "vendor", dir)
	require.NoError(t, err)
	assert.Equal(t, tidyMain, readFile(t, own))
	assert.Equal(t, messyMain, readFile(t, vendored))
}

func TestCacheIsUsed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)
	cacheDir := t.TempDir()

	run := func(args ...string) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		_ = cmd.ExecuteContext(context.Background())
	}
	t.Setenv("XDG_CACHE_HOME", cacheDir)
	run("--stdout", path)

	entries, err := os.ReadDir(filepath.Join(cacheDir, "blfmt", "fmt"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestFlagErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "stdout with check", args: []string{"--stdout", "--check", path}, want: "--stdout cannot be used with --check"},
		{name: "stdout with json", args: []string{"--stdout", "--format", "json", path}, want: "cannot be combined with json"},
		{name: "unknown format", args: []string{"--format", "yaml", path}, want: "unsupported output format"},
		{name: "unknown style", args: []string{"--style", "gnu", path}, want: "gnu"},
		{name: "unknown lang", args: []string{"--lang", "rust", path}, want: "--lang"},
		{name: "unknown ui", args: []string{"--ui=sometimes", path}, want: "--ui"},
		{name: "unknown color", args: []string{"--color", "maybe", path}, want: "--color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", append([]string{"--no-cache"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Equal(t, messyMain, readFile(t, path))
}

func TestMissingPathDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", messyMain)
	missing := filepath.Join(dir, "gone.c")

	_, stderr, err := execute(t, "", "--no-cache", path, missing)
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, tidyMain, readFile(t, path))
	assert.Contains(t, stderr, "IO4001")
	assert.Contains(t, stderr, "gone.c")
}

func TestNoSourceFiles(t *testing.T) {
	_, _, err := execute(t, "", "--no-cache", t.TempDir())
	require.ErrorIs(t, err, driver.ErrNoSourceFiles)
}

func TestTreeCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", tidyMain)

	stdout, _, err := execute(t, "", "tree", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "(translation_unit [0-"), stdout)
	assert.Contains(t, stdout, "(function_definition")

	_, _, err = execute(t, "", "tree", filepath.Join(dir, "notes.txt"))
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "version", "--format", "json")
	require.NoError(t, err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "blfmt", payload.Tool)
	assert.NotEmpty(t, payload.Version)

	stdout, _, err = execute(t, "", "--color", "off", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "blfmt "), stdout)
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeOff, "off": uiModeOff, "AUTO": uiModeAuto, " on ": uiModeOn} {
		got, err := readUIMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("sometimes")
	require.Error(t, err)

	var buf bytes.Buffer
	assert.False(t, shouldUseTUI(uiModeAuto, &buf))
	assert.True(t, shouldUseTUI(uiModeOn, &buf))
	assert.False(t, shouldUseTUI(uiModeOff, &buf))
}
