package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Project.Root)
	assert.Equal(t, DefaultExtensions, cfg.Scan.Extensions)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Scan.MaxFileSize)
	assert.True(t, cfg.Scan.RespectGitignore)
	assert.True(t, cfg.Report.Bare)
	assert.True(t, cfg.Report.Unused)
	assert.True(t, cfg.Report.Unlisted)
	assert.Equal(t, FormatText, cfg.Report.Format)
	assert.Equal(t, DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.NoError(t, Validate(cfg))
}

func TestDefaultExtensionsNotShared(t *testing.T) {
	cfg := Default()
	cfg.Scan.Extensions[0] = ".zzz"
	assert.Equal(t, ".c", DefaultExtensions[0])
}

func TestLoadWithRoot_NoFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()

	cfg, err := LoadWithRoot(root)
	require.NoError(t, err)

	abs, _ := filepath.Abs(root)
	assert.Equal(t, abs, cfg.Project.Root)
	assert.Equal(t, Default().Report, cfg.Report)
}

func TestLoadWithRoot_ProjectKDL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, KDLFileName), "report {\n    unused false\n}\nproject {\n    root \"src\"\n}\n")

	cfg, err := LoadWithRoot(root)
	require.NoError(t, err)

	assert.False(t, cfg.Report.Unused)
	assert.Equal(t, filepath.Join(root, "src"), cfg.Project.Root)
}

func TestLoadWithRoot_KDLPreferredOverTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, KDLFileName), "performance {\n    workers 2\n}\n")
	writeFile(t, filepath.Join(root, TOMLFileName), "[performance]\nworkers = 7\n")

	cfg, err := LoadWithRoot(root)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Performance.Workers)
}

func TestLoadWithRoot_TOMLFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, TOMLFileName), "[performance]\nworkers = 7\n")

	cfg, err := LoadWithRoot(root)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Performance.Workers)
}

func TestLoadWithRoot_GlobalThenProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, KDLFileName), "report {\n    color false\n    bare false\n}\nexclude \"**/global/**\"\n")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, KDLFileName), "report {\n    bare true\n}\nexclude \"**/local/**\"\n")

	cfg, err := LoadWithRoot(root)
	require.NoError(t, err)

	assert.False(t, cfg.Report.Color, "global setting kept")
	assert.True(t, cfg.Report.Bare, "project overrides global")
	assert.Contains(t, cfg.Exclude, "**/global/**")
	assert.Contains(t, cfg.Exclude, "**/local/**")
}

func TestLoadWithRoot_InvalidProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, KDLFileName), "scan {\n    max_file_size \"nope\"\n}\n")

	_, err := LoadWithRoot(root)
	assert.Error(t, err)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[report]\nformat = \"json\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Report.Format)
	assert.Equal(t, filepath.Clean(dir), cfg.Project.Root)

	_, err = Load(filepath.Join(dir, "missing.kdl"))
	assert.Error(t, err)
}

func TestResolvedWorkers(t *testing.T) {
	cfg := Default()
	cfg.Performance.Workers = 5
	assert.Equal(t, 5, cfg.ResolvedWorkers())

	cfg.Performance.Workers = 0
	assert.Equal(t, max(1, runtime.NumCPU()-1), cfg.ResolvedWorkers())
}

func TestDeduplicatePatterns(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, DeduplicatePatterns([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, DeduplicatePatterns(nil))
}
