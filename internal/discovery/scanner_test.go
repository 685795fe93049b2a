package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/incheck/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Exclude = []string{"**/third_party/**"}
	return cfg
}

// setupTree creates a small C++ project:
//
//	src/main.cpp src/util.hpp src/notes.txt src/gen/a.pb.h
//	third_party/fmt/core.h .hidden/x.cpp build/out.cpp (gitignored)
func setupTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.cpp"), "int main() {}\n")
	writeFile(t, filepath.Join(root, "src", "util.hpp"), "#pragma once\n")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "notes\n")
	writeFile(t, filepath.Join(root, "src", "gen", "a.pb.h"), "#pragma once\n")
	writeFile(t, filepath.Join(root, "third_party", "fmt", "core.h"), "#pragma once\n")
	writeFile(t, filepath.Join(root, ".hidden", "x.cpp"), "\n")
	writeFile(t, filepath.Join(root, "build", "out.cpp"), "\n")
	writeFile(t, filepath.Join(root, ".gitignore"), "build/\n")
	return root
}

func TestExpandDirectory(t *testing.T) {
	root := setupTree(t)
	s := NewScanner(newTestConfig(root), nil)

	files, err := s.Expand([]string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "src", "gen", "a.pb.h"),
		filepath.Join(root, "src", "main.cpp"),
		filepath.Join(root, "src", "util.hpp"),
	}, files)
}

func TestExpandWithoutGitignore(t *testing.T) {
	root := setupTree(t)
	cfg := newTestConfig(root)
	cfg.Scan.RespectGitignore = false

	files, err := NewScanner(cfg, nil).Expand([]string{root})
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(root, "build", "out.cpp"))
}

func TestExpandIncludeAndExclude(t *testing.T) {
	root := setupTree(t)
	cfg := newTestConfig(root)
	cfg.Include = []string{"src/**/*.h", "src/*.hpp"}
	cfg.AddExclude("**/gen/**")

	files, err := NewScanner(cfg, nil).Expand([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "util.hpp")}, files)
}

func TestExpandMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.cpp"), "x")
	writeFile(t, filepath.Join(root, "large.cpp"), "0123456789")

	cfg := newTestConfig(root)
	cfg.Scan.MaxFileSize = 5

	files, err := NewScanner(cfg, nil).Expand([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "small.cpp")}, files)
}

func TestExpandCustomExtensions(t *testing.T) {
	root := setupTree(t)
	cfg := newTestConfig(root)
	cfg.Scan.Extensions = []string{".txt"}

	files, err := NewScanner(cfg, nil).Expand([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "notes.txt")}, files)
}

func TestExpandFileArgumentsVerbatim(t *testing.T) {
	root := setupTree(t)
	s := NewScanner(newTestConfig(root), nil)

	missing := filepath.Join(root, "missing.cpp")
	notes := filepath.Join(root, "src", "notes.txt")
	files, err := s.Expand([]string{notes, missing, notes})
	require.NoError(t, err)

	// files are passed through even when filters would reject them
	assert.Equal(t, []string{missing, notes}, files)
}

func TestExpandGlob(t *testing.T) {
	root := setupTree(t)
	writeFile(t, filepath.Join(root, "src", "blob.hpp"), "a\x00b")
	s := NewScanner(newTestConfig(root), nil)

	files, err := s.Expand([]string{filepath.Join(root, "src", "**", "*.h*")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src", "gen", "a.pb.h"),
		filepath.Join(root, "src", "util.hpp"),
	}, files)
}

func TestExpandBadGlob(t *testing.T) {
	s := NewScanner(newTestConfig(t.TempDir()), nil)
	_, err := s.Expand([]string{"src/[abc"})
	assert.Error(t, err)
}

func TestExpandDeduplicatesOverlappingArgs(t *testing.T) {
	root := setupTree(t)
	s := NewScanner(newTestConfig(root), nil)

	main := filepath.Join(root, "src", "main.cpp")
	files, err := s.Expand([]string{filepath.Join(root, "src"), main})
	require.NoError(t, err)

	count := 0
	for _, f := range files {
		if f == main {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestWalkSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "x.cpp"), "\n")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))

	cfg := newTestConfig(root)
	cfg.Scan.FollowSymlinks = true

	files, err := NewScanner(cfg, nil).Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a", "x.cpp")}, files)
}

func TestWalkSymlinkNotFollowedByDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "lib.hpp"), "\n")
	require.NoError(t, os.Symlink(other, filepath.Join(root, "linked")))

	cfg := newTestConfig(root)
	files, err := NewScanner(cfg, nil).Walk(root)
	require.NoError(t, err)
	assert.Empty(t, files)

	cfg.Scan.FollowSymlinks = true
	files, err = NewScanner(cfg, nil).Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "linked", "lib.hpp")}, files)
}

func TestIsGlob(t *testing.T) {
	assert.True(t, IsGlob("src/*.cpp"))
	assert.True(t, IsGlob("src/**"))
	assert.True(t, IsGlob("a?.h"))
	assert.True(t, IsGlob("{a,b}.h"))
	assert.False(t, IsGlob("src/main.cpp"))
}
