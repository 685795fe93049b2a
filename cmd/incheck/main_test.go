package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/incheck/internal/report"
	"github.com/standardbeagle/incheck/internal/version"
)

const (
	bareSource     = "#include <vector>\nint main() { return 0; }\n"
	cleanSource    = "#include <algorithm>  // for std::sort\nvoid f() { std::sort(v.begin(), v.end()); }\n"
	unlistedSource = "#include <algorithm>  // for std::sort\nstd::sort(v);\nstd::find(v);\n"
)

// setupProject creates a project directory, makes it the working directory
// and isolates the home config.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEBUG", "")

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"incheck"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestNoArgumentsShowsHelp(t *testing.T) {
	setupProject(t, nil)

	code, stdout, _ := runCLI(t)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "USAGE")
	assert.Contains(t, stdout, "incheck [OPTIONS] [FILE|DIR|GLOB]...")
	assert.Contains(t, stdout, "--disable-unlisted")
}

func TestVersionFlag(t *testing.T) {
	setupProject(t, nil)

	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, version.Info())
}

func TestCheckSingleFile(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": bareSource})

	code, stdout, _ := runCLI(t, "a.cpp")
	assert.Equal(t, exitOK, code, "findings alone never fail without --strict")

	want := "##- a.cpp -##\n\n" +
		"-- 1) BARE INCLUDES --\n\n" +
		"1| #include <vector>\n" +
		"-> Bare include directive.\n" +
		"-> Add a comment to '#include <vector>' that lists which functions depend on it, e.g., '#include <vector>  // for std::foo, std::bar'.\n\n" +
		"-- 2) UNUSED FUNCTIONS --\n\n" +
		"-> No unused functions found.\n\n" +
		"-- 3) UNLISTED FUNCTIONS --\n\n" +
		"-> No unlisted functions found.\n\n" +
		report.Separator + "\n"
	assert.Equal(t, want, stdout)
}

func TestStrictExitCode(t *testing.T) {
	setupProject(t, map[string]string{
		"bare.cpp":  bareSource,
		"clean.cpp": cleanSource,
	})

	code, _, stderr := runCLI(t, "--strict", "bare.cpp")
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stderr, "1 findings")

	code, stdout, _ := runCLI(t, "--strict", "clean.cpp")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "-> All clear, no issues found.")

	code, _, _ = runCLI(t, "--strict", "--disable-bare", "bare.cpp")
	assert.Equal(t, exitOK, code, "suppressed findings do not count")
}

func TestUnreadableFileExitCode(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": cleanSource})

	code, stdout, stderr := runCLI(t, "a.cpp", "missing.cpp")
	assert.Equal(t, exitUnreadable, code)
	assert.Contains(t, stdout, "##- a.cpp -##")
	assert.Contains(t, stderr, "file not found: missing.cpp")
}

func TestDisableFlags(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": unlistedSource})

	code, stdout, _ := runCLI(t, "--disable-bare", "--disable-unused", "a.cpp")
	require.Equal(t, exitOK, code)
	assert.NotContains(t, stdout, "BARE INCLUDES")
	assert.NotContains(t, stdout, "UNUSED FUNCTIONS")
	assert.Contains(t, stdout, "-- 3) UNLISTED FUNCTIONS --")
	assert.Contains(t, stdout, "3| std::find(v);")

	_, stdout, _ = runCLI(t, "--disable-unlisted", "a.cpp")
	assert.Contains(t, stdout, "-> All clear, no issues found.")
}

func TestJSONFormat(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": unlistedSource})

	code, stdout, _ := runCLI(t, "--format", "json", "a.cpp")
	require.Equal(t, exitOK, code)

	var fr report.FileReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &fr))
	assert.Equal(t, "a.cpp", fr.Path)
	require.NotNil(t, fr.Unlisted)
	require.Len(t, *fr.Unlisted, 1)
	assert.Equal(t, "std::find", (*fr.Unlisted)[0].Symbol)
	assert.Contains(t, (*fr.Unlisted)[0].Link, "q=std%3A%3Afind")
}

func TestInvalidFormatIsFatal(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": cleanSource})

	code, stdout, stderr := runCLI(t, "--format", "xml", "a.cpp")
	assert.Equal(t, exitFatal, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "report.format")
}

func TestDirectoryArgument(t *testing.T) {
	setupProject(t, map[string]string{
		"src/a.cpp":             bareSource,
		"src/b.hpp":             cleanSource,
		"src/notes.txt":         bareSource,
		"src/third_party/x.cpp": bareSource,
		"src/.hidden/y.cpp":     bareSource,
		"src/generated/gen.cpp": bareSource,
	})

	code, stdout, _ := runCLI(t, "--exclude", "**/generated/**", "--exclude", "**/third_party/**", "-j", "2", "src")
	require.Equal(t, exitOK, code)

	assert.Contains(t, stdout, "src/a.cpp")
	assert.Contains(t, stdout, "src/b.hpp")
	assert.NotContains(t, stdout, "notes.txt")
	assert.NotContains(t, stdout, "x.cpp")
	assert.NotContains(t, stdout, "y.cpp")
	assert.NotContains(t, stdout, "gen.cpp")
	assert.Contains(t, strings.ToUpper(stdout), "TOTAL: 2 FILES")
}

func TestGlobArgument(t *testing.T) {
	setupProject(t, map[string]string{
		"src/a.cpp":     bareSource,
		"src/sub/b.cpp": bareSource,
		"src/c.hpp":     bareSource,
	})

	code, stdout, _ := runCLI(t, "src/**/*.cpp")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "##- src/a.cpp -##")
	assert.Contains(t, stdout, "##- src/sub/b.cpp -##")
	assert.NotContains(t, stdout, "c.hpp")
}

func TestConfigFile(t *testing.T) {
	setupProject(t, map[string]string{
		"a.cpp":        unlistedSource,
		"incheck.toml": "[report]\nunlisted = false\n",
	})

	code, stdout, _ := runCLI(t, "--strict", "-c", "incheck.toml", "a.cpp")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "-> All clear, no issues found.")
}

func TestProjectConfigDiscovered(t *testing.T) {
	setupProject(t, map[string]string{
		"a.cpp":        bareSource,
		".incheck.kdl": "report {\n    bare false\n}\n",
	})

	code, stdout, _ := runCLI(t, "--strict", "a.cpp")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "-> All clear, no issues found.")
}

func TestMissingConfigFileIsFatal(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": bareSource})

	code, _, stderr := runCLI(t, "-c", "nope.kdl", "a.cpp")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "failed to load config from nope.kdl")
}

func TestUnknownFlagIsFatal(t *testing.T) {
	setupProject(t, nil)

	code, _, _ := runCLI(t, "--bogus", "a.cpp")
	assert.Equal(t, exitFatal, code)
}

func TestVerboseLogsToStderr(t *testing.T) {
	setupProject(t, map[string]string{"a.cpp": bareSource})

	code, stdout, stderr := runCLI(t, "-v", "a.cpp")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "DEBU")
	assert.NotContains(t, stdout, "DEBU")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRechecksChangedFile(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"src/a.cpp":    bareSource,
		".incheck.kdl": "watch {\n    debounce_ms 20\n}\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stdout := &lockedBuffer{}
	stderr := &lockedBuffer{}
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"incheck", "--watch", "src"}, stdout, stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "-- 1) BARE INCLUDES --")
	}, 5*time.Second, 10*time.Millisecond)

	// Give the watcher time to register before changing the file.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.cpp"), []byte(unlistedSource), 0644))

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "-> Add 'std::find' as a comment")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop on cancel")
	}
}
