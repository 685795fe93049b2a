package source

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/standardbeagle/incheck/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Line
	}{
		{"empty", "", []Line{}},
		{"single line no newline", "#include <vector>", []Line{{1, "#include <vector>"}}},
		{"trailing newline dropped", "a\nb\n", []Line{{1, "a"}, {2, "b"}}},
		{"crlf stripped", "a\r\nb\r\n", []Line{{1, "a"}, {2, "b"}}},
		{"blank lines kept", "a\n\n\nb", []Line{{1, "a"}, {2, ""}, {3, ""}, {4, "b"}}},
		{"only newline", "\n", []Line{{1, ""}}},
		{"whitespace preserved", "  std::sort(v);  \n", []Line{{1, "  std::sort(v);  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse([]byte(tt.content)))
		})
	}
}

func TestCountLinesMatchesParse(t *testing.T) {
	for _, content := range []string{"", "x", "x\n", "x\ny", "\n\n", "a\r\nb"} {
		assert.Len(t, Parse([]byte(content)), countLines([]byte(content)), "content %q", content)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	content := "#include <vector>  // for std::vector\nstd::vector<int> v;\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	file, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, file.Path)
	assert.Equal(t, int64(len(content)), file.Size)
	assert.Equal(t, Hash([]byte(content)), file.Hash)
	require.Len(t, file.Lines, 2)
	assert.Equal(t, Line{Number: 2, Text: "std::vector<int> v;"}, file.Lines[1])
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.hpp")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, file.Lines)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "missing.cpp"))
		assertInputKind(t, err, ierrors.KindNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ReadFile(dir)
		assertInputKind(t, err, ierrors.KindIsDirectory)
	})

	t.Run("permission", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced here")
		}
		path := filepath.Join(dir, "locked.cpp")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o000))
		_, err := ReadFile(path)
		assertInputKind(t, err, ierrors.KindPermission)
	})
}

func TestHashChangesWithContent(t *testing.T) {
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}

func assertInputKind(t *testing.T, err error, kind ierrors.InputKind) {
	t.Helper()
	require.Error(t, err)
	ie, ok := err.(*ierrors.InputError)
	require.True(t, ok, "expected *InputError, got %T", err)
	assert.Equal(t, kind, ie.Kind)
}
