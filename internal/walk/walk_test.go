package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWalk_FindsMatchingFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rusk.toml"), "")
	writeFile(t, filepath.Join(root, "sub", ".rusk.toml"), "")
	writeFile(t, filepath.Join(root, "sub", "README.md"), "")

	var found []string
	err := Walk(root, IsRuskfile, func(path string) {
		found = append(found, path)
	})

	require.NoError(t, err)
	sort.Strings(found)
	assert.Equal(t, []string{
		filepath.Join(root, "rusk.toml"),
		filepath.Join(root, "sub", ".rusk.toml"),
	}, found)
}

func TestWalk_HonoursGitignoreUnderVCSRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	writeFile(t, filepath.Join(root, ".gitignore"), "ignored/\n")
	writeFile(t, filepath.Join(root, "kept", "rusk.toml"), "")
	writeFile(t, filepath.Join(root, "ignored", "rusk.toml"), "")

	var found []string
	err := Walk(root, IsRuskfile, func(path string) {
		found = append(found, path)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "kept", "rusk.toml")}, found)
}

func TestIsRuskfile(t *testing.T) {
	assert.True(t, IsRuskfile("rusk.toml"))
	assert.True(t, IsRuskfile(".rusk.toml"))
	assert.False(t, IsRuskfile("other.toml"))
}
