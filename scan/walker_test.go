package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTranscripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.log", "")
	writeFile(t, dir, "a.log", "")
	writeFile(t, dir, "c", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	writeFile(t, filepath.Join(dir, "sub"), "nested.log", "")

	files, err := ListTranscripts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.log"),
		filepath.Join(dir, "b.log"),
		filepath.Join(dir, "c"),
	}, files)
}

func TestListTranscriptsNotADirectory(t *testing.T) {
	file := writeFile(t, t.TempDir(), "a.log", "")
	_, err := ListTranscripts(file)
	assert.True(t, errors.Is(err, NOT_A_DIRECTORY))

	_, err = ListTranscripts(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, NOT_A_DIRECTORY))

	assert.False(t, IsDir(file))
	assert.True(t, IsDir(filepath.Dir(file)))
}
