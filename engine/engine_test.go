package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirEngineOpenClose(t *testing.T) {
	e := &DirEngine{Root: t.TempDir()}

	h, err := e.Open("graph.db")
	require.NoError(t, err)
	assert.Equal(t, "graph.db", h.Name())
	assert.Equal(t, e.Path("graph.db"), h.Path())
	assert.True(t, e.Exists("graph.db"))
	assert.True(t, e.Locked("graph.db"))

	require.NoError(t, e.Close(h))
	assert.False(t, e.Locked("graph.db"))
	assert.True(t, e.Exists("graph.db"), "data survives close")
}

func TestDirEngineOpenLocked(t *testing.T) {
	e := &DirEngine{Root: t.TempDir()}

	h, err := e.Open("graph.db")
	require.NoError(t, err)
	defer e.Close(h)

	_, err = e.Open("graph.db")
	assert.Error(t, err, "second open of a locked instance must fail")
}

func TestDirEngineCloseTwice(t *testing.T) {
	e := &DirEngine{Root: t.TempDir()}

	h, err := e.Open("graph.db")
	require.NoError(t, err)
	require.NoError(t, e.Close(h))
	assert.Error(t, e.Close(h))
}

func TestDirEngineExists(t *testing.T) {
	e := &DirEngine{Root: t.TempDir()}

	assert.False(t, e.Exists("missing"))

	// A plain file is not an instance directory.
	require.NoError(t, os.WriteFile(filepath.Join(e.Root, "file"), []byte("x"), 0o600))
	assert.False(t, e.Exists("file"))
}
