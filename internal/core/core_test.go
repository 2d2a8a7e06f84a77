package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	exists, err := FileExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, nil, 0600))

	exists, err = FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFlagChannel(t *testing.T) {
	c := make(chan struct{}, 1)
	FlagChannel(c)
	FlagChannel(c)
	assert.Len(t, c, 1)
}
