package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/karagenc/prestic/examples"
	"github.com/stretchr/testify/require"
)

func TestWriteExample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "prestic")

	path, err := writeExample(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "prestic.jsonc"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, examples.Document, content)

	// An existing document is left alone.
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	_, err = writeExample(dir)
	require.Error(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{}", string(content))
}
