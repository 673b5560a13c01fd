package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.js")
	require.NoError(t, os.WriteFile(path, []byte(`console.log("hi")`), 0o644))

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, `console.log("hi")`, src)
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestObjectBaseName(t *testing.T) {
	assert.Equal(t, "hello", ObjectBaseName("/tmp/hello.js"))
	assert.Equal(t, "hello", ObjectBaseName("hello.ts"))
	assert.Equal(t, "hello.txt", ObjectBaseName("hello.txt"))
}
