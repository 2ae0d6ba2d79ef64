package storage

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicReplacesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs)
	require.NoError(t, afero.WriteFile(fs, "/out/output.csv", []byte("old"), 0o644))

	err := store.WriteAtomic("/out/output.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "new content")
		return err
	})
	require.NoError(t, err)

	data, err := store.ReadFile("/out/output.csv")
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteAtomicKeepsPreviousFileOnFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs)
	require.NoError(t, afero.WriteFile(fs, "/out/output.csv", []byte("old"), 0o644))

	err := store.WriteAtomic("/out/output.csv", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("disk full")
	})
	require.Error(t, err)

	data, err := store.ReadFile("/out/output.csv")
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicCreatesDirectory(t *testing.T) {
	store := NewFileStore(afero.NewMemMapFs())

	require.NoError(t, store.WriteAtomic("/fresh/dir/output.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "x")
		return err
	}))
	assert.True(t, store.Exists("/fresh/dir/output.csv"))
}

func TestOpenMissingFile(t *testing.T) {
	store := NewFileStore(afero.NewMemMapFs())

	_, err := store.Open("/nope.csv")

	assert.ErrorIs(t, err, ErrNotExist)
	assert.False(t, store.Exists("/nope.csv"))
}
