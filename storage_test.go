package simplefs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenImageRoundTrip(t *testing.T) {
	t.Parallel()

	files := [][]byte{
		[]byte("on-disk image"),
		[]byte("second payload"),
	}
	path := filepath.Join(t.TempDir(), "test.sfs")
	require.NoError(t, os.WriteFile(path, buildImage(t, files...), 0o644))

	img, err := OpenImage(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, len(files), img.NumFiles())
	for i, want := range files {
		f, err := img.Open(i)
		require.NoError(t, err)
		got, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestOpenImageMissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenImage(filepath.Join(t.TempDir(), "nope.sfs"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenImageRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.sfs")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := OpenImage(path)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestImageFileCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.sfs")
	require.NoError(t, os.WriteFile(path, buildImage(t), 0o644))

	img, err := OpenImage(path)
	require.NoError(t, err)
	require.NoError(t, img.Close())
	require.NoError(t, img.Close())
}
