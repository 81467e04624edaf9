package simplefs

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/simplefs/internal/layout"
)

const testCapacity = 4096 * 128

// buildImage finalizes the given payloads into an image buffer.
func buildImage(t *testing.T, files ...[]byte) []byte {
	t.Helper()
	b := NewBuilder(testCapacity)
	for _, data := range files {
		b.AddFile(data)
	}
	image, err := b.Finalize()
	require.NoError(t, err)
	return image
}

// mountBytes mounts an in-memory image.
func mountBytes(t *testing.T, image []byte) *FileSystem {
	t.Helper()
	fsys, err := Mount(bytes.NewReader(image))
	require.NoError(t, err)
	return fsys
}

// faultStorage serves data but fails every read at or past failFrom.
type faultStorage struct {
	data     []byte
	failFrom int64
	err      error
}

func (s *faultStorage) ReadAt(p []byte, off int64) (int, error) {
	if off >= s.failFrom {
		return 0, s.err
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *faultStorage) Size() int64 {
	return int64(len(s.data))
}

func TestMountEmptyImage(t *testing.T) {
	t.Parallel()

	image := buildImage(t)
	require.Len(t, image, layout.HeaderSize)

	hdr, ok := layout.DecodeHeader(image)
	require.True(t, ok)
	assert.Equal(t, layout.Signature, hdr.Signature)
	assert.Equal(t, uint16(0), hdr.NumFiles)

	fsys := mountBytes(t, image)
	assert.Equal(t, 0, fsys.NumFiles())

	_, err := fsys.Open(0)
	assert.ErrorIs(t, err, ErrInvalidFileIndex)
}

func TestMountSingleFileImage(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 21)
	for i := range payload {
		payload[i] = byte(i + 1)
	}

	b := NewBuilder(64)
	b.AddFile(payload)
	image, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, image, layout.HeaderSize+layout.EntrySize+21)

	fsys := mountBytes(t, image)
	require.Equal(t, 1, fsys.NumFiles())

	f, err := fsys.Open(0)
	require.NoError(t, err)
	assert.Equal(t, int64(21), f.Size())

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRoundTripMultipleFiles(t *testing.T) {
	t.Parallel()

	files := [][]byte{
		[]byte("first"),
		{}, // zero-length payloads are valid files
		bytes.Repeat([]byte{0xAB}, 1000),
		[]byte("last"),
	}
	fsys := mountBytes(t, buildImage(t, files...))
	require.Equal(t, len(files), fsys.NumFiles())

	for i, want := range files {
		f, err := fsys.Open(i)
		require.NoError(t, err, "open file %d", i)
		assert.Equal(t, int64(len(want)), f.Size())

		got, err := io.ReadAll(f)
		require.NoError(t, err, "read file %d", i)
		assert.Equal(t, want, got, "file %d content", i)
	}
}

func TestRoundTripRandomPayloads(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for range 20 {
		files := make([][]byte, rng.Intn(16))
		for i := range files {
			files[i] = make([]byte, rng.Intn(2048))
			rng.Read(files[i])
		}

		fsys := mountBytes(t, buildImage(t, files...))
		require.Equal(t, len(files), fsys.NumFiles())
		for i, want := range files {
			f, err := fsys.Open(i)
			require.NoError(t, err)
			got, err := io.ReadAll(f)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}
}

func TestMountRejectsShortBuffer(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, layout.HeaderSize - 1} {
		_, err := Mount(bytes.NewReader(make([]byte, n)))
		assert.ErrorIs(t, err, ErrCorruptedFileSystem, "buffer of %d bytes", n)
	}
}

func TestMountRejectsBadSignature(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []byte("data"))
	image[0] ^= 0xFF

	_, err := Mount(bytes.NewReader(image))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMountRejectsTruncatedDirectory(t *testing.T) {
	t.Parallel()

	// Header claims five files but the buffer ends right after it.
	image := layout.AppendHeader(nil, layout.Header{
		Signature: layout.Signature,
		NumFiles:  5,
	})

	_, err := Mount(bytes.NewReader(image))
	assert.ErrorIs(t, err, ErrCorruptedFileSystem)
}

func TestOpenRejectsOutOfRangeIndex(t *testing.T) {
	t.Parallel()

	fsys := mountBytes(t, buildImage(t, []byte("a"), []byte("b")))

	for _, index := range []int{2, 3, 1000, -1} {
		_, err := fsys.Open(index)
		assert.ErrorIs(t, err, ErrInvalidFileIndex, "index %d", index)
	}
}

func TestOpenRejectsTamperedEntry(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []byte("data"))

	// Stretch the entry's length field past the end of storage.
	tampered := bytes.Clone(image)
	for i := range 4 {
		tampered[layout.HeaderSize+4+i] = 0xFF
	}

	fsys := mountBytes(t, tampered)
	_, err := fsys.Open(0)
	assert.ErrorIs(t, err, ErrCorruptedFileSystem)
}

func TestStorageErrorPropagation(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("flash: transient read failure")
	image := buildImage(t, []byte("payload"))

	t.Run("mount", func(t *testing.T) {
		t.Parallel()
		_, err := Mount(&faultStorage{data: image, failFrom: 0, err: backendErr})
		assert.ErrorIs(t, err, backendErr)
	})

	t.Run("open", func(t *testing.T) {
		t.Parallel()
		// Header readable, directory reads fail.
		fsys, err := Mount(&faultStorage{data: image, failFrom: layout.HeaderSize, err: backendErr})
		require.NoError(t, err)
		_, err = fsys.Open(0)
		assert.ErrorIs(t, err, backendErr)
	})

	t.Run("read", func(t *testing.T) {
		t.Parallel()
		// Header and directory readable, data reads fail.
		dataStart := int64(layout.HeaderSize + layout.EntrySize)
		fsys, err := Mount(&faultStorage{data: image, failFrom: dataStart, err: backendErr})
		require.NoError(t, err)
		f, err := fsys.Open(0)
		require.NoError(t, err)
		_, err = f.Read(make([]byte, 4))
		assert.ErrorIs(t, err, backendErr)
	})
}

func TestReadChunked(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 21)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	fsys := mountBytes(t, buildImage(t, payload))

	f, err := fsys.Open(0)
	require.NoError(t, err)

	var got []byte
	buf := make([]byte, 5)
	for {
		n, err := f.Read(buf)
		if errors.Is(err, io.EOF) {
			// End of file is io.EOF, never a filesystem or storage error.
			assert.Zero(t, n)
			break
		}
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(len(got)), f.Size())

	// Reads past the end keep returning EOF.
	n, err := f.Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadEmptyFile(t *testing.T) {
	t.Parallel()

	fsys := mountBytes(t, buildImage(t, []byte{}))
	f, err := fsys.Open(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.Size())

	n, err := f.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadZeroLengthBuffer(t *testing.T) {
	t.Parallel()

	fsys := mountBytes(t, buildImage(t, []byte("data")))
	f, err := fsys.Open(0)
	require.NoError(t, err)

	// A zero-length buffer mid-file reads nothing and is not EOF.
	n, err := f.Read(nil)
	assert.Zero(t, n)
	assert.NoError(t, err)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestHandlesAreIndependent(t *testing.T) {
	t.Parallel()

	payload := []byte("independent cursors")
	fsys := mountBytes(t, buildImage(t, payload))

	f1, err := fsys.Open(0)
	require.NoError(t, err)
	f2, err := fsys.Open(0)
	require.NoError(t, err)

	// Advance f1 well past f2.
	buf := make([]byte, 11)
	_, err = io.ReadFull(f1, buf)
	require.NoError(t, err)

	got, err := io.ReadAll(f2)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	rest, err := io.ReadAll(f1)
	require.NoError(t, err)
	assert.Equal(t, payload[11:], rest)
}
