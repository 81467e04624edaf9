package simplefs

import (
	"fmt"
	"os"
)

// fileStorage wraps *os.File to implement Storage.
// os.File has ReadAt but not Size, so the size is cached at construction.
type fileStorage struct {
	file *os.File
	size int64
}

var _ Storage = (*fileStorage)(nil)

// ReadAt implements io.ReaderAt.
func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the total size of the image file.
func (s *fileStorage) Size() int64 {
	return s.size
}

// ImageFile wraps a FileSystem with its underlying image file handle.
// Close must be called to release the file.
type ImageFile struct {
	*FileSystem
	file *os.File
}

// Close closes the underlying image file. Open handles must not be
// used afterwards.
func (img *ImageFile) Close() error {
	if img.file == nil {
		return nil
	}
	err := img.file.Close()
	img.file = nil
	return err
}

// OpenImage opens and mounts an image file from disk.
//
// The file is opened for random access; file contents are only read
// on demand. The returned ImageFile must be closed to release the
// file handle.
func OpenImage(path string) (*ImageFile, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("simplefs: open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("simplefs: stat image: %w", err)
	}

	fsys, err := Mount(&fileStorage{file: f, size: info.Size()})
	if err != nil {
		f.Close()
		return nil, err
	}

	return &ImageFile{
		FileSystem: fsys,
		file:       f,
	}, nil
}
