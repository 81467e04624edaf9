package simplefs

import (
	"fmt"
	"io"

	"github.com/meigma/simplefs/internal/layout"
)

// Storage provides random access to image bytes.
//
// Implementations exist for local files (see [OpenImage]) and
// in-memory images (*bytes.Reader satisfies Storage). The filesystem
// never reads outside [0, Size), so backends only need to report
// their own medium-specific failures (I/O errors and the like).
type Storage interface {
	io.ReaderAt
	Size() int64
}

// FileSystem serves read-only file access by index over a mounted
// image.
//
// A FileSystem holds only the backend and the file count read at
// mount time; directory entries are re-read from the backend on each
// Open rather than cached, keeping the mount allocation-free at the
// cost of one extra 8-byte read per Open. Wrap the backend with the
// cache package when that read is expensive.
type FileSystem struct {
	storage  Storage
	numFiles uint16
}

// Mount validates the image on storage and returns a filesystem for
// it.
//
// Mount reads exactly one header at offset 0. It fails with
// ErrCorruptedFileSystem when the backend is smaller than a header or
// the declared directory does not fully fit, and with
// ErrInvalidSignature when the signature does not match. Mount either
// returns a fully validated filesystem or an error, never partial
// state.
func Mount(storage Storage) (*FileSystem, error) {
	if storage.Size() < layout.HeaderSize {
		return nil, ErrCorruptedFileSystem
	}

	var buf [layout.HeaderSize]byte
	if err := readFull(storage, 0, buf[:]); err != nil {
		return nil, fmt.Errorf("simplefs: read header: %w", err)
	}
	hdr, ok := layout.DecodeHeader(buf[:])
	if !ok {
		return nil, ErrCorruptedFileSystem
	}

	if hdr.Signature != layout.Signature {
		return nil, ErrInvalidSignature
	}
	if storage.Size() < layout.EntryOffset(int(hdr.NumFiles)) {
		return nil, ErrCorruptedFileSystem
	}

	return &FileSystem{
		storage:  storage,
		numFiles: hdr.NumFiles,
	}, nil
}

// NumFiles returns the number of files in the image.
func (fs *FileSystem) NumFiles() int {
	return int(fs.numFiles)
}

// Open returns a read handle for the file at index.
//
// Open fails with ErrInvalidFileIndex when index is out of range, and
// with ErrCorruptedFileSystem when the file's directory entry points
// past the backend's capacity (a tampered or truncated image; the
// mount check covered the directory region, not the data region).
//
// Handles are independent cursors; any number may be open at once.
func (fs *FileSystem) Open(index int) (*File, error) {
	if index < 0 || index >= int(fs.numFiles) {
		return nil, ErrInvalidFileIndex
	}

	var buf [layout.EntrySize]byte
	if err := readFull(fs.storage, layout.EntryOffset(index), buf[:]); err != nil {
		return nil, fmt.Errorf("simplefs: read directory entry %d: %w", index, err)
	}
	entry, ok := layout.DecodeEntry(buf[:])
	if !ok {
		return nil, ErrCorruptedFileSystem
	}

	if int64(entry.Offset)+int64(entry.Length) > fs.storage.Size() {
		return nil, ErrCorruptedFileSystem
	}

	return &File{
		storage: fs.storage,
		offset:  int64(entry.Offset),
		size:    int64(entry.Length),
	}, nil
}

// readFull reads len(p) bytes at off, treating a short read as an
// error. io.ReaderAt permits (len(p), io.EOF) when the read ends
// exactly at the backend's end; that is a success here.
func readFull(s Storage, off int64, p []byte) error {
	n, err := s.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}
