package simplefs

import (
	"fmt"
	"io"
)

// File is a sequential read cursor over one file's data region.
//
// A File borrows the mount's storage backend and must not outlive it.
// The cursor only moves forward; there is no seeking or rewinding.
// A File is not safe for concurrent use, but separate handles over
// the same filesystem are independent.
type File struct {
	storage Storage
	offset  int64
	size    int64
	pos     int64
}

var _ io.Reader = (*File)(nil)

// Size returns the file's total size in bytes, fixed at open time.
func (f *File) Size() int64 {
	return f.size
}

// Read implements io.Reader. Each call issues at most one backend
// read, for min(len(p), bytes remaining) bytes, and advances the
// cursor by the amount read. Once the cursor reaches the end of the
// file, Read returns (0, io.EOF).
func (f *File) Read(p []byte) (int, error) {
	remaining := f.size - f.pos
	if remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if len(p) == 0 {
		return 0, nil
	}

	if err := readFull(f.storage, f.offset+f.pos, p); err != nil {
		return 0, fmt.Errorf("simplefs: read file data: %w", err)
	}
	f.pos += int64(len(p))
	return len(p), nil
}
