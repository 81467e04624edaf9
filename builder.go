package simplefs

import (
	"log/slog"
	"math"

	"github.com/meigma/simplefs/internal/layout"
)

// Builder accumulates file payloads and serializes them into a single
// image buffer.
//
// Insertion order becomes index order: the file added by the i-th
// AddFile call is readable at index i after mounting. Unlike the
// mount path, the Builder runs host-side and allocates freely.
type Builder struct {
	capacity int64
	files    [][]byte
	logger   *slog.Logger
	progress func(done, total int)
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// BuildWithLogger sets the logger used during Finalize. Without it,
// the Builder logs nothing.
func BuildWithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// BuildWithProgress sets a callback invoked after each file is laid
// out during Finalize.
func BuildWithProgress(fn func(done, total int)) BuilderOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder creates a Builder for an image of at most capacity
// bytes. Nothing is allocated until Finalize.
func NewBuilder(capacity int64, opts ...BuilderOption) *Builder {
	b := &Builder{capacity: capacity}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// log returns the logger, falling back to a discard logger if nil.
func (b *Builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// reportProgress invokes the progress callback if one is configured.
func (b *Builder) reportProgress(done, total int) {
	if b.progress == nil {
		return
	}
	b.progress(done, total)
}

// AddFile appends one payload. The data is retained until Finalize;
// callers must not modify it. No validation happens here: oversized
// payloads and excessive counts are only detected at Finalize.
func (b *Builder) AddFile(data []byte) {
	b.files = append(b.files, data)
}

// Finalize lays out and serializes the complete image: header, then
// all directory entries, then all payloads, contiguously with no
// gaps.
//
// Data offsets are a running sum starting right after the directory,
// so storage order equals directory order equals index order. Each
// file's offset is checked against the 32-bit offset field and the
// configured capacity as it is computed. Any failure abandons the
// build; no partial image is returned.
func (b *Builder) Finalize() ([]byte, error) {
	if len(b.files) > math.MaxUint16 {
		return nil, ErrTooManyFiles
	}
	numFiles := uint16(len(b.files))

	var totalData int64
	for _, data := range b.files {
		totalData += int64(len(data))
	}
	dirSize := int64(len(b.files)) * layout.EntrySize

	image := make([]byte, 0, layout.HeaderSize+dirSize+totalData)
	image = layout.AppendHeader(image, layout.Header{
		Signature: layout.Signature,
		NumFiles:  numFiles,
	})

	offset := layout.HeaderSize + dirSize
	for i, data := range b.files {
		if offset > math.MaxUint32 {
			return nil, ErrOutOfSpace
		}
		if int64(len(data)) > math.MaxUint32 {
			return nil, ErrFileTooBig
		}
		entry := layout.Entry{
			Offset: uint32(offset),
			Length: uint32(len(data)),
		}

		offset += int64(len(data))
		if offset > b.capacity {
			return nil, ErrOutOfSpace
		}

		image = layout.AppendEntry(image, entry)
		b.reportProgress(i+1, len(b.files))
	}

	for _, data := range b.files {
		image = append(image, data...)
	}

	b.log().Debug("image finalized",
		"num_files", numFiles,
		"image_size", len(image),
		"capacity", b.capacity)
	return image, nil
}
