package simplefs

import "errors"

// Sentinel errors returned by Mount, Open, and File reads. Backend
// storage failures are not translated; they are wrapped and reachable
// via errors.Is/errors.As.
var (
	// ErrInvalidSignature is returned when the image header does not
	// carry the simplefs signature.
	ErrInvalidSignature = errors.New("simplefs: invalid signature")

	// ErrCorruptedFileSystem is returned when structural data is
	// malformed or truncated: the backend is smaller than a header,
	// the declared directory does not fit, or a directory entry
	// points past the backend's capacity.
	ErrCorruptedFileSystem = errors.New("simplefs: corrupted filesystem")

	// ErrInvalidFileIndex is returned by Open for an out-of-range
	// index.
	ErrInvalidFileIndex = errors.New("simplefs: invalid file index")
)

// Sentinel errors returned by Builder.Finalize. Each is fatal to the
// whole build; no partial image is ever returned.
var (
	// ErrTooManyFiles is returned when the file count does not fit
	// the 16-bit count field.
	ErrTooManyFiles = errors.New("simplefs: too many files")

	// ErrFileTooBig is returned when a payload's length does not fit
	// the 32-bit length field.
	ErrFileTooBig = errors.New("simplefs: file too big")

	// ErrOutOfSpace is returned when the image exceeds the builder's
	// capacity, or a data offset does not fit the 32-bit offset field.
	ErrOutOfSpace = errors.New("simplefs: capacity exceeded")
)
