// Package simplefs implements a minimal read-only flat image format:
// a fixed set of opaque files packed into one contiguous byte blob.
//
// An image is a 10-byte header, a directory of packed 8-byte entries,
// and the concatenated file payloads, in that order with no gaps.
// Files have no names and no hierarchy; they are addressed by the
// index they were added at during build.
//
// Images are built once with [Builder] and consumed by any number of
// independent mounts over any [Storage] backend. Mount validates the
// image structure up front; Open and Read validate lazily against the
// backend's capacity, so a tampered or truncated image fails with a
// typed error instead of an out-of-bounds read.
//
// # Quick start
//
// Build an image and read it back:
//
//	b := simplefs.NewBuilder(1 << 20)
//	b.AddFile([]byte("first"))
//	b.AddFile([]byte("second"))
//	image, err := b.Finalize()
//	if err != nil {
//	    return err
//	}
//
//	fsys, err := simplefs.Mount(bytes.NewReader(image))
//	if err != nil {
//	    return err
//	}
//	f, err := fsys.Open(1)
//	if err != nil {
//	    return err
//	}
//	content, err := io.ReadAll(f) // "second"
//
// Mount an image file from disk with [OpenImage].
//
// The mount, open, and read paths perform no heap allocation; all
// scratch buffers are fixed-size and stack-allocated. The Builder
// runs in an unconstrained host environment and allocates freely.
package simplefs
