// Package layout implements the on-disk encoding of the simplefs
// image format.
//
// An image starts with a fixed 10-byte header, followed by NumFiles
// packed 8-byte directory entries, followed by the concatenated file
// payloads. All integers are big-endian. Records are packed with no
// padding, so the documented sizes are exact.
package layout

import "encoding/binary"

// Signature identifies a simplefs image. The big-endian bytes spell
// "SimpleFS".
const Signature uint64 = 0x53696d706c654653

// Field widths in bytes. Record sizes are sums of these, so the
// encoded sizes below hold by construction.
const (
	signatureWidth = 8
	numFilesWidth  = 2
	offsetWidth    = 4
	lengthWidth    = 4
)

const (
	// HeaderSize is the encoded size of Header in bytes.
	HeaderSize = signatureWidth + numFilesWidth

	// EntrySize is the encoded size of Entry in bytes.
	EntrySize = offsetWidth + lengthWidth
)

// Header is the image header, stored exactly once at offset 0.
type Header struct {
	Signature uint64
	NumFiles  uint16
}

// Entry is one directory entry. Entry i describes the file readable
// at index i: Offset is the absolute byte offset of its data within
// the image, Length its byte length.
type Entry struct {
	Offset uint32
	Length uint32
}

// DecodeHeader decodes a Header from the first HeaderSize bytes of b.
// ok is false when b holds fewer bytes than a header. Surplus bytes
// are ignored.
func DecodeHeader(b []byte) (h Header, ok bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	h.Signature = binary.BigEndian.Uint64(b)
	h.NumFiles = binary.BigEndian.Uint16(b[signatureWidth:])
	return h, true
}

// DecodeEntry decodes an Entry from the first EntrySize bytes of b.
// ok is false when b holds fewer bytes than an entry. Surplus bytes
// are ignored.
func DecodeEntry(b []byte) (e Entry, ok bool) {
	if len(b) < EntrySize {
		return Entry{}, false
	}
	e.Offset = binary.BigEndian.Uint32(b)
	e.Length = binary.BigEndian.Uint32(b[offsetWidth:])
	return e, true
}

// AppendHeader appends the fixed-width encoding of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	dst = binary.BigEndian.AppendUint64(dst, h.Signature)
	return binary.BigEndian.AppendUint16(dst, h.NumFiles)
}

// AppendEntry appends the fixed-width encoding of e to dst.
func AppendEntry(dst []byte, e Entry) []byte {
	dst = binary.BigEndian.AppendUint32(dst, e.Offset)
	return binary.BigEndian.AppendUint32(dst, e.Length)
}

// EntryOffset returns the byte offset of directory entry index within
// an image.
func EntryOffset(index int) int64 {
	return HeaderSize + int64(index)*EntrySize
}
