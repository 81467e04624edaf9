package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/simplefs"
)

// mountImage mounts the image at path. Plain images are mounted
// file-backed; *.zst images are decompressed into memory first. The
// returned cleanup must be called when done with the filesystem.
func mountImage(path string) (*simplefs.FileSystem, func() error, error) {
	if strings.HasSuffix(path, ".zst") {
		raw, err := imageBytes(path)
		if err != nil {
			return nil, nil, err
		}
		fsys, err := simplefs.Mount(bytes.NewReader(raw))
		if err != nil {
			return nil, nil, err
		}
		return fsys, func() error { return nil }, nil
	}

	img, err := simplefs.OpenImage(path)
	if err != nil {
		return nil, nil, err
	}
	return img.FileSystem, img.Close, nil
}

// imageBytes reads the raw image bytes at path, decompressing *.zst
// transport encoding.
func imageBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return raw, nil
}
