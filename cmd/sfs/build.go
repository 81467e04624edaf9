package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/meigma/simplefs"
	"github.com/meigma/simplefs/internal/progress"
)

var (
	buildOutput   string
	buildCapacity int64
	buildZstd     bool
)

var buildCmd = &cobra.Command{
	Use:   "build -o IMAGE FILE...",
	Short: "Pack files into a simplefs image",
	Long: `Build reads each named file and packs it into a single image.
Argument order becomes index order: the first file is readable at
index 0, the second at index 1, and so on. Zero input files produce a
valid empty image.

With --zstd the finished image is written zstd-compressed. This is a
transport encoding only; the image bytes inside are unchanged and are
decompressed transparently by the other commands.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity := cfg.Capacity
		if cmd.Flags().Changed("capacity") {
			capacity = buildCapacity
		}

		builder := simplefs.NewBuilder(capacity,
			simplefs.BuildWithLogger(slog.Default()),
		)

		bar := progress.New(len(args), cfg.Progress)
		for i, name := range args {
			data, err := os.ReadFile(name) //nolint:gosec // User-provided path is intentional
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			slog.Debug("adding file", "index", i, "path", name, "size", len(data))
			builder.AddFile(data)
			bar.Update(i+1, filepath.Base(name))
		}
		bar.Finish()

		image, err := builder.Finalize()
		if err != nil {
			return fmt.Errorf("finalizing image: %w", err)
		}

		out := image
		if buildZstd {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
			if err != nil {
				return fmt.Errorf("creating zstd encoder: %w", err)
			}
			out = enc.EncodeAll(image, nil)
			enc.Close()
		}

		if err := writeFileAtomic(buildOutput, out); err != nil {
			return fmt.Errorf("writing %s: %w", buildOutput, err)
		}

		slog.Info("image written",
			"path", buildOutput,
			"files", len(args),
			"image_size", len(image),
			"written_size", len(out),
			"digest", digest.FromBytes(image))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "image file to write")
	buildCmd.Flags().Int64VarP(&buildCapacity, "capacity", "c", 0, "max image size in bytes (default from config)")
	buildCmd.Flags().BoolVar(&buildZstd, "zstd", false, "zstd-compress the written image")
	buildCmd.MarkFlagRequired("output") //nolint:errcheck // flag is registered above
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".sfs-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
