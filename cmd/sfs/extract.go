package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/simplefs/internal/progress"
)

var extractCmd = &cobra.Command{
	Use:   "extract IMAGE DIR",
	Short: "Extract every file in an image into a directory",
	Long: `Extract writes each file in the image to DIR, named by its index
(00000.bin, 00001.bin, ...). Existing files are overwritten.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cleanup, err := mountImage(args[0])
		if err != nil {
			return err
		}
		defer cleanup() //nolint:errcheck // read-only mount

		dir := args[1]
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}

		bar := progress.New(fsys.NumFiles(), cfg.Progress)
		var total int64
		for i := range fsys.NumFiles() {
			f, err := fsys.Open(i)
			if err != nil {
				return fmt.Errorf("opening file %d: %w", i, err)
			}

			name := filepath.Join(dir, fmt.Sprintf("%05d.bin", i))
			n, err := writeFile(name, f)
			if err != nil {
				return fmt.Errorf("extracting file %d: %w", i, err)
			}
			total += n
			bar.Update(i+1, filepath.Base(name))
		}
		bar.Finish()

		slog.Info("image extracted",
			"path", args[0],
			"dir", dir,
			"files", fsys.NumFiles(),
			"bytes", total)
		return nil
	},
}

func writeFile(name string, r io.Reader) (int64, error) {
	out, err := os.Create(name) //nolint:gosec // Destination under user-chosen dir
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
