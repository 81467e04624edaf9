package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat IMAGE INDEX",
	Short: "Write one file's contents to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("parsing index %q: %w", args[1], err)
		}

		fsys, cleanup, err := mountImage(args[0])
		if err != nil {
			return err
		}
		defer cleanup() //nolint:errcheck // read-only mount

		f, err := fsys.Open(index)
		if err != nil {
			return fmt.Errorf("opening file %d: %w", index, err)
		}
		if _, err := io.Copy(os.Stdout, f); err != nil {
			return fmt.Errorf("reading file %d: %w", index, err)
		}
		return nil
	},
}
