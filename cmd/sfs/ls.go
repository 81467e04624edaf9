package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
)

var lsDigest bool

var lsCmd = &cobra.Command{
	Use:   "ls IMAGE",
	Short: "List the files in an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, cleanup, err := mountImage(args[0])
		if err != nil {
			return err
		}
		defer cleanup() //nolint:errcheck // read-only mount

		if lsDigest {
			raw, err := imageBytes(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("digest: %s\n", digest.FromBytes(raw))
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tSIZE")
		for i := range fsys.NumFiles() {
			f, err := fsys.Open(i)
			if err != nil {
				return fmt.Errorf("opening file %d: %w", i, err)
			}
			fmt.Fprintf(w, "%d\t%d\n", i, f.Size())
		}
		return w.Flush()
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsDigest, "digest", false, "print the image digest")
}
