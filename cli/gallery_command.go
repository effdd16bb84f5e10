package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soocke/mystic-booth/domain/gallery"
)

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var prune bool

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "List exported strips",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := gallery.Open(ctx.config.GalleryPath)
			if err != nil {
				return err
			}
			defer store.Close()
			bg := context.Background()
			out := cmd.OutOrStdout()

			if prune {
				n, err := store.Prune(bg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d missing strip(s)\n", n)
			}
			entries, err := store.Recent(bg, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No strips yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					humanize.Time(e.CreatedAt),
					filepath.Base(e.Path),
					strconv.Itoa(e.Shots),
					e.Caption,
					e.Background,
					humanize.Bytes(uint64(e.Bytes)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Created", "File", "Shots", "Caption", "Background", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of strips to show")
	cmd.Flags().BoolVar(&prune, "prune", false, "Forget strips whose files were deleted")
	return cmd
}
