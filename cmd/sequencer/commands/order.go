package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/crate"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/ingest"
)

func newOrderCmd(opts *rootOptions) *cobra.Command {
	var output, csvPath string

	cmd := &cobra.Command{
		Use:   "order <crate.yaml>",
		Short: "Reorder a crate for the smoothest transitions",
		Long: `Reorder a crate with a nearest-neighbour tour from its first song,
refined by 2-opt. The first song always stays first.

Examples:
  sequencer order friday.yaml
  sequencer order friday.yaml -o friday.ordered.yaml --csv optimized_playlist.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crate.Load(args[0])
			if err != nil {
				return err
			}

			e := opts.engine()
			songs := c.Models()
			ordered := e.Order(songs)

			out := cmd.OutOrStdout()
			printSongs(out, ordered)
			fmt.Fprintf(out, "\nTotal cost: %.1f -> %.1f\n", e.Cost(songs), e.Cost(ordered))

			if output != "" {
				if err := crate.FromModels(c.Name, ordered).Save(output); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := ingest.WriteCSV(f, ordered); err != nil {
					return fmt.Errorf("write %s: %w", csvPath, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the ordered crate to this YAML file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the ordered set as CSV")
	return cmd
}
