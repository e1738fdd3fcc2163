package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/crate"
)

func newInsertCmd(opts *rootOptions) *cobra.Command {
	var (
		entry  crate.Entry
		output string
	)

	cmd := &cobra.Command{
		Use:   "insert <crate.yaml>",
		Short: "Find the cheapest slot for one new song",
		Long: `Place a new song into an already ordered crate at the position that adds
the least transition cost. The rest of the crate keeps its order.

Example:
  sequencer insert friday.yaml --title "Opus" --artist "Eric Prydz" --tempo 126 --camelot 8A -o friday.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crate.Load(args[0])
			if err != nil {
				return err
			}

			if err := entry.Normalize(); err != nil {
				return err
			}
			song := (&crate.Crate{Songs: []crate.Entry{entry}}).Models()[0]

			e := opts.engine()
			ordered, pos := e.Insert(c.Models(), song)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Insert %q at position %d\n\n", song.Title, pos+1)
			printSongs(out, ordered)
			fmt.Fprintf(out, "\nTotal cost: %.1f\n", e.Cost(ordered))

			if output != "" {
				return crate.FromModels(c.Name, ordered).Save(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entry.Title, "title", "", "song title (required)")
	cmd.Flags().StringVar(&entry.Artist, "artist", "", "song artist (required)")
	cmd.Flags().Float64Var(&entry.Tempo, "tempo", 0, "BPM, 0 if unknown")
	cmd.Flags().StringVar(&entry.Camelot, "camelot", "", "Camelot code such as 8A")
	cmd.Flags().StringVar(&entry.Key, "key", "", "key name such as \"A minor\", used when --camelot is empty")
	cmd.Flags().StringVar(&entry.Genre, "genre", "", "genre")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resulting crate to this YAML file")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("artist")
	return cmd
}
