package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/crate"
)

func newDistanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <crate.yaml> <from> <to>",
		Short: "Score the transition between two crate entries",
		Long: `Print the transition cost from one crate entry to another. Entries are
numbered from 1 in file order.

Example:
  sequencer distance friday.yaml 1 4`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crate.Load(args[0])
			if err != nil {
				return err
			}
			songs := c.Models()

			idx := func(s string) (int, error) {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > len(songs) {
					return 0, fmt.Errorf("entry %q out of range 1..%d", s, len(songs))
				}
				return n - 1, nil
			}
			i, err := idx(args[1])
			if err != nil {
				return err
			}
			j, err := idx(args[2])
			if err != nil {
				return err
			}

			e := opts.engine()
			a, b := songs[i], songs[j]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s\n", a.Title, b.Title)
			fmt.Fprintf(out, "  tempo:    %.1f\n", e.Weights().TempoDistance(a, b))
			fmt.Fprintf(out, "  key:      %d\n", audio.KeyDistance(a.Camelot, b.Camelot))
			fmt.Fprintf(out, "  distance: %.1f\n", e.Distance(a, b))
			return nil
		},
	}
}
