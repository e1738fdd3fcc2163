package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
)

func newLookupCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "lookup <title> <artist>",
		Short: "Ask the metadata services about a song",
		Long: `Look a song up on GetSongBPM, Spotify and iTunes (whichever have
credentials in config.yaml or DJSET_SERVICES_* variables) and print the merged
tempo, key and genre.

Example:
  sequencer lookup "Strobe" "deadmau5"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := metadata.FromConfig(config.Load())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			t, err := resolver.Lookup(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("lookup %q by %q: %w", args[0], args[1], err)
			}
			printTrack(cmd, t)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "give up after this long")
	return cmd
}

func printTrack(cmd *cobra.Command, t metadata.Track) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:   %s\n", t.Title)
	fmt.Fprintf(out, "Artist:  %s\n", t.Artist)
	fmt.Fprintf(out, "Tempo:   %g\n", t.Tempo)
	fmt.Fprintf(out, "Key:     %s\n", t.Key)
	fmt.Fprintf(out, "Camelot: %s\n", t.Camelot)
	fmt.Fprintf(out, "Genre:   %s\n", t.Genre)
	if t.Source != "" {
		fmt.Fprintf(out, "Source:  %s\n", t.Source)
	}
}
