package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

type rootOptions struct {
	harmonic     float64
	missingTempo float64
}

func (o *rootOptions) engine() *dj.Engine {
	return dj.NewEngine(audio.Weights{Harmonic: o.harmonic, MissingTempo: o.missingTempo})
}

// NewRootCommand builds the sequencer command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "sequencer",
		Short: "Order DJ sets by tempo and harmonic key",
		Long: `sequencer orders a crate of songs so each transition is as smooth as
possible: close tempos (half and double time count) and neighbouring keys on
the Camelot wheel.

Crates are YAML files:

  name: friday
  songs:
    - title: Strobe
      artist: deadmau5
      tempo: 128
      camelot: 8A`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.harmonic < 0 || opts.missingTempo < 0 {
				return fmt.Errorf("weights must not be negative")
			}
			return nil
		},
	}

	root.PersistentFlags().Float64Var(&opts.harmonic, "harmonic-weight", audio.DefaultWeights.Harmonic, "cost of one Camelot wheel step, in BPM")
	root.PersistentFlags().Float64Var(&opts.missingTempo, "missing-tempo", audio.DefaultWeights.MissingTempo, "tempo cost when either song has no BPM")

	root.AddCommand(
		newOrderCmd(opts),
		newInsertCmd(opts),
		newDistanceCmd(opts),
		newLookupCmd(),
		newStampCmd(),
		newTokenCmd(),
	)
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func printSongs(w io.Writer, songs []models.Song) {
	for i, s := range songs {
		tempo := "  ?"
		if s.HasTempo() {
			tempo = fmt.Sprintf("%3.0f", s.Tempo)
		}
		camelot := s.Camelot
		if camelot == "" {
			camelot = "?"
		}
		fmt.Fprintf(w, "%3d. %s BPM %-3s  %s - %s\n", i+1, tempo, camelot, s.Artist, s.Title)
	}
}
