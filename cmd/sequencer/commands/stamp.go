package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
)

func newStampCmd() *cobra.Command {
	var (
		set     metadata.Track
		lookup  bool
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "stamp <file.mp3|file.flac>",
		Short: "Write tempo and key tags into an audio file",
		Long: `Read the tags of an MP3 or FLAC file, fill in what is missing and write
BPM and the Camelot key back (TBPM/TKEY frames, or BPM/KEY Vorbis comments).

Missing values come from, in order: the flags, --analyze (ffmpeg + essentia)
and --lookup (the metadata services).

Example:
  sequencer stamp track.mp3 --tempo 128 --camelot 8A
  sequencer stamp track.flac --lookup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			t, err := metadata.ReadTags(path)
			if err != nil {
				return err
			}
			if set.Camelot != "" {
				c, ok := audio.ParseCamelot(set.Camelot)
				if !ok {
					return fmt.Errorf("invalid camelot code %q", set.Camelot)
				}
				set.Camelot = c.String()
			}
			// Flags win over existing tags.
			set.Fill(t)
			t = set

			if analyze && (t.Tempo <= 0 || t.Camelot == "") {
				a, err := audio.AnalyzeDeep(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("analyze: %w", err)
				}
				t.Fill(metadata.Track{Tempo: a.BPM, Key: a.DisplayKey(), Camelot: a.Camelot})
			}

			if lookup && !t.Complete() {
				ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
				defer cancel()
				found, err := metadata.FromConfig(config.Load()).Lookup(ctx, t.Title, t.Artist)
				if err != nil && !errors.Is(err, metadata.ErrNotFound) {
					return err
				}
				t.Fill(found)
			}

			if t.Tempo <= 0 && t.Camelot == "" {
				return fmt.Errorf("nothing to write: no tempo or key known for %s", path)
			}
			if err := metadata.Stamp(path, t); err != nil {
				return err
			}
			printTrack(cmd, t)
			return nil
		},
	}

	cmd.Flags().Float64Var(&set.Tempo, "tempo", 0, "BPM to write")
	cmd.Flags().StringVar(&set.Camelot, "camelot", "", "Camelot code to write")
	cmd.Flags().StringVar(&set.Genre, "genre", "", "genre to write")
	cmd.Flags().BoolVar(&lookup, "lookup", false, "ask the metadata services for missing values")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "run essentia when tempo or key is missing")
	return cmd
}
