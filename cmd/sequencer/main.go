// Package main is the offline sequencer CLI.
//
// Usage:
//
//	sequencer [flags] <command> [args]
//
// Commands:
//
//	order     - Reorder a YAML crate for the smoothest transitions
//	insert    - Find the cheapest slot for one new song
//	distance  - Score the transition between two crate entries
//	lookup    - Ask the metadata services about a song
//	stamp     - Write tempo and key tags into an MP3 or FLAC file
//	token     - Mint an API token
package main

import (
	"fmt"
	"os"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/cmd/sequencer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
