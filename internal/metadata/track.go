package metadata

import (
	"context"
	"errors"
	"strings"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

var ErrNotFound = errors.New("no metadata found")

// Track is what a provider knows about a song. Zero values mean unknown.
type Track struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Genre   string  `json:"genre"`
	Tempo   float64 `json:"tempo"`
	Key     string  `json:"key"`
	Camelot string  `json:"camelot"`
	Source  string  `json:"source"`
}

// Provider looks a song up by title and artist.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, title, artist string) (Track, error)
}

// Song converts the track into a set entry.
func (t Track) Song() models.Song {
	return models.Song{
		Title:   t.Title,
		Artist:  t.Artist,
		Genre:   t.Genre,
		Tempo:   t.Tempo,
		Key:     t.Key,
		Camelot: t.Camelot,
	}
}

// Complete reports whether every field the sequencer scores on is known.
func (t Track) Complete() bool {
	return t.Tempo > 0 && t.Camelot != "" && t.Genre != ""
}

// Fill copies the fields of o that t is missing.
func (t *Track) Fill(o Track) {
	if t.Title == "" {
		t.Title = o.Title
	}
	if t.Artist == "" {
		t.Artist = o.Artist
	}
	if t.Genre == "" {
		t.Genre = o.Genre
	}
	if t.Tempo <= 0 {
		t.Tempo = o.Tempo
	}
	if t.Camelot == "" {
		t.Camelot = o.Camelot
		if t.Key == "" {
			t.Key = o.Key
		}
	}
}

// normalizeKey makes Camelot canonical ("8a" -> "8A") and derives it from
// Key when only a key name is known.
func (t *Track) normalizeKey() {
	t.Key = strings.TrimSpace(t.Key)
	if c, ok := audio.ParseCamelot(t.Camelot); ok {
		t.Camelot = c.String()
		return
	}
	t.Camelot = ""
	if c, ok := audio.ParseKeyName(t.Key); ok {
		t.Camelot = c.String()
	}
}
