package metadata

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
)

// Resolver asks each provider in turn and merges what they know. Earlier
// providers win on conflicting fields.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// FromConfig wires every provider that has credentials, tempo sources first.
func FromConfig(cfg *config.Config) *Resolver {
	var providers []Provider
	if cfg.Services.GetSongBPMKey != "" {
		providers = append(providers, NewGetSongBPM(cfg.Services.GetSongBPMKey, ""))
	}
	if cfg.Services.SpotifyClientID != "" && cfg.Services.SpotifyClientSecret != "" {
		providers = append(providers, NewSpotify(cfg.Services.SpotifyClientID, cfg.Services.SpotifyClientSecret, "", ""))
	}
	providers = append(providers, NewITunes(""))
	return NewResolver(providers...)
}

func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Lookup returns ErrNotFound when no provider knows the tempo, key or genre.
func (r *Resolver) Lookup(ctx context.Context, title, artist string) (Track, error) {
	var merged Track
	var sources []string

	for _, p := range r.providers {
		if ctx.Err() != nil {
			return Track{}, ctx.Err()
		}
		t, err := p.Lookup(ctx, title, artist)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Printf("⚠️ [%s] lookup failed for %q by %q: %v", p.Name(), title, artist, err)
			}
			continue
		}
		merged.Fill(t)
		sources = append(sources, p.Name())
		if merged.Complete() {
			break
		}
	}

	if merged.Tempo <= 0 && merged.Camelot == "" && merged.Genre == "" {
		return Track{}, ErrNotFound
	}
	if merged.Title == "" {
		merged.Title = title
	}
	if merged.Artist == "" {
		merged.Artist = artist
	}
	merged.Source = strings.Join(sources, ",")
	return merged, nil
}
