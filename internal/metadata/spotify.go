package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com"
)

// Spotify resolves tempo and key through the Web API audio features, using
// an app token from the client-credentials flow.
type Spotify struct {
	baseURL string
	client  *http.Client
}

func NewSpotify(clientID, clientSecret, tokenURL, baseURL string) *Spotify {
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	if baseURL == "" {
		baseURL = spotifyAPIURL
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	client := conf.Client(context.Background())
	client.Timeout = 10 * time.Second

	return &Spotify{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *Spotify) Name() string { return "spotify" }

func (s *Spotify) Lookup(ctx context.Context, title, artist string) (Track, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("track:%s artist:%s", title, artist))
	q.Set("type", "track")
	q.Set("limit", "1")

	var search struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := s.get(ctx, "/v1/search?"+q.Encode(), &search); err != nil {
		return Track{}, err
	}
	if len(search.Tracks.Items) == 0 {
		return Track{}, ErrNotFound
	}

	item := search.Tracks.Items[0]
	t := Track{Title: item.Name, Artist: artist, Source: s.Name()}
	if len(item.Artists) > 0 {
		t.Artist = item.Artists[0].Name
	}

	var features struct {
		Tempo float64 `json:"tempo"`
		Key   int     `json:"key"`
		Mode  int     `json:"mode"`
	}
	if err := s.get(ctx, "/v1/audio-features/"+url.PathEscape(item.ID), &features); err != nil {
		return Track{}, err
	}

	if features.Tempo > 0 {
		t.Tempo = float64(int(features.Tempo))
	}
	// key is -1 when Spotify could not detect one
	if display, camelot, ok := audio.FromPitchClass(features.Key, features.Mode); ok {
		t.Key = display
		t.Camelot = camelot
	}
	return t, nil
}

func (s *Spotify) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	return nil
}
