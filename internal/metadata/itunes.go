package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const iTunesURL = "https://itunes.apple.com"

// ITunes fills in genre (and spelling of title and artist) from the iTunes
// Search API. It knows nothing about tempo or key.
type ITunes struct {
	baseURL string
	client  *http.Client
}

func NewITunes(baseURL string) *ITunes {
	if baseURL == "" {
		baseURL = iTunesURL
	}
	return &ITunes{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (i *ITunes) Name() string { return "itunes" }

func (i *ITunes) Lookup(ctx context.Context, title, artist string) (Track, error) {
	q := url.Values{}
	q.Set("term", strings.TrimSpace(artist+" "+title))
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Track{}, fmt.Errorf("itunes: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return Track{}, fmt.Errorf("itunes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Track{}, fmt.Errorf("itunes: status %d", resp.StatusCode)
	}

	var result struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			ArtistName       string `json:"artistName"`
			TrackName        string `json:"trackName"`
			PrimaryGenreName string `json:"primaryGenreName"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Track{}, fmt.Errorf("itunes: %w", err)
	}
	if result.ResultCount == 0 || len(result.Results) == 0 {
		return Track{}, ErrNotFound
	}

	item := result.Results[0]
	return Track{
		Title:  item.TrackName,
		Artist: item.ArtistName,
		Genre:  item.PrimaryGenreName,
		Source: i.Name(),
	}, nil
}
