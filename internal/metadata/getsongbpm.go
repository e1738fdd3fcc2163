package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
)

const getSongBPMURL = "https://api.getsongbpm.com"

// GetSongBPM queries api.getsongbpm.com: a search for "artist title" followed
// by a detail lookup of the first hit.
type GetSongBPM struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGetSongBPM(apiKey, baseURL string) *GetSongBPM {
	if baseURL == "" {
		baseURL = getSongBPMURL
	}
	return &GetSongBPM{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GetSongBPM) Name() string { return "getsongbpm" }

// flexNumber accepts both 128 and "128".
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

func (g *GetSongBPM) Lookup(ctx context.Context, title, artist string) (Track, error) {
	q := url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("type", "song")
	q.Set("lookup", strings.TrimSpace(artist+" "+title))

	var search struct {
		Search json.RawMessage `json:"search"`
	}
	if err := g.get(ctx, "/search/", q, &search); err != nil {
		return Track{}, err
	}

	// A miss comes back as {"search": {"error": "no result"}}.
	var hits []struct {
		ID string `json:"id"`
	}
	raw := bytes.TrimSpace(search.Search)
	if len(raw) == 0 || raw[0] != '[' {
		return Track{}, ErrNotFound
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return Track{}, fmt.Errorf("getsongbpm search: %w", err)
	}
	if len(hits) == 0 {
		return Track{}, ErrNotFound
	}

	q = url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("id", hits[0].ID)

	var detail struct {
		Song *struct {
			Title   string     `json:"title"`
			Tempo   flexNumber `json:"tempo"`
			KeyOf   string     `json:"key_of"`
			OpenKey string     `json:"open_key"`
			Artist  struct {
				Name   string   `json:"name"`
				Genres []string `json:"genres"`
			} `json:"artist"`
		} `json:"song"`
	}
	if err := g.get(ctx, "/song/", q, &detail); err != nil {
		return Track{}, err
	}
	if detail.Song == nil {
		return Track{}, ErrNotFound
	}

	s := detail.Song
	t := Track{
		Title:  s.Title,
		Artist: s.Artist.Name,
		Tempo:  float64(int(s.Tempo)),
		Key:    s.KeyOf,
		Source: g.Name(),
	}
	if t.Title == "" {
		t.Title = title
	}
	if t.Artist == "" {
		t.Artist = artist
	}
	if len(s.Artist.Genres) > 0 {
		t.Genre = s.Artist.Genres[0]
	}
	t.Camelot = openKeyToCamelot(s.OpenKey)
	t.normalizeKey()
	return t, nil
}

func (g *GetSongBPM) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("getsongbpm: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("getsongbpm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("getsongbpm: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("getsongbpm: %w", err)
	}
	return nil
}

// openKeyToCamelot converts Open Key notation ("1d", "8m") to Camelot. Codes
// that already look like Camelot pass through unchanged.
func openKeyToCamelot(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) < 2 {
		return ""
	}
	n, err := strconv.Atoi(code[:len(code)-1])
	if err != nil || n < 1 || n > 12 {
		return ""
	}

	var letter byte
	switch code[len(code)-1] {
	case 'd':
		letter = 'B'
	case 'm':
		letter = 'A'
	case 'a', 'b':
		if c, ok := audio.ParseCamelot(code); ok {
			return c.String()
		}
		return ""
	default:
		return ""
	}
	return audio.Camelot{Num: (n+6)%12 + 1, Letter: letter}.String()
}
