package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

var ErrUnknownFormat = errors.New("csv has neither Spotify nor set export columns")

// ExportHeader is the column layout WriteCSV emits and ParseCSV reads back.
var ExportHeader = []string{"title", "artist", "tempo", "key", "camelot", "genre"}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseCSV reads either a Spotify playlist export (Track Name, Artist Name(s),
// Tempo, Key, Mode, Genres) or a file previously written by WriteCSV. Rows
// without a title or an artist are skipped.
func ParseCSV(r io.Reader) ([]models.Song, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var parse func(row []string) (models.Song, bool)
	switch {
	case has(cols, "track name"):
		parse = cols.spotifyRow
	case has(cols, "title"):
		parse = cols.exportRow
	default:
		return nil, ErrUnknownFormat
	}

	var songs []models.Song
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(songs)+2, err)
		}
		if song, ok := parse(row); ok {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

func has(c columns, name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) spotifyRow(row []string) (models.Song, bool) {
	song := models.Song{
		Title:  c.get(row, "track name"),
		Artist: c.get(row, "artist name(s)"),
		Genre:  c.get(row, "genres"),
	}
	if song.Title == "" || song.Artist == "" {
		return song, false
	}

	// Spotify reports fractional BPM; whole beats are enough to mix on.
	if t, err := strconv.ParseFloat(c.get(row, "tempo"), 64); err == nil && t > 0 {
		song.Tempo = float64(int(t))
	}

	key, mode := c.get(row, "key"), c.get(row, "mode")
	if key != "" && mode != "" {
		pitch, errK := strconv.Atoi(key)
		m, errM := strconv.Atoi(mode)
		if errK == nil && errM == nil {
			if display, camelot, ok := audio.FromPitchClass(pitch, m); ok {
				song.Key = display
				song.Camelot = camelot
			}
		}
	}
	return song, true
}

func (c columns) exportRow(row []string) (models.Song, bool) {
	song := models.Song{
		Title:   c.get(row, "title"),
		Artist:  c.get(row, "artist"),
		Key:     c.get(row, "key"),
		Camelot: c.get(row, "camelot"),
		Genre:   c.get(row, "genre"),
	}
	if song.Title == "" || song.Artist == "" {
		return song, false
	}

	if t, err := strconv.ParseFloat(c.get(row, "tempo"), 64); err == nil && t > 0 {
		song.Tempo = t
	}
	if song.Camelot == "" && song.Key != "" {
		if cam, ok := audio.ParseKeyName(song.Key); ok {
			song.Camelot = cam.String()
		}
	}
	return song, true
}

// WriteCSV writes songs in play order with the ExportHeader columns. Unknown
// tempo, key or camelot values are left blank.
func WriteCSV(w io.Writer, songs []models.Song) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}

	for _, s := range songs {
		tempo := ""
		if s.HasTempo() {
			tempo = strconv.FormatFloat(s.Tempo, 'f', -1, 64)
		}
		if err := writer.Write([]string{s.Title, s.Artist, tempo, s.Key, s.Camelot, s.Genre}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
