package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/utils"
)

// SongHandler adds and removes songs from a set.
type SongHandler struct {
	deck    *mix.Deck
	lookup  Lookuper
	analyze bool
	tempDir string
}

// NewSongHandler builds a SongHandler. lookup may be nil; analyze enables
// the essentia fallback for uploads whose tags carry no tempo or key.
func NewSongHandler(deck *mix.Deck, lookup Lookuper, analyze bool, tempDir string) *SongHandler {
	return &SongHandler{deck: deck, lookup: lookup, analyze: analyze, tempDir: tempDir}
}

type songRequest struct {
	Title   string  `json:"title" binding:"required"`
	Artist  string  `json:"artist" binding:"required"`
	Tempo   float64 `json:"tempo"`
	Key     string  `json:"key"`
	Camelot string  `json:"camelot"`
	Genre   string  `json:"genre"`
	// Lookup asks the metadata services for whatever is missing.
	Lookup bool `json:"lookup"`
}

func (r songRequest) track() metadata.Track {
	return metadata.Track{
		Title:   strings.TrimSpace(r.Title),
		Artist:  strings.TrimSpace(r.Artist),
		Genre:   r.Genre,
		Tempo:   r.Tempo,
		Key:     r.Key,
		Camelot: r.Camelot,
	}
}

// AddSong stores a song in a set. placement=best (default) puts it where it
// adds the least transition cost; placement=end appends it.
func (h *SongHandler) AddSong(c *gin.Context) {
	setID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req songRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and artist are required"})
		return
	}
	if req.Tempo < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tempo must not be negative"})
		return
	}

	placement := c.DefaultQuery("placement", "best")
	if placement != "best" && placement != "end" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "placement must be best or end"})
		return
	}

	t := req.track()
	if req.Lookup {
		h.enrich(c, &t)
	}

	song, ok := toSong(t)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid camelot code"})
		return
	}
	h.place(c, setID, song, placement)
}

// UploadSong reads an audio file's tags (and optionally analyses it) to
// build a song, then places it at the cheapest position.
func (h *SongHandler) UploadSong(c *gin.Context) {
	setID, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if !audio.IsSupportedFormat(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported audio format"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	tempFile, err := os.CreateTemp(h.tempDir, "djset-upload-*"+ext)
	if err != nil {
		slog.Error("temp file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server storage error"})
		return
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	uploaded, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File open error"})
		return
	}
	defer uploaded.Close()
	if _, err := io.Copy(tempFile, uploaded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File copy error"})
		return
	}
	tempFile.Close()

	t, err := metadata.ReadTags(tempFile.Name())
	if err != nil {
		slog.Warn("no readable tags", "file", fileHeader.Filename, "error", err)
	}
	if t.Title == "" {
		t.Title = strings.TrimSpace(utils.CleanFilename(fileHeader.Filename))
	}
	if t.Artist == "" {
		t.Artist = "Unknown Artist"
	}

	if h.analyze && (t.Tempo <= 0 || t.Camelot == "") {
		a, err := audio.AnalyzeDeep(c.Request.Context(), tempFile.Name())
		if err != nil {
			slog.Warn("analysis failed", "file", fileHeader.Filename, "error", err)
		} else {
			t.Fill(metadata.Track{Tempo: a.BPM, Key: a.DisplayKey(), Camelot: a.Camelot})
		}
	}
	h.enrich(c, &t)

	song, ok := toSong(t)
	if !ok {
		// A bad tag is not the caller's fault; score it as unknown.
		t.Camelot = ""
		song, _ = toSong(t)
	}
	h.place(c, setID, song, "best")
}

func (h *SongHandler) DeleteSong(c *gin.Context) {
	setID, ok := parseID(c, "id")
	if !ok {
		return
	}
	songID, ok := parseID(c, "songId")
	if !ok {
		return
	}

	if err := h.deck.Remove(c.Request.Context(), setID, songID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song removed"})
}

// enrich fills missing fields from the metadata services. Failures are
// logged, never returned: a song without tempo can still be sequenced.
func (h *SongHandler) enrich(c *gin.Context, t *metadata.Track) {
	if h.lookup == nil || t.Complete() {
		return
	}
	found, err := h.lookup.Lookup(c.Request.Context(), t.Title, t.Artist)
	if err != nil {
		if !errors.Is(err, metadata.ErrNotFound) {
			slog.Warn("metadata lookup failed", "title", t.Title, "artist", t.Artist, "error", err)
		}
		return
	}
	t.Fill(found)
}

func (h *SongHandler) place(c *gin.Context, setID uint, song models.Song, placement string) {
	var (
		added *models.Song
		pos   int
		err   error
	)
	if placement == "end" {
		added, pos, err = h.deck.Append(c.Request.Context(), setID, song)
	} else {
		added, pos, err = h.deck.Insert(c.Request.Context(), setID, song)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"song": added, "position": pos})
}

func toSong(t metadata.Track) (models.Song, bool) {
	camelot, ok := normalizeCamelot(t.Camelot, t.Key)
	if !ok {
		return models.Song{}, false
	}
	t.Camelot = camelot
	return t.Song(), true
}
