package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

// ToolsHandler exposes the scoring primitives without touching a set.
type ToolsHandler struct {
	engine *dj.Engine
	lookup Lookuper
}

func NewToolsHandler(engine *dj.Engine, lookup Lookuper) *ToolsHandler {
	return &ToolsHandler{engine: engine, lookup: lookup}
}

type distanceSong struct {
	Tempo   float64 `json:"tempo"`
	Camelot string  `json:"camelot"`
}

type distanceRequest struct {
	A *distanceSong `json:"a" binding:"required"`
	B *distanceSong `json:"b" binding:"required"`
}

// Distance scores the transition from a to b.
func (h *ToolsHandler) Distance(c *gin.Context) {
	var req distanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body must contain songs a and b"})
		return
	}

	a := models.Song{Tempo: req.A.Tempo, Camelot: req.A.Camelot}
	b := models.Song{Tempo: req.B.Tempo, Camelot: req.B.Camelot}
	w := h.engine.Weights()

	c.JSON(http.StatusOK, gin.H{
		"distance":       h.engine.Distance(a, b),
		"tempo_distance": w.TempoDistance(a, b),
		"key_distance":   audio.KeyDistance(a.Camelot, b.Camelot),
	})
}

// ConvertKey turns ?key=<pitch class>&mode=<0|1> or ?name=<key name> into a
// display key and Camelot code.
func (h *ToolsHandler) ConvertKey(c *gin.Context) {
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		cam, ok := audio.ParseKeyName(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognised key name"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": name, "camelot": cam.String()})
		return
	}

	pitch, err1 := strconv.Atoi(c.Query("key"))
	mode, err2 := strconv.Atoi(c.Query("mode"))
	if err1 != nil || err2 != nil || (mode != 0 && mode != 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key (0-11) and mode (0 or 1) are required"})
		return
	}

	display, camelot, ok := audio.FromPitchClass(pitch, mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key must be between 0 and 11"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": display, "camelot": camelot})
}

// Lookup asks the metadata services about ?title=&artist=.
func (h *ToolsHandler) Lookup(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	artist := strings.TrimSpace(c.Query("artist"))
	if title == "" || artist == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and artist are required"})
		return
	}
	if h.lookup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No metadata services configured"})
		return
	}

	t, err := h.lookup.Lookup(c.Request.Context(), title, artist)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
