package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/ingest"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/utils"
)

const exportFilename = "optimized_playlist.csv"

// SetHandler serves set CRUD, CSV import/export and reordering.
type SetHandler struct {
	store   *library.Store
	deck    *mix.Deck
	storage *storage.Client
}

// NewSetHandler builds a SetHandler. st may be nil, in which case
// ?store=true exports are refused.
func NewSetHandler(store *library.Store, deck *mix.Deck, st *storage.Client) *SetHandler {
	return &SetHandler{store: store, deck: deck, storage: st}
}

type createSetRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *SetHandler) ListSets(c *gin.Context) {
	sets, err := h.store.ListSets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if sets == nil {
		sets = []library.SetSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"data": sets})
}

func (h *SetHandler) CreateSet(c *gin.Context) {
	var req createSetRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set name is required"})
		return
	}

	set, err := h.store.CreateSet(c.Request.Context(), strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

// GetSet returns the set in play order with its total transition cost.
func (h *SetHandler) GetSet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	set, err := h.store.GetSet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"set":  set,
		"cost": h.deck.Engine().Cost(set.Songs),
	})
}

func (h *SetHandler) DeleteSet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteSet(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Set deleted"})
}

// ImportCSV replaces the songs of a set with an uploaded CSV. With
// ?optimize=true the set is reordered before it is returned.
func (h *SetHandler) ImportCSV(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .csv files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open file"})
		return
	}
	defer file.Close()

	songs, err := ingest.ParseCSV(file)
	if err != nil {
		if errors.Is(err, ingest.ErrUnknownFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable CSV"})
		return
	}
	if len(songs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No songs found in file"})
		return
	}

	res, err := h.deck.Import(c.Request.Context(), id, songs, c.Query("optimize") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("set imported", "set_id", id, "songs", len(res.Songs), "file", fileHeader.Filename)
	c.JSON(http.StatusOK, res)
}

// Optimize reorders the set and persists the new order.
func (h *SetHandler) Optimize(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.deck.Optimize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(res.Songs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set has no songs"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportCSV sends the set in play order as a CSV attachment. With
// ?store=true a copy is also written to the exports bucket and its key is
// returned in the X-Export-Key header.
func (h *SetHandler) ExportCSV(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	set, err := h.store.GetSet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(set.Songs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set has no songs to export"})
		return
	}

	var buf bytes.Buffer
	if err := ingest.WriteCSV(&buf, set.Songs); err != nil {
		respondError(c, err)
		return
	}

	if c.Query("store") == "true" {
		if h.storage == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
			return
		}
		key := utils.Sanitize(set.Name, "set") + "/" + uuid.NewString() + ".csv"
		if err := h.storage.UploadExportFile(key, bytes.NewReader(buf.Bytes())); err != nil {
			slog.Error("export upload failed", "set_id", id, "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
			return
		}
		c.Header("X-Export-Key", key)
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
