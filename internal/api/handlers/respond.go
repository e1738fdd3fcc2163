package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
)

// Lookuper resolves tempo, key and genre for a song. *metadata.Resolver
// satisfies it.
type Lookuper interface {
	Lookup(ctx context.Context, title, artist string) (metadata.Track, error)
}

// parseID reads a numeric path parameter. It writes the 400 itself.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, library.ErrSetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Set not found"})
	case errors.Is(err, library.ErrSongNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
	case errors.Is(err, library.ErrSetExists):
		c.JSON(http.StatusConflict, gin.H{"error": "A set with that name already exists"})
	case errors.Is(err, mix.ErrTooManySongs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, metadata.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No metadata found"})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// normalizeCamelot returns the canonical Camelot code for a song, preferring
// an explicit code over a key name. ok is false when a non-empty camelot is
// not a valid code.
func normalizeCamelot(camelot, key string) (string, bool) {
	if strings.TrimSpace(camelot) != "" {
		c, ok := audio.ParseCamelot(camelot)
		if !ok {
			return "", false
		}
		return c.String(), true
	}
	if c, ok := audio.ParseKeyName(key); ok {
		return c.String(), true
	}
	return "", true
}
