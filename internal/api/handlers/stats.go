package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
)

// StatsHandler reports library totals for the dashboard.
type StatsHandler struct {
	store *library.Store
}

func NewStatsHandler(store *library.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// GetStats returns set and song counts plus how many songs the sequencer
// will score with a penalty because tempo or key is unknown.
func (h *StatsHandler) GetStats(c *gin.Context) {
	st, err := h.store.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_sets":    st.Sets,
			"total_songs":   st.Songs,
			"missing_tempo": st.MissingTempo,
			"missing_key":   st.MissingKey,
		},
	})
}
