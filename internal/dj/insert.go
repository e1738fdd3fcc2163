package dj

import "github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"

// Insert returns a copy of ordered with song spliced in where it adds the
// least friction, and the index it landed on. Ties go to the earliest slot.
// An empty set yields [song]; a single song is always followed by the new one.
func (e *Engine) Insert(ordered []models.Song, song models.Song) ([]models.Song, int) {
	switch len(ordered) {
	case 0:
		return []models.Song{song}, 0
	case 1:
		return []models.Song{ordered[0], song}, 1
	}

	pos := e.BestPosition(ordered, song)
	out := make([]models.Song, 0, len(ordered)+1)
	out = append(out, ordered[:pos]...)
	out = append(out, song)
	out = append(out, ordered[pos:]...)
	return out, pos
}

// BestPosition scans every slot 0..len(ordered) and returns the one with the
// smallest added cost. Interior slots are scored by the net change: the two
// new transitions minus the one they replace, which can be negative.
func (e *Engine) BestPosition(ordered []models.Song, song models.Song) int {
	n := len(ordered)
	if n == 0 {
		return 0
	}

	best := 0
	bestCost := 0.0
	for i := 0; i <= n; i++ {
		cost := e.AddedCost(ordered, song, i)
		if i == 0 || cost < bestCost {
			best = i
			bestCost = cost
		}
	}
	return best
}

// AddedCost is the change in total set cost from placing song at index i.
func (e *Engine) AddedCost(ordered []models.Song, song models.Song, i int) float64 {
	n := len(ordered)
	switch {
	case i <= 0:
		return e.Distance(song, ordered[0])
	case i >= n:
		return e.Distance(ordered[n-1], song)
	default:
		prev, next := ordered[i-1], ordered[i]
		return e.Distance(prev, song) + e.Distance(song, next) - e.Distance(prev, next)
	}
}
