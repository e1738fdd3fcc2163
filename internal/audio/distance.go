package audio

import (
	"math"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

// Weights tunes the transition cost between two songs.
type Weights struct {
	// Harmonic is the cost of one key-distance step, in BPM. At 4.0 a wheel
	// step costs about as much as 4 BPM of tempo mismatch.
	Harmonic float64
	// MissingTempo is the tempo term used when either tempo is unknown.
	MissingTempo float64
}

// DefaultWeights reproduces the scoring existing sets were ordered with.
var DefaultWeights = Weights{
	Harmonic:     4.0,
	MissingTempo: 100,
}

// Distance returns the transition cost between two songs using DefaultWeights.
func Distance(a, b models.Song) float64 {
	return DefaultWeights.Distance(a, b)
}

// Distance is the transition cost from a to b. Lower is smoother; 0 means
// same tempo (or a clean half/double-time relation) in the same key.
func (w Weights) Distance(a, b models.Song) float64 {
	return w.TempoDistance(a, b) + w.Harmonic*float64(KeyDistance(a.Camelot, b.Camelot))
}

// TempoDistance is the smallest BPM gap between the two songs when played
// straight, or with either one at double time (140 mixes into 70).
func (w Weights) TempoDistance(a, b models.Song) float64 {
	if !a.HasTempo() || !b.HasTempo() {
		return w.MissingTempo
	}
	t1, t2 := a.Tempo, b.Tempo
	direct := math.Abs(t1 - t2)
	half := math.Abs(t1 - 2*t2)
	double := math.Abs(2*t1 - t2)
	return math.Min(direct, math.Min(half, double))
}
