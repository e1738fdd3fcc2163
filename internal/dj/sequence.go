// Package dj orders songs into smooth DJ sets. Everything here is a pure
// function of its input: no caching, no shared state.
package dj

import (
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

// Engine sequences songs under one set of mix weights.
type Engine struct {
	weights audio.Weights
}

// NewEngine returns an Engine scoring transitions with w.
func NewEngine(w audio.Weights) *Engine {
	return &Engine{weights: w}
}

var defaultEngine = NewEngine(audio.DefaultWeights)

// Distance is the transition cost between two songs with the default weights.
func Distance(a, b models.Song) float64 {
	return defaultEngine.Distance(a, b)
}

// Order returns songs in a low-friction playback order with the default weights.
func Order(songs []models.Song) []models.Song {
	return defaultEngine.Order(songs)
}

// Insert splices song into an ordered set with the default weights.
func Insert(ordered []models.Song, song models.Song) []models.Song {
	out, _ := defaultEngine.Insert(ordered, song)
	return out
}

// Weights returns the weights the engine scores with.
func (e *Engine) Weights() audio.Weights {
	return e.weights
}

// Distance is the transition cost from a to b.
func (e *Engine) Distance(a, b models.Song) float64 {
	return e.weights.Distance(a, b)
}

// Cost is the total friction of playing songs in the given order.
func (e *Engine) Cost(songs []models.Song) float64 {
	total := 0.0
	for i := 1; i < len(songs); i++ {
		total += e.Distance(songs[i-1], songs[i])
	}
	return total
}

// Order returns a new slice holding the songs in tour order. The input
// slice and its records are not modified.
func (e *Engine) Order(songs []models.Song) []models.Song {
	if len(songs) <= 1 {
		return songs
	}
	tour := e.Tour(songs)
	out := make([]models.Song, len(tour))
	for pos, idx := range tour {
		out[pos] = songs[idx]
	}
	return out
}

// Tour returns a permutation of the indices of songs: a nearest-neighbour
// walk from song 0, polished with 2-opt until no reversal helps.
func (e *Engine) Tour(songs []models.Song) []int {
	n := len(songs)
	if n <= 1 {
		tour := make([]int, n)
		for i := range tour {
			tour[i] = i
		}
		return tour
	}

	dist := e.matrix(songs)
	tour := nearestNeighbour(dist)
	twoOpt(tour, dist)
	return tour
}

func (e *Engine) matrix(songs []models.Song) [][]float64 {
	n := len(songs)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := e.Distance(songs[i], songs[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// nearestNeighbour starts at index 0 and keeps moving to the closest
// unvisited index. Ties go to the lowest index.
func nearestNeighbour(dist [][]float64) []int {
	n := len(dist)
	visited := make([]bool, n)
	tour := make([]int, 0, n)

	current := 0
	visited[current] = true
	tour = append(tour, current)

	for len(tour) < n {
		nearest := -1
		for cand := 0; cand < n; cand++ {
			if visited[cand] {
				continue
			}
			if nearest == -1 || dist[current][cand] < dist[current][nearest] {
				nearest = cand
			}
		}
		visited[nearest] = true
		tour = append(tour, nearest)
		current = nearest
	}
	return tour
}

// twoOpt improves tour in place. It takes the first improving reversal it
// finds and rescans from the top, until a full pass changes nothing. The
// first position is never moved.
func twoOpt(tour []int, dist [][]float64) {
	n := len(tour)
	for improved := true; improved; {
		improved = false
	scan:
		for i := 1; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				current := dist[tour[i-1]][tour[i]] + dist[tour[j-1]][tour[j]]
				swapped := dist[tour[i-1]][tour[j-1]] + dist[tour[i]][tour[j]]
				if swapped < current {
					reverse(tour[i:j])
					improved = true
					break scan
				}
			}
		}
	}
}

func reverse(s []int) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}
