// Package mix runs the sequencing engine against stored sets.
package mix

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

var ErrTooManySongs = errors.New("set is too large to optimise")

var (
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djset_sequence_operations_total",
			Help: "Sequencing operations by type and outcome",
		},
		[]string{"op", "status"},
	)
	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "djset_sequence_duration_seconds",
			Help:    "Time spent per sequencing operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	setCost = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "djset_set_cost",
			Help: "Total transition cost of a set after its last optimise",
		},
		[]string{"set"},
	)
)

func init() {
	prometheus.MustRegister(operations, opDuration, setCost)
}

// Result is the outcome of a reorder.
type Result struct {
	SetID      uint          `json:"set_id"`
	Songs      []models.Song `json:"songs"`
	CostBefore float64       `json:"cost_before"`
	CostAfter  float64       `json:"cost_after"`
}

// Deck serialises edits per set so a reorder never interleaves with an
// insert or another reorder of the same set.
type Deck struct {
	store    *library.Store
	engine   *dj.Engine
	maxSongs int
	locks    *setLocks
}

func NewDeck(store *library.Store, engine *dj.Engine, maxSongs int) *Deck {
	return &Deck{
		store:    store,
		engine:   engine,
		maxSongs: maxSongs,
		locks:    newSetLocks(),
	}
}

func (d *Deck) Engine() *dj.Engine { return d.engine }

// Optimize reorders a stored set and persists the new positions.
func (d *Deck) Optimize(ctx context.Context, setID uint) (res *Result, err error) {
	defer observe("optimize", &err)()
	unlock := d.locks.lock(setID)
	defer unlock()

	songs, err := d.store.Songs(ctx, setID)
	if err != nil {
		return nil, err
	}
	return d.reorder(ctx, setID, songs)
}

// Import replaces the songs of a set, then reorders them when optimize is set.
func (d *Deck) Import(ctx context.Context, setID uint, songs []models.Song, optimize bool) (res *Result, err error) {
	defer observe("import", &err)()
	unlock := d.locks.lock(setID)
	defer unlock()

	if optimize {
		if err := d.checkSize(len(songs)); err != nil {
			return nil, err
		}
	}

	stored, err := d.store.ReplaceSongs(ctx, setID, songs)
	if err != nil {
		return nil, err
	}
	if !optimize {
		cost := d.engine.Cost(stored)
		return &Result{SetID: setID, Songs: stored, CostBefore: cost, CostAfter: cost}, nil
	}
	return d.reorder(ctx, setID, stored)
}

// Insert places song where it adds the least cost to the stored order and
// returns the saved song with its index.
func (d *Deck) Insert(ctx context.Context, setID uint, song models.Song) (added *models.Song, pos int, err error) {
	defer observe("insert", &err)()
	unlock := d.locks.lock(setID)
	defer unlock()

	songs, err := d.store.Songs(ctx, setID)
	if err != nil {
		return nil, 0, err
	}
	_, pos = d.engine.Insert(songs, song)

	added, err = d.store.InsertSong(ctx, setID, song, pos)
	if err != nil {
		return nil, 0, err
	}
	return added, pos, nil
}

// Append adds song at the end of the set.
func (d *Deck) Append(ctx context.Context, setID uint, song models.Song) (added *models.Song, pos int, err error) {
	defer observe("append", &err)()
	unlock := d.locks.lock(setID)
	defer unlock()

	songs, err := d.store.Songs(ctx, setID)
	if err != nil {
		return nil, 0, err
	}
	added, err = d.store.InsertSong(ctx, setID, song, len(songs))
	if err != nil {
		return nil, 0, err
	}
	return added, len(songs), nil
}

func (d *Deck) Remove(ctx context.Context, setID, songID uint) (err error) {
	defer observe("remove", &err)()
	unlock := d.locks.lock(setID)
	defer unlock()

	return d.store.RemoveSong(ctx, setID, songID)
}

// reorder must be called with the set lock held.
func (d *Deck) reorder(ctx context.Context, setID uint, songs []models.Song) (*Result, error) {
	if err := d.checkSize(len(songs)); err != nil {
		return nil, err
	}

	before := d.engine.Cost(songs)
	ordered := d.engine.Order(songs)
	if err := d.store.SaveOrder(ctx, setID, ordered); err != nil {
		return nil, err
	}
	for i := range ordered {
		ordered[i].Position = i
	}

	after := d.engine.Cost(ordered)
	setCost.WithLabelValues(strconv.FormatUint(uint64(setID), 10)).Set(after)

	return &Result{SetID: setID, Songs: ordered, CostBefore: before, CostAfter: after}, nil
}

func (d *Deck) checkSize(n int) error {
	if d.maxSongs > 0 && n > d.maxSongs {
		return fmt.Errorf("%d songs, limit %d: %w", n, d.maxSongs, ErrTooManySongs)
	}
	return nil
}

func observe(op string, err *error) func() {
	timer := prometheus.NewTimer(opDuration.WithLabelValues(op))
	return func() {
		timer.ObserveDuration()
		status := "success"
		if *err != nil {
			status = "error"
		}
		operations.WithLabelValues(op, status).Inc()
	}
}

type setLocks struct {
	mu    sync.Mutex
	locks map[uint]*setLock
}

type setLock struct {
	mu   sync.Mutex
	refs int
}

func newSetLocks() *setLocks {
	return &setLocks{locks: make(map[uint]*setLock)}
}

func (l *setLocks) lock(id uint) func() {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &setLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
