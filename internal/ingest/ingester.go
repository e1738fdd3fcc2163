package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"
)

var (
	jobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djset_ingest_jobs_total",
			Help: "Total CSV import jobs",
		},
		[]string{"status"},
	)
	duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "djset_ingest_duration_seconds",
			Help:    "Processing time per imported file",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(jobs, duration)
}

// Worker polls the imports bucket and loads every CSV it finds into the set
// named after the file.
type Worker struct {
	storage  *storage.Client
	library  *library.Store
	deck     *mix.Deck
	interval time.Duration
}

func New(store *storage.Client, lib *library.Store, deck *mix.Deck, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Worker{storage: store, library: lib, deck: deck, interval: interval}
}

// Run processes the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("👀 Watching imports every %s...", w.interval)
	w.ProcessQueue(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Import watcher stopped")
			return
		case <-ticker.C:
			w.ProcessQueue(ctx)
		}
	}
}

// ProcessQueue handles every pending file once. Failed files stay in the
// bucket and are retried on the next pass.
func (w *Worker) ProcessQueue(ctx context.Context) {
	keys, err := w.storage.ListImportFiles()
	if err != nil {
		log.Printf("Error listing imports: %v", err)
		return
	}

	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}
		job, ok := ParseKey(key)
		if !ok {
			continue
		}

		log.Printf("Processing: %s -> set %q", key, job.SetName)
		n, err := w.processFile(ctx, job)
		if err != nil {
			log.Printf("❌ FAILED %s: %v", key, err)
			jobs.WithLabelValues("failure").Inc()
			continue
		}
		log.Printf("✅ IMPORTED %s (%d songs)", key, n)
		jobs.WithLabelValues("success").Inc()
	}
}

func (w *Worker) processFile(ctx context.Context, job Job) (int, error) {
	timer := prometheus.NewTimer(duration)
	defer timer.ObserveDuration()

	obj, err := w.storage.DownloadImportFile(job.Key)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	songs, err := ParseCSV(obj.Body)
	obj.Body.Close()
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	set, err := w.library.EnsureSet(ctx, job.SetName)
	if err != nil {
		return 0, err
	}

	res, err := w.deck.Import(ctx, set.ID, songs, job.Optimize)
	if err != nil {
		return 0, err
	}
	if job.Optimize {
		log.Printf("   🎚️ Optimised %q: cost %.1f -> %.1f", set.Name, res.CostBefore, res.CostAfter)
	}

	return len(res.Songs), w.storage.DeleteImportFile(job.Key)
}
