package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	database "github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/db"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/ingest"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CSV Import Worker...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	store := storage.New(cfg)
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()

	// 4. Setup Metrics
	ingest.RegisterMetrics()
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/metrics", cfg.Server.MetricsPort)
		log.Fatal(http.ListenAndServe(cfg.Server.MetricsPort, nil))
	}()

	// 5. Start Worker
	lib := library.New(db.DB)
	deck := mix.NewDeck(lib, dj.NewEngine(cfg.Weights()), cfg.Mix.MaxSongs)
	interval := time.Duration(cfg.Server.PollingInterval) * time.Second
	worker := ingest.New(store, lib, deck, interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker.Run(ctx)
	log.Println("👋 Import worker stopped")
}
