package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	database "github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/db"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/metadata"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"

	// Use an alias to prevent naming collisions with the 'server' variable
	apiserver "github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting DJ Set API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()
	database.SeedDefaultSet(db.DB)

	// 4. Storage
	store := storage.New(cfg)

	// 5. Sequencing
	lib := library.New(db.DB)
	deck := mix.NewDeck(lib, dj.NewEngine(cfg.Weights()), cfg.Mix.MaxSongs)
	resolver := metadata.FromConfig(cfg)
	log.Printf("🎧 Metadata providers: %v", resolver.Providers())

	if cfg.Server.JWTSecret == "" {
		log.Println("⚠️ server.jwt_secret is empty, edit routes are open")
	}

	// 6. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := apiserver.New(cfg, lib, deck, store, resolver)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
