package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/dj/mix"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/library"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/storage"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/api/handlers"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/api/middleware"
)

type Server struct {
	cfg     *config.Config
	store   *library.Store
	deck    *mix.Deck
	storage *storage.Client
	lookup  handlers.Lookuper
	router  *gin.Engine
}

// New wires the routes. st and lookup may be nil; the routes that need them
// answer 503.
func New(cfg *config.Config, store *library.Store, deck *mix.Deck, st *storage.Client, lookup handlers.Lookuper) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.SilentLogger())

	s := &Server{
		cfg:     cfg,
		store:   store,
		deck:    deck,
		storage: st,
		lookup:  lookup,
		router:  router,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Export-Key"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	statsHandler := handlers.NewStatsHandler(s.store)
	setHandler := handlers.NewSetHandler(s.store, s.deck, s.storage)
	songHandler := handlers.NewSongHandler(s.deck, s.lookup, s.cfg.Analysis.Enabled, s.cfg.Server.TempDir)
	toolsHandler := handlers.NewToolsHandler(s.deck.Engine(), s.lookup)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "djset"})
	})

	v1 := s.router.Group("/api/v1")
	{
		// Read-only routes
		v1.GET("/stats", statsHandler.GetStats)
		v1.GET("/sets", setHandler.ListSets)
		v1.GET("/sets/:id", setHandler.GetSet)
		v1.GET("/sets/:id/export", setHandler.ExportCSV)

		v1.POST("/distance", toolsHandler.Distance)
		v1.GET("/keys/convert", toolsHandler.ConvertKey)
		v1.GET("/lookup", toolsHandler.Lookup)

		// Anything that changes a set needs an editor token once a secret
		// is configured.
		edit := v1.Group("/")
		if secret := s.cfg.Server.JWTSecret; secret != "" {
			edit.Use(middleware.RequireAuth([]byte(secret)), middleware.RequireRole(middleware.RoleEditor))
		}
		{
			edit.POST("/sets", setHandler.CreateSet)
			edit.DELETE("/sets/:id", setHandler.DeleteSet)
			edit.POST("/sets/:id/import", setHandler.ImportCSV)
			edit.POST("/sets/:id/optimize", setHandler.Optimize)

			edit.POST("/sets/:id/songs", songHandler.AddSong)
			edit.POST("/sets/:id/songs/upload", songHandler.UploadSong)
			edit.DELETE("/sets/:id/songs/:songId", songHandler.DeleteSong)
		}
	}
}

// Router exposes the handler tree, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
