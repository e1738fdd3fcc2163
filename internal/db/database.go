package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

type Client struct {
	DB *gorm.DB
}

// Dialector picks the gorm driver for the configured database.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		return sqlite.Open(cfg.Database.Path), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Database.Host,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.Port,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func New(cfg *config.Config) *Client {
	dialector, err := Dialector(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	sqlDB, _ := db.DB()
	if cfg.Database.Driver == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	} else {
		// sqlite serialises writers anyway
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Printf("✅ Database Connected (%s)", dialector.Name())

	return &Client{DB: db}
}

// AutoMigrate creates/updates tables based on struct definitions
func (c *Client) AutoMigrate() {
	log.Println("Running Database Migrations...")
	if err := Migrate(c.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("✅ Migrations Complete")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Set{},
		&models.Song{},
	)
}
