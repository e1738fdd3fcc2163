package database

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

// DefaultSetName is the set uploads land in when no set is named.
const DefaultSetName = "default"

// SeedDefaultSet makes sure the default set exists.
func SeedDefaultSet(db *gorm.DB) {
	set := models.Set{
		Name:        DefaultSetName,
		Description: "Songs uploaded without a set",
	}

	// UPSERT based on 'Name' to prevent duplicates on restart
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&set).Error
	if err != nil {
		log.Printf("⚠️ Failed to seed set %q: %v", DefaultSetName, err)
		return
	}
	log.Printf("🌱 Set %q ready", DefaultSetName)
}
