// Package library persists sets and the ordered songs inside them.
package library

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

var (
	ErrSetNotFound  = errors.New("set not found")
	ErrSongNotFound = errors.New("song not found")
	ErrSetExists    = errors.New("set already exists")
)

// Store owns the set list. Every read-modify-write runs inside a transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

type SetSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SongCount   int    `json:"song_count"`
}

type Stats struct {
	Sets         int64 `json:"sets"`
	Songs        int64 `json:"songs"`
	MissingTempo int64 `json:"missing_tempo"`
	MissingKey   int64 `json:"missing_key"`
}

// EnsureSet returns the set called name, creating it when needed.
func (s *Store) EnsureSet(ctx context.Context, name string) (*models.Set, error) {
	set := models.Set{Name: name}
	if err := s.db.WithContext(ctx).Where(models.Set{Name: name}).FirstOrCreate(&set).Error; err != nil {
		return nil, fmt.Errorf("ensure set %q: %w", name, err)
	}
	return &set, nil
}

func (s *Store) CreateSet(ctx context.Context, name, description string) (*models.Set, error) {
	set := models.Set{Name: name, Description: description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Set{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrSetExists
		}
		return tx.Create(&set).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrSetExists
	}
	if err != nil {
		return nil, fmt.Errorf("create set %q: %w", name, err)
	}
	return &set, nil
}

func (s *Store) ListSets(ctx context.Context) ([]SetSummary, error) {
	var out []SetSummary
	err := s.db.WithContext(ctx).
		Model(&models.Set{}).
		Select("sets.id, sets.name, sets.description, count(songs.id) AS song_count").
		Joins("LEFT JOIN songs ON songs.set_id = sets.id").
		Group("sets.id").
		Order("sets.name asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return out, nil
}

// GetSet loads a set with its songs in play order.
func (s *Store) GetSet(ctx context.Context, id uint) (*models.Set, error) {
	var set models.Set
	err := s.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		First(&set, id).Error
	if err != nil {
		return nil, notFound(err, ErrSetNotFound)
	}
	return &set, nil
}

// DeleteSet removes the set and every song in it.
func (s *Store) DeleteSet(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setExists(tx, id); err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", id).Delete(&models.Song{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Set{}, id).Error
	})
}

// Songs returns the songs of a set in play order.
func (s *Store) Songs(ctx context.Context, setID uint) ([]models.Song, error) {
	var songs []models.Song
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setExists(tx, setID); err != nil {
			return err
		}
		return tx.Where("set_id = ?", setID).Order("position asc, id asc").Find(&songs).Error
	})
	return songs, err
}

// ReplaceSongs drops the current songs of a set and stores songs in the
// given order.
func (s *Store) ReplaceSongs(ctx context.Context, setID uint, songs []models.Song) ([]models.Song, error) {
	rows := make([]models.Song, len(songs))
	for i, song := range songs {
		song.ID = 0
		song.SetID = setID
		song.Position = i
		rows[i] = song
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setExists(tx, setID); err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", setID).Delete(&models.Song{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveOrder rewrites the positions of a set to match ordered. Every song must
// already belong to the set.
func (s *Store) SaveOrder(ctx context.Context, setID uint, ordered []models.Song) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setExists(tx, setID); err != nil {
			return err
		}
		for i, song := range ordered {
			res := tx.Model(&models.Song{}).
				Where("id = ? AND set_id = ?", song.ID, setID).
				UpdateColumn("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("song %d: %w", song.ID, ErrSongNotFound)
			}
		}
		return nil
	})
}

// InsertSong stores song at index at, shifting later songs down by one.
// at is clamped to [0, len].
func (s *Store) InsertSong(ctx context.Context, setID uint, song models.Song, at int) (*models.Song, error) {
	song.ID = 0
	song.SetID = setID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setExists(tx, setID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Song{}).Where("set_id = ?", setID).Count(&count).Error; err != nil {
			return err
		}
		if at < 0 {
			at = 0
		}
		if at > int(count) {
			at = int(count)
		}

		err := tx.Model(&models.Song{}).
			Where("set_id = ? AND position >= ?", setID, at).
			UpdateColumn("position", gorm.Expr("position + 1")).Error
		if err != nil {
			return err
		}

		song.Position = at
		return tx.Create(&song).Error
	})
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// RemoveSong deletes a song and closes the gap it leaves.
func (s *Store) RemoveSong(ctx context.Context, setID, songID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var song models.Song
		if err := tx.Where("set_id = ?", setID).First(&song, songID).Error; err != nil {
			return notFound(err, ErrSongNotFound)
		}
		if err := tx.Delete(&song).Error; err != nil {
			return err
		}
		return tx.Model(&models.Song{}).
			Where("set_id = ? AND position > ?", setID, song.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Set{}).Count(&st.Sets).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Song{}).Count(&st.Songs).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Song{}).Where("tempo <= 0").Count(&st.MissingTempo).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Song{}).Where("camelot = ''").Count(&st.MissingKey).Error; err != nil {
		return st, err
	}
	return st, nil
}

func setExists(tx *gorm.DB, id uint) error {
	var set models.Set
	if err := tx.Select("id").First(&set, id).Error; err != nil {
		return notFound(err, ErrSetNotFound)
	}
	return nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
