package models

import "time"

// Song is a single entry of a DJ set. Tempo 0 and an empty Camelot code
// both mean "unknown".
type Song struct {
	ID        uint      `gorm:"primarykey" json:"id,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	SetID    uint `gorm:"index" json:"set_id,omitempty"`
	Position int  `gorm:"index" json:"position"`

	Title   string  `gorm:"not null" json:"title"`
	Artist  string  `gorm:"index" json:"artist"`
	Tempo   float64 `json:"tempo,omitempty"`             // BPM
	Key     string  `gorm:"size:32" json:"key,omitempty"` // display only, e.g. "C# minor"
	Camelot string  `gorm:"size:8" json:"camelot,omitempty"`
	Genre   string  `json:"genre"`
}

// HasTempo reports whether the tempo is known.
func (s Song) HasTempo() bool {
	return s.Tempo > 0
}

// Set is a named, ordered collection of songs.
type Set struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Songs       []Song `json:"songs"`
}
