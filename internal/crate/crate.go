// Package crate reads and writes YAML song lists for the sequencer CLI.
//
// A crate is either a mapping with a name and a songs list, or a bare list:
//
//	name: friday
//	songs:
//	  - title: Strobe
//	    artist: deadmau5
//	    tempo: 128
//	    camelot: 8A
package crate

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/audio"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

type Entry struct {
	Title   string  `yaml:"title"`
	Artist  string  `yaml:"artist"`
	Tempo   float64 `yaml:"tempo,omitempty"`
	Key     string  `yaml:"key,omitempty"`
	Camelot string  `yaml:"camelot,omitempty"`
	Genre   string  `yaml:"genre,omitempty"`
}

type Crate struct {
	Name  string  `yaml:"name,omitempty"`
	Songs []Entry `yaml:"songs"`
}

// Load reads a crate file.
func Load(path string) (*Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crate %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a crate. Camelot codes are made canonical and
// derived from the key name when only that is given.
func Parse(data []byte) (*Crate, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var c Crate
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		var err error
		if root.Kind == yaml.SequenceNode {
			err = root.Decode(&c.Songs)
		} else {
			err = root.Decode(&c)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode crate: %w", err)
		}
	}

	for i := range c.Songs {
		if err := c.Songs[i].Normalize(); err != nil {
			return nil, fmt.Errorf("song %d: %w", i+1, err)
		}
	}
	return &c, nil
}

// Normalize trims the entry, checks it and fills a canonical Camelot code.
func (e *Entry) Normalize() error {
	e.Title = strings.TrimSpace(e.Title)
	e.Artist = strings.TrimSpace(e.Artist)
	if e.Title == "" || e.Artist == "" {
		return fmt.Errorf("title and artist are required")
	}
	if e.Tempo < 0 {
		return fmt.Errorf("%q: negative tempo", e.Title)
	}

	if e.Camelot != "" {
		c, ok := audio.ParseCamelot(e.Camelot)
		if !ok {
			return fmt.Errorf("%q: invalid camelot code %q", e.Title, e.Camelot)
		}
		e.Camelot = c.String()
		return nil
	}
	if c, ok := audio.ParseKeyName(e.Key); ok {
		e.Camelot = c.String()
	}
	return nil
}

// Models returns the entries as set songs, in crate order.
func (c *Crate) Models() []models.Song {
	out := make([]models.Song, len(c.Songs))
	for i, e := range c.Songs {
		out[i] = models.Song{
			Title:   e.Title,
			Artist:  e.Artist,
			Tempo:   e.Tempo,
			Key:     e.Key,
			Camelot: e.Camelot,
			Genre:   e.Genre,
		}
	}
	return out
}

// FromModels builds a crate from songs in play order.
func FromModels(name string, songs []models.Song) *Crate {
	c := &Crate{Name: name, Songs: make([]Entry, len(songs))}
	for i, s := range songs {
		c.Songs[i] = Entry{
			Title:   s.Title,
			Artist:  s.Artist,
			Tempo:   s.Tempo,
			Key:     s.Key,
			Camelot: s.Camelot,
			Genre:   s.Genre,
		}
	}
	return c
}

// Marshal encodes the crate with two-space indentation.
func (c *Crate) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the crate to path.
func (c *Crate) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
