package ingest

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/models"
)

const spotifyExport = "\ufeffTrack URI,Track Name,Artist Name(s),Genres,Tempo,Key,Mode\n" +
	"spotify:track:1,Strobe,deadmau5,progressive house,128.01,9,0\n" +
	"spotify:track:2,Opus,Eric Prydz,\"progressive house,edm\",126.05,11,1\n" +
	"spotify:track:3,,No Title,house,120,1,1\n" +
	"spotify:track:4,No Key,Someone,,,,\n" +
	"spotify:track:5,Bad Key,Someone,,99.9,12,1\n"

func TestParseSpotifyCSV(t *testing.T) {
	songs, err := ParseCSV(strings.NewReader(spotifyExport))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	want := []models.Song{
		{Title: "Strobe", Artist: "deadmau5", Tempo: 128, Key: "A minor", Camelot: "8A", Genre: "progressive house"},
		{Title: "Opus", Artist: "Eric Prydz", Tempo: 126, Key: "B major", Camelot: "1B", Genre: "progressive house,edm"},
		{Title: "No Key", Artist: "Someone"},
		{Title: "Bad Key", Artist: "Someone", Tempo: 99},
	}
	if !reflect.DeepEqual(songs, want) {
		t.Errorf("ParseCSV() =\n%+v\nwant\n%+v", songs, want)
	}
}

func TestExportRoundTrip(t *testing.T) {
	songs := []models.Song{
		{Title: "Strobe", Artist: "deadmau5", Tempo: 128, Key: "A minor", Camelot: "8A", Genre: "progressive house"},
		{Title: "Unknown, with comma", Artist: "Someone"},
		{Title: "Half", Artist: "Beat", Tempo: 87.5, Camelot: "3B"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, songs); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	wantText := "title,artist,tempo,key,camelot,genre\n" +
		"Strobe,deadmau5,128,A minor,8A,progressive house\n" +
		"\"Unknown, with comma\",Someone,,,,\n" +
		"Half,Beat,87.5,,3B,\n"
	if buf.String() != wantText {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), wantText)
	}

	back, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if !reflect.DeepEqual(back, songs) {
		t.Errorf("round trip =\n%+v\nwant\n%+v", back, songs)
	}
}

func TestParseExportDerivesCamelot(t *testing.T) {
	in := "title,artist,tempo,key\nNight,Owl,124,F# minor\n"
	songs, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(songs) != 1 || songs[0].Camelot != "11A" {
		t.Errorf("ParseCSV() = %+v; want camelot 11A", songs)
	}
}

func TestParseUnknownFormat(t *testing.T) {
	for _, in := range []string{"", "name,bpm\nx,120\n"} {
		if _, err := ParseCSV(strings.NewReader(in)); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseCSV(%q) err = %v; want ErrUnknownFormat", in, err)
		}
	}
}
