package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/go-flac"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/utils"
)

const vendor = "djset"

// ReadTags reads title, artist and genre from any format dhowden/tag knows,
// then BPM and key from the ID3v2 TBPM/TKEY frames or the FLAC Vorbis
// comments (BPM, KEY/INITIALKEY).
func ReadTags(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return Track{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Track{}, fmt.Errorf("read tags: %w", err)
	}

	t := Track{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Genre:  strings.TrimSpace(m.Genre()),
		Source: "tags",
	}

	switch m.FileType() {
	case tag.MP3:
		err = readID3(path, &t)
	case tag.FLAC:
		err = readVorbis(path, &t)
	}
	if err != nil {
		return Track{}, err
	}

	if t.Title == "" {
		t.Title = strings.TrimSpace(utils.CleanFilename(filepath.Base(path)))
	}
	t.normalizeKey()
	return t, nil
}

func readID3(path string, t *Track) error {
	id3, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"TBPM", "TKEY"}})
	if err != nil {
		return fmt.Errorf("read id3: %w", err)
	}
	defer id3.Close()

	t.Tempo = parseBPM(id3.GetTextFrame("TBPM").Text)
	t.Key = strings.TrimSpace(id3.GetTextFrame("TKEY").Text)
	return nil
}

func readVorbis(path string, t *Track) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("read flac: %w", err)
	}

	for _, m := range f.Meta {
		if m.Type != flac.VorbisComment {
			continue
		}
		comments, err := parseVorbisComments(m.Data)
		if err != nil {
			return err
		}
		if t.Tempo <= 0 {
			t.Tempo = parseBPM(comments["BPM"])
		}
		if t.Key == "" {
			t.Key = comments["INITIALKEY"]
		}
		if t.Key == "" {
			t.Key = comments["KEY"]
		}
	}
	return nil
}

// parseBPM accepts "128", "127.98" and the "128 BPM" some taggers write.
func parseBPM(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	bpm, err := strconv.ParseFloat(strings.Replace(fields[0], ",", ".", 1), 64)
	if err != nil || bpm <= 0 {
		return 0
	}
	return bpm
}

// parseVorbisComments decodes a Vorbis comment block:
// [vendor len][vendor][count]{[len][KEY=VALUE]}... all little endian.
func parseVorbisComments(data []byte) (map[string]string, error) {
	r := bytes.NewReader(data)
	readString := func() (string, error) {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		if int64(n) > int64(r.Len()) {
			return "", errors.New("vorbis comment overruns block")
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	}

	if _, err := readString(); err != nil {
		return nil, fmt.Errorf("vorbis vendor: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("vorbis count: %w", err)
	}

	out := make(map[string]string, count)
	for i := uint32(0); i < count; i++ {
		c, err := readString()
		if err != nil {
			return nil, fmt.Errorf("vorbis comment %d: %w", i, err)
		}
		k, v, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		k = strings.ToUpper(k)
		if _, seen := out[k]; !seen {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out, nil
}

// Stamp writes the track's fields back into an MP3 or FLAC file.
func Stamp(path string, t Track) error {
	tags := map[string]string{
		"TITLE":  t.Title,
		"ARTIST": t.Artist,
		"GENRE":  t.Genre,
		"KEY":    t.Camelot,
	}
	if t.Tempo > 0 {
		tags["BPM"] = strconv.FormatFloat(t.Tempo, 'f', -1, 64)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return StampMP3(path, tags)
	case ".flac":
		return StampFLAC(path, tags)
	default:
		return fmt.Errorf("cannot write tags to %s", filepath.Ext(path))
	}
}

func StampMP3(path string, tags map[string]string) error {
	id3, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer id3.Close()

	if v := tags["TITLE"]; v != "" {
		id3.SetTitle(v)
	}
	if v := tags["ARTIST"]; v != "" {
		id3.SetArtist(v)
	}
	if v := tags["GENRE"]; v != "" {
		id3.SetGenre(v)
	}
	if v := tags["BPM"]; v != "" {
		id3.DeleteFrames("TBPM")
		id3.AddTextFrame("TBPM", id3.DefaultEncoding(), v)
	}
	if v := tags["KEY"]; v != "" {
		id3.DeleteFrames("TKEY")
		id3.AddTextFrame("TKEY", id3.DefaultEncoding(), v)
	}

	return id3.Save()
}

// StampFLAC replaces the Vorbis comment block; go-flac only deals in raw blocks.
func StampFLAC(path string, tags map[string]string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	var meta []*flac.MetaDataBlock
	for _, m := range f.Meta {
		if m.Type != flac.VorbisComment {
			meta = append(meta, m)
		}
	}

	var comments []string
	for _, k := range []string{"TITLE", "ARTIST", "GENRE", "BPM", "KEY"} {
		if v := tags[k]; v != "" {
			comments = append(comments, k+"="+v)
		}
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	binary.Write(&buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(&buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}

	// StreamInfo stays first; the comment block goes after it.
	f.Meta = append(meta, &flac.MetaDataBlock{
		Type: flac.VorbisComment,
		Data: buf.Bytes(),
	})

	return f.Save(path)
}
